package model

import (
	"reflect"
	"testing"
)

func TestNoteName(t *testing.T) {
	cases := []struct {
		frequency float64
		want      string
	}{
		{440, "A4"},
		{261.63, "C4"},
		{329.63, "E4"},
		{392.0, "G4"},
		{220, "A3"},
		{466.16, "A#4"},
		{27.5, "A0"},
		{0, ""},
		{-100, ""},
	}
	for _, tc := range cases {
		if got := NewNote(tc.frequency).Name(); got != tc.want {
			t.Errorf("Name(%v) = %q, want %q", tc.frequency, got, tc.want)
		}
	}
}

func TestChordFromFrequencies(t *testing.T) {
	chord := ChordFromFrequencies([]float64{261.63, 0, 329.63, 261.63, -5})
	if got := chord.Frequencies(); !reflect.DeepEqual(got, []float64{261.63, 329.63}) {
		t.Errorf("chord = %v, want duplicates and non-positives dropped", got)
	}
}

func TestChordNoteNamed(t *testing.T) {
	chord := ChordFromFrequencies([]float64{261.63, 329.63})
	if n, ok := chord.NoteNamed("E4"); !ok || n.Frequency != 329.63 {
		t.Errorf("NoteNamed(E4) = %v %v", n, ok)
	}
	if _, ok := chord.NoteNamed("G4"); ok {
		t.Error("NoteNamed(G4) should miss")
	}
}

func TestTransitionClamped(t *testing.T) {
	got := TransitionConfig{Duration: -1, Stagger: 2, DurationSpread: -0.5, Glissando: true}.Clamped()
	want := TransitionConfig{Duration: 0, Stagger: 1, DurationSpread: 0, Glissando: true}
	if got != want {
		t.Errorf("Clamped() = %+v, want %+v", got, want)
	}
}

package model

import (
	"fmt"
	"math"
)

// A4 reference tuning.
const concertPitch = 440.0

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is a single pitch. Frequency is the canonical form; the name is
// derived from it and never stored separately.
type Note struct {
	Frequency float64 `json:"frequency"`
}

func NewNote(frequency float64) Note {
	return Note{Frequency: frequency}
}

// Name renders the nearest equal-tempered note name, e.g. "C4" or "F#3".
func (n Note) Name() string {
	if n.Frequency <= 0 {
		return ""
	}
	midi := int(math.Round(69 + 12*math.Log2(n.Frequency/concertPitch)))
	if midi < 0 {
		midi = 0
	}
	octave := midi/12 - 1
	return fmt.Sprintf("%s%d", pitchClassNames[midi%12], octave)
}

// Chord is the ordered set of notes the controller wants performed.
// It is replaced wholesale on every edit.
type Chord []Note

// ChordFromFrequencies builds a chord, dropping non-positive and duplicate
// frequencies. Order is preserved for display.
func ChordFromFrequencies(frequencies []float64) Chord {
	seen := make(map[float64]bool, len(frequencies))
	chord := make(Chord, 0, len(frequencies))
	for _, f := range frequencies {
		if f <= 0 || seen[f] {
			continue
		}
		seen[f] = true
		chord = append(chord, NewNote(f))
	}
	return chord
}

func (c Chord) Frequencies() []float64 {
	out := make([]float64, len(c))
	for i, n := range c {
		out[i] = n.Frequency
	}
	return out
}

// NoteNamed returns the chord note matching the given display name.
func (c Chord) NoteNamed(name string) (Note, bool) {
	for _, n := range c {
		if n.Name() == name {
			return n, true
		}
	}
	return Note{}, false
}

package state

import (
	"errors"
	"sort"

	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

var ErrNoteNotInChord = errors.New("note not in chord")

// PerformanceState is the authoritative store of chord, per-note
// expressions and harmonic-ratio selections. It is exclusively owned by
// the controller process; every logical change goes through exactly one
// mutation method, and every mutation bumps the version. Callers (the
// coordinator) are responsible for serializing access.
type PerformanceState struct {
	chord       model.Chord
	expressions map[string]model.Expression
	harmonics   model.HarmonicSelection
	params      model.Params
	version     uint64
}

func New(params model.Params) *PerformanceState {
	return &PerformanceState{
		expressions: make(map[string]model.Expression),
		harmonics:   model.DefaultHarmonicSelection(),
		params:      params,
	}
}

// SetChord replaces the chord wholesale and prunes expressions attached to
// notes that are no longer present.
func (s *PerformanceState) SetChord(frequencies []float64) model.Chord {
	s.chord = model.ChordFromFrequencies(frequencies)

	kept := make(map[string]model.Expression, len(s.expressions))
	for name, expr := range s.expressions {
		if _, ok := s.chord.NoteNamed(name); ok {
			kept[name] = expr
		}
	}
	s.expressions = kept
	s.version++
	return s.chord
}

// SetExpression attaches an expression to one chord note. Setting "none"
// removes the entry entirely.
func (s *PerformanceState) SetExpression(noteName string, expr model.Expression) error {
	if _, ok := s.chord.NoteNamed(noteName); !ok {
		return ErrNoteNotInChord
	}
	if expr.Type == model.ExpressionNone || expr.Type == "" {
		delete(s.expressions, noteName)
	} else {
		s.expressions[noteName] = expr
	}
	s.version++
	return nil
}

// ClearExpression removes a note's expression if present.
func (s *PerformanceState) ClearExpression(noteName string) {
	if _, ok := s.expressions[noteName]; ok {
		delete(s.expressions, noteName)
		s.version++
	}
}

// SetHarmonicValues replaces one ratio set. Values outside [1,12] are
// dropped, duplicates collapsed; an empty result falls back to {1}.
func (s *PerformanceState) SetHarmonicValues(t model.ExpressionType, part model.RatioPart, values []int) {
	set := sanitizeRatioValues(values)
	rs := s.ratioSelection(t)
	if part == model.RatioDenominator {
		rs.Denominators = set
	} else {
		rs.Numerators = set
	}
	s.version++
}

// ToggleHarmonic adds the value if absent, removes it if present. Removing
// the last element re-inserts 1 so the set is never empty.
func (s *PerformanceState) ToggleHarmonic(t model.ExpressionType, part model.RatioPart, value int) {
	if value < 1 || value > 12 {
		return
	}
	rs := s.ratioSelection(t)
	target := &rs.Numerators
	if part == model.RatioDenominator {
		target = &rs.Denominators
	}

	idx := -1
	for i, v := range *target {
		if v == value {
			idx = i
			break
		}
	}
	if idx >= 0 {
		*target = append((*target)[:idx], (*target)[idx+1:]...)
		if len(*target) == 0 {
			*target = []int{1}
		}
	} else {
		*target = append(*target, value)
		sort.Ints(*target)
	}
	s.version++
}

func (s *PerformanceState) ratioSelection(t model.ExpressionType) *model.RatioSelection {
	rs, ok := s.harmonics[t]
	if !ok || rs == nil {
		rs = &model.RatioSelection{Numerators: []int{1}, Denominators: []int{1}}
		s.harmonics[t] = rs
	}
	return rs
}

func sanitizeRatioValues(values []int) []int {
	seen := make(map[int]bool, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v < 1 || v > 12 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		out = []int{1}
	}
	sort.Ints(out)
	return out
}

func (s *PerformanceState) SetParams(p model.Params) {
	s.params = p
	s.version++
}

func (s *PerformanceState) Chord() model.Chord {
	return append(model.Chord(nil), s.chord...)
}

func (s *PerformanceState) Expressions() map[string]model.Expression {
	out := make(map[string]model.Expression, len(s.expressions))
	for k, v := range s.expressions {
		out[k] = v
	}
	return out
}

// ExpressionFor returns the expression attached to a note, or the explicit
// "none" value when the note is plain.
func (s *PerformanceState) ExpressionFor(note model.Note) model.Expression {
	if expr, ok := s.expressions[note.Name()]; ok {
		return expr
	}
	return model.NoExpression()
}

func (s *PerformanceState) Harmonics() model.HarmonicSelection {
	return s.harmonics.Clone()
}

func (s *PerformanceState) Params() model.Params {
	return s.params
}

func (s *PerformanceState) Version() uint64 {
	return s.version
}

// Snapshot is the persistable form of the performance state, used for
// banks and autosave.
type Snapshot struct {
	Frequencies []float64                   `json:"frequencies"`
	Expressions map[string]model.Expression `json:"expressions"`
	Harmonics   model.HarmonicSelection     `json:"harmonics"`
	Params      model.Params                `json:"params"`
}

func (s *PerformanceState) Snapshot() Snapshot {
	return Snapshot{
		Frequencies: s.chord.Frequencies(),
		Expressions: s.Expressions(),
		Harmonics:   s.Harmonics(),
		Params:      s.params,
	}
}

// Restore replaces the whole state from a snapshot. Expressions for notes
// missing from the snapshot's chord are pruned, same as SetChord.
func (s *PerformanceState) Restore(snap Snapshot) {
	s.chord = model.ChordFromFrequencies(snap.Frequencies)
	s.expressions = make(map[string]model.Expression)
	for name, expr := range snap.Expressions {
		if _, ok := s.chord.NoteNamed(name); ok && expr.Type != model.ExpressionNone {
			s.expressions[name] = expr
		}
	}
	if snap.Harmonics != nil {
		s.harmonics = snap.Harmonics.Clone()
	}
	s.params = snap.Params
	s.version++
}

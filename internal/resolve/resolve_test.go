package resolve

import (
	"math/rand"
	"testing"

	"github.com/capogreco/string.assembly.fm-sub005/internal/distribute"
	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

func testContext(chord model.Chord, expressions map[string]model.Expression) Context {
	if expressions == nil {
		expressions = map[string]model.Expression{}
	}
	return Context{
		Chord:       chord,
		Expressions: expressions,
		Assignment:  map[string]distribute.Assigned{},
		Harmonics:   model.DefaultHarmonicSelection(),
		Power:       true,
	}
}

func TestNilAssignmentStaysSilent(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	ctx := testContext(model.ChordFromFrequencies([]float64{261.63}), nil)

	prog := r.ForPeer("synth-1", nil, model.DefaultParams(), model.DefaultTransition(), ctx)

	if prog.VibratoEnabled || prog.TremoloEnabled || prog.TrillEnabled {
		t.Error("unassigned peer's program must not enable any expression")
	}
	if prog.Power {
		t.Error("unassigned peer's program must carry power:false")
	}
	if prog.FundamentalFrequency != model.DefaultParams().FundamentalFrequency {
		t.Errorf("unassigned peer's frequency overridden to %v", prog.FundamentalFrequency)
	}
}

func TestAssignmentOverlaysFrequency(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	chord := model.ChordFromFrequencies([]float64{261.63, 329.63})
	ctx := testContext(chord, nil)

	assigned := &distribute.Assigned{Note: chord[1], Index: 1}
	prog := r.ForPeer("synth-1", assigned, model.DefaultParams(), model.DefaultTransition(), ctx)

	if prog.FundamentalFrequency != 329.63 {
		t.Errorf("fundamental = %v, want 329.63", prog.FundamentalFrequency)
	}
	if !prog.Power {
		t.Error("assigned peer should get power:true when ensemble power is on")
	}
}

func TestExpressionOverlayIsExclusive(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	chord := model.ChordFromFrequencies([]float64{261.63})
	ctx := testContext(chord, map[string]model.Expression{
		"C4": {Type: model.ExpressionTremolo},
	})

	base := model.DefaultParams()
	base.VibratoEnabled = true // stale flag from a previous program
	base.TrillEnabled = true

	assigned := &distribute.Assigned{Note: chord[0]}
	prog := r.ForPeer("synth-1", assigned, base, model.DefaultTransition(), ctx)

	if prog.VibratoEnabled || prog.TrillEnabled {
		t.Error("stale enable flags must be reset before the overlay")
	}
	if !prog.TremoloEnabled {
		t.Error("tremolo should be enabled for a tremolo note")
	}
	if prog.TremoloDepth != model.DefaultTremoloDepth {
		t.Errorf("tremolo depth = %v, want default %v", prog.TremoloDepth, model.DefaultTremoloDepth)
	}
	if prog.TremoloArticulation != model.DefaultTremoloArticulation {
		t.Errorf("tremolo articulation = %v, want default %v", prog.TremoloArticulation, model.DefaultTremoloArticulation)
	}
}

func TestTrillDefaults(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	chord := model.ChordFromFrequencies([]float64{261.63})
	ctx := testContext(chord, map[string]model.Expression{
		"C4": {Type: model.ExpressionTrill},
	})

	assigned := &distribute.Assigned{Note: chord[0]}
	prog := r.ForPeer("synth-1", assigned, model.DefaultParams(), model.DefaultTransition(), ctx)

	if !prog.TrillEnabled {
		t.Fatal("trill should be enabled")
	}
	if prog.TrillInterval != model.DefaultTrillInterval {
		t.Errorf("trill interval = %d, want default %d", prog.TrillInterval, model.DefaultTrillInterval)
	}
	if prog.TrillArticulation != model.DefaultTrillArticulation {
		t.Errorf("trill articulation = %v, want default %v", prog.TrillArticulation, model.DefaultTrillArticulation)
	}
}

func TestHarmonicRatioCoverage(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	chord := model.ChordFromFrequencies([]float64{261.63})
	ctx := testContext(chord, map[string]model.Expression{
		"C4": {Type: model.ExpressionVibrato, Depth: 0.02},
	})
	ctx.Harmonics[model.ExpressionVibrato] = &model.RatioSelection{
		Numerators:   []int{1, 2, 3},
		Denominators: []int{1, 2},
	}

	base := model.DefaultParams()
	base.VibratoRate = 4

	// The six numerator/denominator pairs collapse to five distinct
	// ratio values; each must show up across repeated resolutions.
	want := map[float64]bool{0.5: false, 1: false, 1.5: false, 2: false, 3: false}

	assigned := &distribute.Assigned{Note: chord[0]}
	for i := 0; i < 1000; i++ {
		prog := r.ForPeer("synth-1", assigned, base, model.DefaultTransition(), ctx)
		ratio := prog.VibratoRate / base.VibratoRate
		if _, ok := want[ratio]; !ok {
			t.Fatalf("resolution %d: unexpected ratio %v", i, ratio)
		}
		want[ratio] = true
	}
	for ratio, seen := range want {
		if !seen {
			t.Errorf("ratio %v never sampled in 1000 resolutions", ratio)
		}
	}
}

func TestTransitionAttachedVerbatim(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	ctx := testContext(model.ChordFromFrequencies([]float64{261.63}), nil)

	cfg := model.TransitionConfig{Duration: 4, Stagger: 0.25, DurationSpread: 0.5, Glissando: false}
	prog := r.ForPeer("synth-1", nil, model.DefaultParams(), cfg, ctx)

	tr := prog.Transition
	if tr.Duration != 4 || tr.Stagger != 0.25 || tr.DurationSpread != 0.5 || tr.Glissando {
		t.Errorf("transition not attached verbatim: %+v", tr)
	}
	if tr.Delay != 0 {
		t.Errorf("resolver must not set per-peer delay, got %v", tr.Delay)
	}
}

func TestMalformedTransitionClamped(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	ctx := testContext(nil, nil)

	cfg := model.TransitionConfig{Duration: -3, Stagger: 9, DurationSpread: -1}
	prog := r.ForPeer("synth-1", nil, model.DefaultParams(), cfg, ctx)

	tr := prog.Transition
	if tr.Duration != 0 || tr.Stagger != 1 || tr.DurationSpread != 0 {
		t.Errorf("malformed config should clamp, got %+v", tr)
	}
}

func TestProgramCarriesSharedContext(t *testing.T) {
	r := New(rand.New(rand.NewSource(1)))
	chord := model.ChordFromFrequencies([]float64{261.63, 329.63, 392.0})
	ctx := testContext(chord, map[string]model.Expression{
		"E4": {Type: model.ExpressionVibrato, Depth: 0.02},
	})
	ctx.Assignment = map[string]distribute.Assigned{
		"synth-1": {Note: chord[0], Index: 0},
		"synth-2": {Note: chord[1], Index: 1},
	}

	prog := r.ForPeer("synth-2", nil, model.DefaultParams(), model.DefaultTransition(), ctx)

	if len(prog.Chord.Frequencies) != 3 {
		t.Errorf("chord context has %d frequencies, want 3", len(prog.Chord.Frequencies))
	}
	if len(prog.Parts) != 2 {
		t.Errorf("parts map has %d entries, want 2", len(prog.Parts))
	}
	if part, ok := prog.Parts["synth-2"]; !ok || part.Expression.Type != model.ExpressionVibrato {
		t.Errorf("parts map should carry synth-2's vibrato, got %+v", part)
	}
	if prog.SynthID != "synth-2" {
		t.Errorf("synthId = %q", prog.SynthID)
	}
	if prog.Timestamp == 0 {
		t.Error("program should carry a timestamp")
	}
}

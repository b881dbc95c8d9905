package timing

import (
	"math/rand"
	"testing"

	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

func TestNoKnobsNoJitter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cfg := model.TransitionConfig{Duration: 10}

	for i := 0; i < 100; i++ {
		got := For(cfg, rng)
		if got.Delay != 0 {
			t.Fatalf("draw %d: delay = %v, want 0", i, got.Delay)
		}
		if got.Duration != 10 {
			t.Fatalf("draw %d: duration = %v, want 10", i, got.Duration)
		}
	}
}

func TestFullStaggerBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	cfg := model.TransitionConfig{Duration: 10, Stagger: 1}

	for i := 0; i < 1000; i++ {
		got := For(cfg, rng)
		if got.Delay < 5 || got.Delay > 20 {
			t.Fatalf("draw %d: delay %v outside [5,20]", i, got.Delay)
		}
		if got.Duration != 10 {
			t.Fatalf("draw %d: duration %v changed without spread", i, got.Duration)
		}
	}
}

func TestFullSpreadBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cfg := model.TransitionConfig{Duration: 10, DurationSpread: 1}

	for i := 0; i < 1000; i++ {
		got := For(cfg, rng)
		if got.Duration < 5 || got.Duration > 20 {
			t.Fatalf("draw %d: duration %v outside [5,20]", i, got.Duration)
		}
		if got.Delay != 0 {
			t.Fatalf("draw %d: delay %v set without stagger", i, got.Delay)
		}
	}
}

func TestDeterministicUnderSeed(t *testing.T) {
	cfg := model.TransitionConfig{Duration: 10, Stagger: 0.5, DurationSpread: 0.5}

	a := For(cfg, rand.New(rand.NewSource(42)))
	b := For(cfg, rand.New(rand.NewSource(42)))
	if a != b {
		t.Errorf("same seed gave different timing: %+v vs %+v", a, b)
	}
}

// Package timing humanizes per-peer transition timing. The jitter is
// multiplicative and symmetric in log-space: at the knob's maximum a value
// lands anywhere in [0.5x, 2x] of the base duration, with under- and
// over-shoot equally likely.
package timing

import (
	"math"
	"math/rand"

	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

// PeerTiming is one peer's resolved transition timing, in seconds.
type PeerTiming struct {
	Delay    float64
	Duration float64
}

// For draws one peer's delay and duration from the config's stagger and
// durationSpread knobs. The two draws are independent. Delay is clamped to
// zero or above; duration is left to the caller's defaults.
func For(cfg model.TransitionConfig, rng *rand.Rand) PeerTiming {
	t := PeerTiming{Duration: cfg.Duration}
	if cfg.Stagger > 0 {
		t.Delay = cfg.Duration * jitter(cfg.Stagger, rng)
	}
	if t.Delay < 0 {
		t.Delay = 0
	}
	if cfg.DurationSpread > 0 {
		t.Duration = cfg.Duration * jitter(cfg.DurationSpread, rng)
	}
	return t
}

// jitter maps a [0,1] knob to a factor in [2^-amount, 2^amount].
func jitter(amount float64, rng *rand.Rand) float64 {
	return math.Exp((2*rng.Float64() - 1) * amount * math.Ln2)
}

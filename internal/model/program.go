package model

// Params are the base synthesis parameters a program is resolved from.
// Field names match the wire format consumed by the synth clients.
type Params struct {
	FundamentalFrequency float64 `json:"fundamentalFrequency"`

	VibratoEnabled bool    `json:"vibratoEnabled"`
	VibratoRate    float64 `json:"vibratoRate"`
	VibratoDepth   float64 `json:"vibratoDepth"`

	TremoloEnabled      bool    `json:"tremoloEnabled"`
	TremoloSpeed        float64 `json:"tremoloSpeed"`
	TremoloDepth        float64 `json:"tremoloDepth"`
	TremoloArticulation float64 `json:"tremoloArticulation"`

	TrillEnabled      bool    `json:"trillEnabled"`
	TrillSpeed        float64 `json:"trillSpeed"`
	TrillInterval     int     `json:"trillInterval"`
	TrillArticulation float64 `json:"trillArticulation"`
}

// DefaultParams returns the controller's baseline voice: A3 fundamental,
// all modulation off, musically sane base rates for when one is enabled.
func DefaultParams() Params {
	return Params{
		FundamentalFrequency: 220,
		VibratoRate:          5,
		VibratoDepth:         DefaultVibratoDepth,
		TremoloSpeed:         10,
		TremoloDepth:         DefaultTremoloDepth,
		TremoloArticulation:  DefaultTremoloArticulation,
		TrillSpeed:           8,
		TrillInterval:        DefaultTrillInterval,
		TrillArticulation:    DefaultTrillArticulation,
	}
}

// TransitionConfig describes how the ensemble should move to a new program.
// Supplied by the caller per send; never stored as peer state.
type TransitionConfig struct {
	Duration       float64 `json:"duration" validate:"omitempty,min=0"`
	Stagger        float64 `json:"stagger" validate:"omitempty,min=0,max=1"`
	DurationSpread float64 `json:"durationSpread" validate:"omitempty,min=0,max=1"`
	Glissando      bool    `json:"glissando"`
}

// Transition defaults
const (
	DefaultTransitionDuration = 10.0
	DefaultTransitionStagger  = 0.0
	DefaultTransitionSpread   = 0.0
)

func DefaultTransition() TransitionConfig {
	return TransitionConfig{
		Duration:       DefaultTransitionDuration,
		Stagger:        DefaultTransitionStagger,
		DurationSpread: DefaultTransitionSpread,
		Glissando:      true,
	}
}

// ZeroTransition is used for late-join catch-up sends, which are not
// musical transitions.
func ZeroTransition() TransitionConfig {
	return TransitionConfig{Glissando: true}
}

// Clamped coerces malformed fields to safe values instead of erroring; a
// bad slider value must never halt a performance.
func (c TransitionConfig) Clamped() TransitionConfig {
	if c.Duration < 0 {
		c.Duration = 0
	}
	c.Stagger = clamp01(c.Stagger)
	c.DurationSpread = clamp01(c.DurationSpread)
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Transition is the per-peer wire form: the caller's knobs plus the
// humanized delay/duration resolved for this one peer.
type Transition struct {
	Duration       float64 `json:"duration"`
	Delay          float64 `json:"delay"`
	Stagger        float64 `json:"stagger"`
	DurationSpread float64 `json:"durationSpread"`
	Glissando      bool    `json:"glissando"`
}

// ChordContext is the shared chord state every program carries so a peer
// can recover orphaned or raced assignments without a round trip.
type ChordContext struct {
	Frequencies []float64             `json:"frequencies"`
	Expressions map[string]Expression `json:"expressions"`
}

// PartAssignment is one peer's slot in the shared parts map.
type PartAssignment struct {
	Frequency  float64    `json:"frequency"`
	Expression Expression `json:"expression"`
}

// Program is the complete, self-contained message sent to one peer for one
// transition. Rebuilt from scratch on every send, never diffed.
type Program struct {
	Params

	Chord      ChordContext              `json:"chord"`
	Parts      map[string]PartAssignment `json:"parts"`
	Transition Transition                `json:"transition"`
	Power      bool                      `json:"power"`
	SynthID    string                    `json:"synthId"`
	Timestamp  int64                     `json:"timestamp"`
}

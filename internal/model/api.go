package model

// SetChordRequest replaces the whole chord. An empty list clears it.
type SetChordRequest struct {
	Frequencies []float64 `json:"frequencies" validate:"omitempty,dive,gt=0"`
}

// SetExpressionRequest attaches an expression to one chord note.
type SetExpressionRequest struct {
	NoteName   string     `json:"noteName" validate:"required"`
	Expression Expression `json:"expression" validate:"required"`
}

// HarmonicsRequest replaces one ratio set wholesale.
type HarmonicsRequest struct {
	Expression ExpressionType `json:"expression" validate:"required,oneof=vibrato tremolo trill"`
	Part       RatioPart      `json:"part" validate:"required,oneof=numerator denominator"`
	Values     []int          `json:"values" validate:"required,min=1,dive,min=1,max=12"`
}

// HarmonicToggleRequest adds or removes a single value from a ratio set.
type HarmonicToggleRequest struct {
	Expression ExpressionType `json:"expression" validate:"required,oneof=vibrato tremolo trill"`
	Part       RatioPart      `json:"part" validate:"required,oneof=numerator denominator"`
	Value      int            `json:"value" validate:"required,min=1,max=12"`
}

// SendRequest triggers a "send current part" fan-out.
type SendRequest struct {
	Transition *TransitionConfig `json:"transition"`
	Strategy   string            `json:"strategy" validate:"omitempty,oneof=round-robin random balanced randomized-balanced weighted"`
}

// SendResponse reports fan-out coverage.
type SendResponse struct {
	SuccessCount int `json:"successCount"`
	TotalPeers   int `json:"totalPeers"`
}

// PowerRequest toggles ensemble power.
type PowerRequest struct {
	Value *bool `json:"value" validate:"required"`
}

// BankLoadRequest carries the transition peers should use when they pull
// the loaded bank's program.
type BankLoadRequest struct {
	Transition *TransitionConfig `json:"transition"`
}

// PeerView is one peer's entry in the ensemble introspection response.
type PeerView struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	NoteName   string  `json:"noteName,omitempty"`
	Frequency  float64 `json:"frequency,omitempty"`
	Expression string  `json:"expression,omitempty"`
}

// EnsembleResponse is the operator-facing snapshot of ensemble state.
type EnsembleResponse struct {
	Peers        []PeerView            `json:"peers"`
	Frequencies  []float64             `json:"frequencies"`
	Expressions  map[string]Expression `json:"expressions"`
	StateVersion uint64                `json:"stateVersion"`
	Power        bool                  `json:"power"`
}

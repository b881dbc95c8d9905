package model

// Expression types
type ExpressionType string

const (
	ExpressionNone    ExpressionType = "none"
	ExpressionVibrato ExpressionType = "vibrato"
	ExpressionTremolo ExpressionType = "tremolo"
	ExpressionTrill   ExpressionType = "trill"
)

var ValidExpressionTypes = []ExpressionType{
	ExpressionNone, ExpressionVibrato, ExpressionTremolo, ExpressionTrill,
}

// Expression is a per-note modulation. Which fields are meaningful depends
// on Type: vibrato uses Depth; tremolo uses Depth and Articulation; trill
// uses TargetNote, Interval and Articulation.
type Expression struct {
	Type         ExpressionType `json:"type" validate:"required,oneof=none vibrato tremolo trill"`
	Depth        float64        `json:"depth,omitempty" validate:"omitempty,min=0,max=1"`
	Articulation float64        `json:"articulation,omitempty" validate:"omitempty,min=0,max=1"`
	TargetNote   string         `json:"targetNote,omitempty"`
	Interval     int            `json:"interval,omitempty" validate:"omitempty,min=1,max=12"`
}

// Documented fallback values for optional expression fields.
const (
	DefaultVibratoDepth        = 0.01
	DefaultTremoloDepth        = 0.3
	DefaultTremoloArticulation = 0.8
	DefaultTrillInterval       = 2
	DefaultTrillArticulation   = 0.7
)

// NoExpression is the explicit "plain tone" value.
func NoExpression() Expression {
	return Expression{Type: ExpressionNone}
}

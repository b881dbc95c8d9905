package model

// Ratio parts
type RatioPart string

const (
	RatioNumerator   RatioPart = "numerator"
	RatioDenominator RatioPart = "denominator"
)

// RatioSelection holds the user-selected numerator and denominator sets an
// expression's harmonic ratio is drawn from. Both sets are kept sorted,
// hold integers in [1,12] and are never empty.
type RatioSelection struct {
	Numerators   []int `json:"numerators"`
	Denominators []int `json:"denominators"`
}

// HarmonicSelection maps each modulating expression type to its ratio sets.
type HarmonicSelection map[ExpressionType]*RatioSelection

// DefaultHarmonicSelection selects 1/1 for every expression kind, i.e. base
// rates pass through unscaled until the operator widens the sets.
func DefaultHarmonicSelection() HarmonicSelection {
	sel := make(HarmonicSelection, 3)
	for _, t := range []ExpressionType{ExpressionVibrato, ExpressionTremolo, ExpressionTrill} {
		sel[t] = &RatioSelection{Numerators: []int{1}, Denominators: []int{1}}
	}
	return sel
}

// Set returns the kind's selection, falling back to 1/1 for kinds that were
// never edited (or for "none", which has no rate to scale).
func (s HarmonicSelection) Set(t ExpressionType) RatioSelection {
	if rs, ok := s[t]; ok && rs != nil {
		return *rs
	}
	return RatioSelection{Numerators: []int{1}, Denominators: []int{1}}
}

// Clone deep-copies the selection so snapshots do not alias live state.
func (s HarmonicSelection) Clone() HarmonicSelection {
	out := make(HarmonicSelection, len(s))
	for t, rs := range s {
		if rs == nil {
			continue
		}
		out[t] = &RatioSelection{
			Numerators:   append([]int(nil), rs.Numerators...),
			Denominators: append([]int(nil), rs.Denominators...),
		}
	}
	return out
}

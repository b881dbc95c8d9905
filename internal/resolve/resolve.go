// Package resolve builds the complete, self-contained program a single
// peer receives for one transition. Programs are rebuilt from scratch on
// every send and never diffed against a previous one.
package resolve

import (
	"math/rand"
	"time"

	"github.com/capogreco/string.assembly.fm-sub005/internal/distribute"
	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

// Context is the shared performance state a program is resolved against.
// Every program carries the full chord and parts map so a peer can recover
// orphaned or raced state without a round trip.
type Context struct {
	Chord       model.Chord
	Expressions map[string]model.Expression
	Assignment  map[string]distribute.Assigned
	Harmonics   model.HarmonicSelection
	Power       bool
}

// Resolver samples harmonic ratios from an injected random source so that
// resolution is reproducible under test.
type Resolver struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Resolver {
	return &Resolver{rng: rng}
}

// ForPeer resolves one peer's program. A nil assignment yields a silent
// program: base parameters only, no frequency override, every expression
// disabled, power forced off. The harmonic ratio is drawn fresh on every
// call, so repeated resolutions for the same assignment differ.
func (r *Resolver) ForPeer(peerID string, assigned *distribute.Assigned, base model.Params, cfg model.TransitionConfig, ctx Context) model.Program {
	cfg = cfg.Clamped()

	params := base
	params.VibratoEnabled = false
	params.TremoloEnabled = false
	params.TrillEnabled = false

	sounding := false
	if assigned != nil && assigned.Note.Frequency > 0 {
		sounding = true
		params.FundamentalFrequency = assigned.Note.Frequency

		expr, ok := ctx.Expressions[assigned.Note.Name()]
		if !ok {
			expr = model.NoExpression()
		}
		r.applyExpression(&params, expr, ctx.Harmonics)
	}

	return model.Program{
		Params: params,
		Chord: model.ChordContext{
			Frequencies: ctx.Chord.Frequencies(),
			Expressions: ctx.Expressions,
		},
		Parts: partsView(ctx),
		Transition: model.Transition{
			Duration:       cfg.Duration,
			Stagger:        cfg.Stagger,
			DurationSpread: cfg.DurationSpread,
			Glissando:      cfg.Glissando,
		},
		Power:     ctx.Power && sounding,
		SynthID:   peerID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// applyExpression enables exactly one modulation kind. Depth, articulation
// and interval come from the expression itself with documented fallbacks;
// only the rate is scaled by the sampled harmonic ratio.
func (r *Resolver) applyExpression(p *model.Params, expr model.Expression, sel model.HarmonicSelection) {
	switch expr.Type {
	case model.ExpressionVibrato:
		p.VibratoEnabled = true
		p.VibratoDepth = fallback(expr.Depth, model.DefaultVibratoDepth)
		p.VibratoRate *= r.harmonicRatio(model.ExpressionVibrato, sel)
	case model.ExpressionTremolo:
		p.TremoloEnabled = true
		p.TremoloDepth = fallback(expr.Depth, model.DefaultTremoloDepth)
		p.TremoloArticulation = fallback(expr.Articulation, model.DefaultTremoloArticulation)
		p.TremoloSpeed *= r.harmonicRatio(model.ExpressionTremolo, sel)
	case model.ExpressionTrill:
		p.TrillEnabled = true
		p.TrillInterval = expr.Interval
		if p.TrillInterval == 0 {
			p.TrillInterval = model.DefaultTrillInterval
		}
		p.TrillArticulation = fallback(expr.Articulation, model.DefaultTrillArticulation)
		p.TrillSpeed *= r.harmonicRatio(model.ExpressionTrill, sel)
	}
}

// harmonicRatio draws numerator and denominator independently and
// uniformly from the kind's current selection sets.
func (r *Resolver) harmonicRatio(t model.ExpressionType, sel model.HarmonicSelection) float64 {
	rs := sel.Set(t)
	num, den := 1, 1
	if len(rs.Numerators) > 0 {
		num = rs.Numerators[r.rng.Intn(len(rs.Numerators))]
	}
	if len(rs.Denominators) > 0 {
		den = rs.Denominators[r.rng.Intn(len(rs.Denominators))]
	}
	return float64(num) / float64(den)
}

func partsView(ctx Context) map[string]model.PartAssignment {
	parts := make(map[string]model.PartAssignment, len(ctx.Assignment))
	for id, a := range ctx.Assignment {
		expr, ok := ctx.Expressions[a.Note.Name()]
		if !ok {
			expr = model.NoExpression()
		}
		parts[id] = model.PartAssignment{
			Frequency:  a.Note.Frequency,
			Expression: expr,
		}
	}
	return parts
}

func fallback(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

package splitter

import (
	"math"
	"slices"

	"github.com/matzehuels/splitplan/pkg/errors"
)

// Verify checks the structural invariants of p. Plans produced by [Solve] are
// verified already; Verify exists for plans loaded from JSON or a store.
func (p *Plan) Verify() error {
	if len(p.Layers) == 0 {
		return invariant("plan has no layers")
	}
	if err := p.Demand.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvariant, err, "plan demand")
	}
	if len(p.Order) != len(p.Demand) || len(p.Input) != len(p.Demand) {
		return invariant("plan has %d outputs but %d input values and %d order entries",
			len(p.Demand), len(p.Input), len(p.Order))
	}
	if err := p.verifyOrder(); err != nil {
		return err
	}
	if err := p.verifyArms(); err != nil {
		return err
	}
	return p.verifyConservation()
}

func (p *Plan) verifyOrder() error {
	seen := make([]bool, len(p.Order))
	for k, idx := range p.Order {
		if idx < 0 || idx >= len(p.Order) || seen[idx] {
			return invariant("order entry %d (%d) is not a permutation index", k, idx)
		}
		seen[idx] = true
		if k > 0 && p.Demand[k] > p.Demand[k-1] {
			return invariant("demand is not sorted descending at output %d", k+1)
		}
	}

	sorted := make(Demand, len(p.Order))
	for k, idx := range p.Order {
		sorted[k] = p.Input[idx]
	}
	if !slices.Equal(Normalize(sorted), p.Demand) {
		return invariant("demand %v is not the normalized input %v", p.Demand, sorted)
	}
	return nil
}

// verifyArms walks the layers from the input: the first layer has one
// splitter, every layer's arms are taken, returned or forwarded, and each
// forwarded arm feeds one splitter of the next layer.
func (p *Plan) verifyArms() error {
	splitters := int64(1)
	for i, l := range p.Layers {
		if l.Arity != Arity2 && l.Arity != Arity3 {
			return invariant("layer %d: arity %d is not 2 or 3", i+1, l.Arity)
		}
		if l.Total <= 0 || l.Total%int64(l.Arity) != 0 {
			return invariant("layer %d: total %d is not a positive multiple of arity %d", i+1, l.Total, l.Arity)
		}
		if len(l.Takes) != len(p.Demand) {
			return invariant("layer %d: %d takes for %d outputs", i+1, len(l.Takes), len(p.Demand))
		}
		for k, t := range l.Takes {
			if t < 0 || t >= int64(l.Arity) {
				return invariant("layer %d: output %d takes %d arms", i+1, k+1, t)
			}
		}
		if splitters > math.MaxInt64/int64(l.Arity) {
			return errors.New(errors.ErrCodeOverflow, "layer %d: arm count exceeds int64", i+1)
		}

		arms := splitters * int64(l.Arity)
		forwarded := arms - l.Taken() - l.ReturnArms()
		if forwarded < 0 {
			return invariant("layer %d: %d arms cannot cover %d takes and %d return",
				i+1, arms, l.Taken(), l.ReturnArms())
		}
		last := i == len(p.Layers)-1
		if last && forwarded != 0 {
			return invariant("last layer forwards %d arms", forwarded)
		}
		if !last && forwarded == 0 {
			return invariant("layer %d forwards no arms to layer %d", i+1, i+2)
		}
		splitters = forwarded
	}

	if first := p.Layers[0]; first.Total > 3 {
		return invariant("first layer total %d exceeds a single splitter", first.Total)
	}
	return nil
}

func (p *Plan) verifyConservation() error {
	delivered := make([]int64, len(p.Demand))
	weight := int64(1)
	for i := len(p.Layers) - 1; i >= 0; i-- {
		l := p.Layers[i]
		for k, t := range l.Takes {
			if t > 0 && weight > (math.MaxInt64-delivered[k])/t {
				return errors.New(errors.ErrCodeOverflow, "output %d: delivered flow exceeds int64", k+1)
			}
			delivered[k] += t * weight
		}
		if i > 0 && weight > math.MaxInt64/int64(l.Arity) {
			return errors.New(errors.ErrCodeOverflow, "layer %d: arm weight exceeds int64", i+1)
		}
		weight *= int64(l.Arity)
	}

	for k, want := range p.Demand {
		if delivered[k] != want {
			return invariant("output %d receives %d, demand is %d", k+1, delivered[k], want)
		}
	}
	return nil
}

func invariant(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvariant, format, args...)
}

package splitter

import (
	"math"
	"math/bits"

	"github.com/matzehuels/splitplan/pkg/errors"
)

// Option configures [Solve].
type Option func(*config)

type config struct {
	maxLayers int
	verify    bool
}

// WithMaxLayers overrides the layer guard. By default a solve may emit at most
// bits.Len64(sum)+2 layers; the total at least halves every layer.
func WithMaxLayers(n int) Option {
	return func(c *config) { c.maxLayers = n }
}

// WithoutVerify skips the [Plan.Verify] self-check after solving.
func WithoutVerify() Option {
	return func(c *config) { c.verify = false }
}

// Solve computes the splitter plan for demand.
//
// The demand is validated, sorted descending and normalized before layers are
// derived; the returned plan keeps the original input and the permutation so
// callers can map outputs back. Solve never mutates demand.
func Solve(demand Demand, opts ...Option) (*Plan, error) {
	if err := demand.Validate(); err != nil {
		return nil, err
	}
	if _, err := demand.Sum(); err != nil {
		return nil, err
	}

	sorted, order := SortDescending(demand)
	normalized := Normalize(sorted)
	total, err := normalized.Sum()
	if err != nil {
		return nil, err
	}

	cfg := config{maxLayers: bits.Len64(uint64(total)) + 2, verify: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	acc, err := solveLayers(normalized, total, cfg.maxLayers)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Input:  demand.Clone(),
		Demand: normalized,
		Order:  order,
		Layers: assemble(acc),
	}
	if cfg.verify {
		if err := p.Verify(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// solveLayers runs the layer loop and returns layers in solve order, the layer
// nearest the outputs first.
func solveLayers(demand Demand, total int64, maxLayers int) ([]Layer, error) {
	var acc []Layer
	for {
		if len(acc) >= maxLayers {
			return nil, errors.New(errors.ErrCodeNonConvergent,
				"no terminal layer after %d layers (total %d)", len(acc), total)
		}

		l, err := solveLayer(demand, total)
		if err != nil {
			return nil, err
		}
		acc = append(acc, l)

		if l.Total <= 3 {
			return acc, nil
		}
		arity := int64(l.Arity)
		demand = demand.divide(arity)
		total = l.Total / arity
	}
}

// solveLayer decides return, arity and takes for a single layer.
func solveLayer(demand Demand, total int64) (Layer, error) {
	ret := !divides(total)
	if ret {
		if total == math.MaxInt64 {
			return Layer{}, errors.New(errors.ErrCodeOverflow, "total %d cannot take a return unit", total)
		}
		total++
	}
	if !divides(total) {
		return Layer{}, errors.New(errors.ErrCodeNonConvergent,
			"total %d is divisible by neither 2 nor 3", total)
	}

	arity := Arity2
	if total%Arity3 == 0 {
		arity = Arity3
	}

	takes := make([]int64, len(demand))
	for k, v := range demand {
		takes[k] = v % int64(arity)
	}

	return Layer{Arity: arity, Total: total, Return: ret, Takes: takes}, nil
}

func divides(total int64) bool {
	return total%Arity2 == 0 || total%Arity3 == 0
}

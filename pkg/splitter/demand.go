package splitter

import (
	"math"
	"slices"
	"sort"

	"github.com/matzehuels/splitplan/pkg/errors"
)

// Demand holds the required relative flow of each output.
type Demand []int64

// Validate rejects empty demand and any non-positive element.
func (d Demand) Validate() error {
	if len(d) == 0 {
		return errors.New(errors.ErrCodeInvalidDemand, "demand must list at least one output")
	}
	for i, v := range d {
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidDemand, "output %d: demand %d must be positive", i+1, v)
		}
	}
	return nil
}

// Sum returns the total demand, failing with OVERFLOW instead of wrapping.
func (d Demand) Sum() (int64, error) {
	var total int64
	for _, v := range d {
		if v > math.MaxInt64-total {
			return 0, errors.New(errors.ErrCodeOverflow, "demand sum exceeds %d", int64(math.MaxInt64))
		}
		total += v
	}
	return total, nil
}

// Clone returns an independent copy of d.
func (d Demand) Clone() Demand {
	return slices.Clone(d)
}

// divisibleBy reports whether every element is a multiple of n.
func (d Demand) divisibleBy(n int64) bool {
	for _, v := range d {
		if v%n != 0 {
			return false
		}
	}
	return true
}

// divide returns a new demand with every element integer-divided by n.
func (d Demand) divide(n int64) Demand {
	out := make(Demand, len(d))
	for i, v := range d {
		out[i] = v / n
	}
	return out
}

// Normalize divides d by 2 while every element is even, else by 3 while every
// element is a multiple of 3, until neither applies. The input is not modified.
// An all-zero vector is returned unchanged.
func Normalize(d Demand) Demand {
	out := d.Clone()
	if len(out) == 0 || !slices.ContainsFunc(out, func(v int64) bool { return v != 0 }) {
		return out
	}
	for {
		switch {
		case out.divisibleBy(2):
			out = out.divide(2)
		case out.divisibleBy(3):
			out = out.divide(3)
		default:
			return out
		}
	}
}

// SortDescending returns d sorted from largest to smallest together with the
// original index of every sorted element. Equal values keep their input order.
func SortDescending(d Demand) (Demand, []int) {
	order := make([]int, len(d))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return d[order[a]] > d[order[b]]
	})

	sorted := make(Demand, len(d))
	for i, idx := range order {
		sorted[i] = d[idx]
	}
	return sorted, order
}

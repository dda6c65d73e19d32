// Package splitter computes layered splitter plans that divide one input
// stream into several outputs with exact integer proportions.
//
// # Overview
//
// Only 2-way and 3-way splitters are available. A plan is a sequence of
// [Layer] values: the first layer is a single splitter fed by the input, and
// every arm of a layer either goes to an output ("takes"), is forwarded to a
// splitter in the next layer, or is returned to the input when the layer's
// flow would not otherwise divide evenly.
//
// # Solving
//
// [Solve] validates the demand, sorts it descending, removes common factors of
// 2 and 3 with [Normalize], and then derives one layer per iteration starting
// from the output side:
//
//	p, err := splitter.Solve([]int64{54, 18, 24})
//	if err != nil {
//	    return err
//	}
//	for _, l := range p.Layers {
//	    fmt.Println(l.Arity, l.Total, l.Return, l.Takes)
//	}
//
// Layers are computed output-first and then reversed once, so [Plan.Layers]
// always runs from the input to the outputs.
//
// # Invariants
//
// Every plan returned by [Solve] satisfies [Plan.Verify]:
//
//   - each layer's arms equal its takes plus its return arm plus the arms it
//     forwards, and the last layer forwards nothing
//   - each output's takes, weighted by the product of the arities below them,
//     add up to its normalized demand
//
// # Errors
//
// Failures carry codes from [github.com/matzehuels/splitplan/pkg/errors]:
// INVALID_DEMAND for empty or non-positive input, OVERFLOW when sums leave the
// int64 range, NON_CONVERGENT when the layer guard trips and
// INVARIANT_VIOLATION when a plan fails verification.
package splitter

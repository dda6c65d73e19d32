package splitter_test

import (
	"fmt"

	"github.com/matzehuels/splitplan/pkg/splitter"
)

func ExampleSolve() {
	// Split one belt 3:1.
	p, err := splitter.Solve(splitter.Demand{3, 1})
	if err != nil {
		panic(err)
	}

	for i, l := range p.Layers {
		fmt.Printf("layer %d: %d-way, total %d, takes %v\n", i+1, l.Arity, l.Total, l.Takes)
	}
	fmt.Println("splitters:", p.Splitters())
	fmt.Println("delivered:", p.Delivered())
	// Output:
	// layer 1: 2-way, total 2, takes [1 0]
	// layer 2: 2-way, total 4, takes [1 1]
	// splitters: [1 1]
	// delivered: [3 1]
}

func ExampleNormalize() {
	fmt.Println(splitter.Normalize(splitter.Demand{54, 24, 18}))
	// Output:
	// [9 4 3]
}

func ExamplePlan_Verify() {
	p, _ := splitter.Solve(splitter.Demand{5})

	broken := p.Clone()
	broken.Layers[1].Takes[0] = 1
	fmt.Println(p.Verify())
	fmt.Println(broken.Verify())
	// Output:
	// <nil>
	// INVARIANT_VIOLATION: last layer forwards 1 arms
}

package splitter

import (
	"math"
	"math/bits"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/splitplan/pkg/errors"
)

func TestSolveScenarios(t *testing.T) {
	tests := []struct {
		name   string
		demand Demand
		want   []Layer
	}{
		{
			name:   "even pair",
			demand: Demand{1, 1},
			want: []Layer{
				{Arity: 2, Total: 2, Return: false, Takes: []int64{1, 1}},
			},
		},
		{
			name:   "two to one",
			demand: Demand{2, 1},
			want: []Layer{
				{Arity: 3, Total: 3, Return: false, Takes: []int64{2, 1}},
			},
		},
		{
			name:   "three to one",
			demand: Demand{3, 1},
			want: []Layer{
				{Arity: 2, Total: 2, Return: false, Takes: []int64{1, 0}},
				{Arity: 2, Total: 4, Return: false, Takes: []int64{1, 1}},
			},
		},
		{
			name:   "single output",
			demand: Demand{1},
			want: []Layer{
				{Arity: 2, Total: 2, Return: true, Takes: []int64{1}},
			},
		},
		{
			name:   "return at output layer",
			demand: Demand{5},
			want: []Layer{
				{Arity: 2, Total: 2, Return: false, Takes: []int64{1}},
				{Arity: 3, Total: 6, Return: true, Takes: []int64{2}},
			},
		},
		{
			name:   "three outputs",
			demand: Demand{54, 18, 24},
			want: []Layer{
				{Arity: 2, Total: 2, Return: false, Takes: []int64{1, 0, 0}},
				{Arity: 2, Total: 4, Return: false, Takes: []int64{0, 1, 0}},
				{Arity: 2, Total: 8, Return: false, Takes: []int64{0, 0, 1}},
				{Arity: 2, Total: 16, Return: false, Takes: []int64{1, 0, 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Solve(tt.demand)
			if err != nil {
				t.Fatalf("Solve(%v) error: %v", tt.demand, err)
			}
			if !reflect.DeepEqual(p.Layers, tt.want) {
				t.Errorf("Solve(%v) layers =\n  %+v\nwant\n  %+v", tt.demand, p.Layers, tt.want)
			}
		})
	}
}

func TestSolveKeepsInputAndOrder(t *testing.T) {
	in := Demand{18, 54, 24}
	p, err := Solve(in)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	if !slices.Equal(in, Demand{18, 54, 24}) {
		t.Errorf("Solve mutated its input: %v", in)
	}
	if !slices.Equal(p.Input, in) {
		t.Errorf("Input = %v, want %v", p.Input, in)
	}
	if want := (Demand{9, 4, 3}); !slices.Equal(p.Demand, want) {
		t.Errorf("Demand = %v, want %v", p.Demand, want)
	}
	if want := []int{1, 2, 0}; !slices.Equal(p.Order, want) {
		t.Errorf("Order = %v, want %v", p.Order, want)
	}
	if got := p.InputDemand(0); got != 54 {
		t.Errorf("InputDemand(0) = %d, want 54", got)
	}

	// Mutating the caller's slice afterwards must not reach the plan.
	in[0] = 1000
	if p.Input[0] != 18 {
		t.Errorf("plan shares storage with caller input")
	}
}

func TestSolveRejectsInvalidDemand(t *testing.T) {
	for _, d := range []Demand{nil, {}, {0, 1}, {-1, 2}} {
		p, err := Solve(d)
		if p != nil {
			t.Errorf("Solve(%v) returned a plan", d)
		}
		if !errors.Is(err, errors.ErrCodeInvalidDemand) {
			t.Errorf("Solve(%v) error = %v, want INVALID_DEMAND", d, err)
		}
	}
}

func TestSolveOverflow(t *testing.T) {
	_, err := Solve(Demand{math.MaxInt64, 1})
	if !errors.Is(err, errors.ErrCodeOverflow) {
		t.Errorf("Solve error = %v, want OVERFLOW", err)
	}
}

func TestSolveLayerGuard(t *testing.T) {
	// {7, 1} needs three layers.
	_, err := Solve(Demand{7, 1}, WithMaxLayers(2))
	if !errors.Is(err, errors.ErrCodeNonConvergent) {
		t.Fatalf("Solve error = %v, want NON_CONVERGENT", err)
	}

	if _, err := Solve(Demand{7, 1}, WithMaxLayers(3)); err != nil {
		t.Errorf("Solve with exact guard error: %v", err)
	}
}

func TestSolveLayerRejectsIndivisibleTotal(t *testing.T) {
	// 7 needs a return unit; 8 divides. A total of 5 after the return is
	// impossible from solveLayer's own arithmetic, so probe divides directly.
	if divides(5) || divides(7) || !divides(8) || !divides(9) {
		t.Fatal("divides disagrees with arithmetic")
	}

	l, err := solveLayer(Demand{4, 3}, 7)
	if err != nil {
		t.Fatalf("solveLayer error: %v", err)
	}
	if !l.Return || l.Total != 8 || l.Arity != 2 {
		t.Errorf("solveLayer(7) = %+v, want return, total 8, arity 2", l)
	}

	if _, err := solveLayer(Demand{1}, math.MaxInt64); !errors.Is(err, errors.ErrCodeOverflow) {
		t.Errorf("solveLayer(MaxInt64) error = %v, want OVERFLOW", err)
	}
}

func TestSolveProperties(t *testing.T) {
	check := func(t *testing.T, d Demand) {
		t.Helper()
		p, err := Solve(d)
		if err != nil {
			t.Fatalf("Solve(%v) error: %v", d, err)
		}

		sum, _ := p.Demand.Sum()

		// Conservation.
		if got := p.Delivered(); !slices.Equal(got, p.Demand) {
			t.Fatalf("Solve(%v) delivers %v, want %v", d, got, p.Demand)
		}

		// Termination bound.
		if depth := p.Depth(); depth > bits.Len64(uint64(sum)) {
			t.Fatalf("Solve(%v) uses %d layers for sum %d", d, depth, sum)
		}

		// Ordering: input-facing layer fits one splitter, output-facing
		// layer carries the whole normalized demand.
		first, last := p.Layers[0], p.Layers[p.Depth()-1]
		if first.Total > 3 {
			t.Fatalf("Solve(%v) first total = %d", d, first.Total)
		}
		if last.Total != sum+last.ReturnArms() {
			t.Fatalf("Solve(%v) last total = %d, want %d", d, last.Total, sum+last.ReturnArms())
		}

		// Totals shrink towards the input.
		for i := 1; i < p.Depth(); i++ {
			if p.Layers[i].Total < p.Layers[i-1].Total {
				t.Fatalf("Solve(%v) total decreases at layer %d", d, i+1)
			}
		}
	}

	for a := int64(1); a <= 60; a++ {
		check(t, Demand{a})
		for b := int64(1); b <= 60; b++ {
			check(t, Demand{a, b})
		}
	}
	for a := int64(1); a <= 15; a++ {
		for b := int64(1); b <= 15; b++ {
			for c := int64(1); c <= 15; c++ {
				check(t, Demand{a, b, c})
			}
		}
	}
	check(t, Demand{1 << 40, 3, 7, 1})
}

package splitter

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/splitplan/pkg/errors"
)

func TestDemandValidate(t *testing.T) {
	tests := []struct {
		name    string
		demand  Demand
		wantErr bool
	}{
		{"single", Demand{1}, false},
		{"several", Demand{54, 18, 24}, false},

		{"nil", nil, true},
		{"empty", Demand{}, true},
		{"zero", Demand{0, 1}, true},
		{"negative", Demand{-1, 2}, true},
		{"negative last", Demand{3, 4, -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.demand.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%v) error = %v, wantErr %v", tt.demand, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidDemand) {
				t.Errorf("Validate(%v) code = %v, want %v", tt.demand, errors.GetCode(err), errors.ErrCodeInvalidDemand)
			}
		})
	}
}

func TestDemandSumOverflow(t *testing.T) {
	if _, err := (Demand{math.MaxInt64, 1}).Sum(); !errors.Is(err, errors.ErrCodeOverflow) {
		t.Errorf("Sum() error = %v, want OVERFLOW", err)
	}

	got, err := Demand{math.MaxInt64 - 1, 1}.Sum()
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if got != math.MaxInt64 {
		t.Errorf("Sum() = %d, want %d", got, int64(math.MaxInt64))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   Demand
		want Demand
	}{
		{Demand{1, 1}, Demand{1, 1}},
		{Demand{2, 2}, Demand{1, 1}},
		{Demand{6, 3}, Demand{2, 1}},
		{Demand{54, 24, 18}, Demand{9, 4, 3}},
		{Demand{12, 18}, Demand{2, 3}},
		{Demand{5}, Demand{5}},
		{Demand{48}, Demand{1}},
		{Demand{10, 15}, Demand{10, 15}},
	}

	for _, tt := range tests {
		got := Normalize(tt.in)
		if !slices.Equal(got, tt.want) {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDoesNotMutate(t *testing.T) {
	in := Demand{8, 4}
	_ = Normalize(in)
	if !slices.Equal(in, Demand{8, 4}) {
		t.Errorf("Normalize mutated its input: %v", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for a := int64(1); a <= 40; a++ {
		for b := int64(1); b <= 40; b++ {
			once := Normalize(Demand{a, b})
			twice := Normalize(once)
			if !slices.Equal(once, twice) {
				t.Fatalf("Normalize not idempotent for [%d %d]: %v then %v", a, b, once, twice)
			}
			if once.divisibleBy(2) || once.divisibleBy(3) {
				t.Fatalf("Normalize([%d %d]) = %v still has a common factor", a, b, once)
			}
		}
	}
}

func TestNormalizeZeros(t *testing.T) {
	if got := Normalize(Demand{0, 0}); !slices.Equal(got, Demand{0, 0}) {
		t.Errorf("Normalize([0 0]) = %v", got)
	}
	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("Normalize(nil) = %v", got)
	}
}

func TestSortDescending(t *testing.T) {
	sorted, order := SortDescending(Demand{18, 54, 24, 18})

	if want := (Demand{54, 24, 18, 18}); !slices.Equal(sorted, want) {
		t.Errorf("sorted = %v, want %v", sorted, want)
	}
	// Equal values keep input order: the first 18 (index 0) precedes index 3.
	if want := []int{1, 2, 0, 3}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

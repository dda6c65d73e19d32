package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

func TestParseDemand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    splitter.Demand
		wantErr bool
	}{
		{"commas", "54,18,24", splitter.Demand{54, 18, 24}, false},
		{"colons", "54:18:24", splitter.Demand{54, 18, 24}, false},
		{"spaces", "  3 1 ", splitter.Demand{3, 1}, false},
		{"mixed", "3, 2:1\t1", splitter.Demand{3, 2, 1, 1}, false},
		{"single", "5", splitter.Demand{5}, false},
		{"negative parses", "-1,2", splitter.Demand{-1, 2}, false},
		{"empty", "", nil, true},
		{"separators only", " , : ", nil, true},
		{"word", "3,x", nil, true},
		{"float", "1.5,2", nil, true},
		{"overflow", "99999999999999999999", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDemand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDemand(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidDemand) {
					t.Errorf("parseDemand(%q) code = %v, want INVALID_DEMAND", tt.input, errors.GetCode(err))
				}
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseDemand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDemandArgs(t *testing.T) {
	got, err := parseDemandArgs([]string{"54", "18:24"})
	if err != nil {
		t.Fatalf("parseDemandArgs error: %v", err)
	}
	if !slices.Equal(got, splitter.Demand{54, 18, 24}) {
		t.Errorf("parseDemandArgs = %v", got)
	}
}

func TestLooksLikePlanFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "saved")
	if err := os.WriteFile(existing, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		arg  string
		want bool
	}{
		{"plan.json", true},
		{"PLAN.JSON", true},
		{existing, true},
		{dir, false},
		{"54:18:24", false},
		{"3,1", false},
	}
	for _, tt := range tests {
		if got := looksLikePlanFile(tt.arg); got != tt.want {
			t.Errorf("looksLikePlanFile(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestIsQuit(t *testing.T) {
	for _, line := range []string{"q", "quit", " QUIT ", "exit"} {
		if !isQuit(line) {
			t.Errorf("isQuit(%q) = false", line)
		}
	}
	for _, line := range []string{"", "3:1", "qq"} {
		if isQuit(line) {
			t.Errorf("isQuit(%q) = true", line)
		}
	}
}

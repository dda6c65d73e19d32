package cache

import (
	"fmt"
	"strings"
)

// Keyer generates cache keys. Swap it out to namespace keys (see [ScopedKeyer]).
type Keyer interface {
	// PlanKey returns the key for a plan solved from input.
	PlanKey(input []int64, opts PlanKeyOpts) string

	// ArtifactKey returns the key for a rendered plan.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// PlanKeyOpts holds the solver options that change a plan.
type PlanKeyOpts struct {
	MaxLayers int `json:"max_layers,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Detailed  bool   `json:"detailed,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey hashes the input in its given order. Reordered inputs are distinct
// plans because the output labels differ.
func (DefaultKeyer) PlanKey(input []int64, opts PlanKeyOpts) string {
	return hashKey("plan", demandString(input), opts)
}

// ArtifactKey hashes the plan hash with the render options.
func (DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts)
}

func demandString(input []int64) string {
	parts := make([]string, len(input))
	for i, v := range input {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

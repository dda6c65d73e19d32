// Package pipeline provides the solve → render pipeline shared by the CLI
// and the API server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Plan: validate the demand and solve the splitter layers
//  2. Render: draw the plan and produce artifacts (DOT, SVG, PNG, PDF, JSON, text)
//
// Each stage can be run on its own or through [Runner.Execute]. Both stages
// are cached: plans by input demand and solver options, artifacts by plan
// hash and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Demand:  []int64{54, 18, 24},
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/splitplan/pkg/cache"
	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/render/nodelink"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "text"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatText: true,
}

// FormatNames lists the formats in the order shown to users.
var FormatNames = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON, FormatText}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatText: "text/plain; charset=utf-8",
}

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatSVG

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Plan options
	Demand    []int64 `json:"demand"`
	MaxLayers int     `json:"max_layers,omitempty"`
	Refresh   bool    `json:"refresh,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Direction string   `json:"direction,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Plan *splitter.Plan

	// PlanHash is the content hash of the plan JSON.
	PlanHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Outputs    int
	Layers     int
	Splitters  int64
	Returns    int
	SolveTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlanHit   bool // plan came from cache
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json, text)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDirection checks a Graphviz layout direction.
func ValidateDirection(dir string) error {
	switch dir {
	case "", nodelink.DirectionTopDown, nodelink.DirectionLeftRight:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid direction: %q (must be TB or LR)", dir)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForPlan(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForPlan checks the demand and solver options.
func (o *Options) ValidateForPlan() error {
	if err := splitter.Demand(o.Demand).Validate(); err != nil {
		return err
	}
	if o.MaxLayers < 0 {
		return errors.New(errors.ErrCodeInvalidDemand, "max_layers must not be negative")
	}
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateDirection(o.Direction)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SolveOptions returns the solver options for o.
func (o *Options) SolveOptions() []splitter.Option {
	var opts []splitter.Option
	if o.MaxLayers > 0 {
		opts = append(opts, splitter.WithMaxLayers(o.MaxLayers))
	}
	return opts
}

// PlanKeyOpts returns cache key options for planning.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{MaxLayers: o.MaxLayers}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options that do not affect a format are dropped so equal artifacts share a key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if slices.Contains([]string{FormatDOT, FormatSVG, FormatPNG, FormatPDF}, format) {
		k.Detailed = o.Detailed
		k.Direction = o.Direction
	}
	return k
}

// NodelinkOptions returns the diagram options for o.
func (o *Options) NodelinkOptions() nodelink.Options {
	return nodelink.Options{Detailed: o.Detailed, Direction: o.Direction}
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/splitplan/pkg/cache"
	"github.com/matzehuels/splitplan/pkg/errors"
	planio "github.com/matzehuels/splitplan/pkg/io"
	"github.com/matzehuels/splitplan/pkg/render/diagram"
	"github.com/matzehuels/splitplan/pkg/render/nodelink"
	"github.com/matzehuels/splitplan/pkg/render/text"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// Render generates output artifacts in the requested formats.
// The diagram is built once and shared by all Graphviz formats.
func Render(ctx context.Context, p *splitter.Plan, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var dot string
	dotFor := func() (string, error) {
		if dot != "" {
			return dot, nil
		}
		d, err := diagram.Build(p)
		if err != nil {
			return "", err
		}
		dot = nodelink.ToDOT(d, opts.NodelinkOptions())
		return dot, nil
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := renderFormat(ctx, p, format, dotFor)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, p *splitter.Plan, format string, dotFor func() (string, error)) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalPlan(p)
	case FormatText:
		return []byte(text.Table(p, text.Options{}) + "\n" + text.Summary(p) + "\n"), nil
	}

	dot, err := dotFor()
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
}

// PlanHash returns the content hash of p's JSON encoding.
func PlanHash(p *splitter.Plan) (string, error) {
	data, err := MarshalPlan(p)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// MarshalPlan encodes p in the plan JSON format.
func MarshalPlan(p *splitter.Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := planio.WriteJSON(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalPlan decodes and verifies a plan.
func UnmarshalPlan(data []byte) (*splitter.Plan, error) {
	return planio.ReadJSON(bytes.NewReader(data))
}

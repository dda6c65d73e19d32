package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/splitplan/pkg/splitter"
)

// FormatVersion is written to every exported plan.
const FormatVersion = 1

type document struct {
	Version   int      `json:"version"`
	Input     []int64  `json:"input"`
	Demand    []int64  `json:"demand,omitempty"`
	Order     []int    `json:"order,omitempty"`
	Layers    []layer  `json:"layers"`
	Splitters []int64  `json:"splitters,omitempty"`
	Summary   *summary `json:"summary,omitempty"`
}

type layer struct {
	Arity  int     `json:"arity"`
	Total  int64   `json:"total"`
	Return bool    `json:"return"`
	Takes  []int64 `json:"takes"`
}

type summary struct {
	Layers    int   `json:"layers"`
	Splitters int64 `json:"splitters"`
	Returns   int   `json:"returns"`
}

// WriteJSON encodes a plan as JSON and writes it to w.
// The output carries the layers in input-first order plus derived splitter
// counts. Derived fields are ignored by [ReadJSON].
func WriteJSON(p *splitter.Plan, w io.Writer) error {
	out := document{
		Version:   FormatVersion,
		Input:     p.Input,
		Demand:    p.Demand,
		Order:     p.Order,
		Layers:    make([]layer, len(p.Layers)),
		Splitters: p.Splitters(),
	}
	for i, l := range p.Layers {
		out.Layers[i] = layer{Arity: l.Arity, Total: l.Total, Return: l.Return, Takes: l.Takes}
	}

	var total int64
	for _, n := range out.Splitters {
		total += n
	}
	out.Summary = &summary{Layers: p.Depth(), Splitters: total, Returns: p.Returns()}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a plan to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(p *splitter.Plan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(p, f)
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// ReadJSON decodes a JSON plan from r.
//
// The input must be an object with "input" and "layers":
//
//	{
//	  "input": [3, 1],
//	  "layers": [
//	    {"arity": 2, "total": 2, "return": false, "takes": [1, 0]},
//	    {"arity": 2, "total": 4, "return": false, "takes": [1, 1]}
//	  ]
//	}
//
// "demand" and "order" are recomputed from "input" when omitted. Derived
// fields such as "splitters" and "summary" are ignored.
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed or the
// version is unknown, and the plan's INVARIANT_VIOLATION error if the layers
// do not describe a valid layout for the input. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*splitter.Plan, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode plan")
	}
	if data.Version != 0 && data.Version != FormatVersion {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported plan version %d", data.Version)
	}

	input := splitter.Demand(data.Input)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p := &splitter.Plan{
		Input:  input.Clone(),
		Demand: splitter.Demand(slices.Clone(data.Demand)),
		Order:  slices.Clone(data.Order),
		Layers: make([]splitter.Layer, len(data.Layers)),
	}
	if p.Demand == nil && p.Order == nil {
		sorted, order := splitter.SortDescending(input)
		p.Demand = splitter.Normalize(sorted)
		p.Order = order
	}
	for i, l := range data.Layers {
		p.Layers[i] = splitter.Layer{Arity: l.Arity, Total: l.Total, Return: l.Return, Takes: slices.Clone(l.Takes)}
	}

	if err := p.Verify(); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return p, nil
}

// ImportJSON reads a JSON file at path and returns the decoded plan.
// It returns the same errors as [ReadJSON], wrapped with the file path.
func ImportJSON(path string) (*splitter.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	p, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

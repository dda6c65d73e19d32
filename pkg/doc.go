// Package pkg provides the libraries behind splitplan.
//
// # Overview
//
// Splitplan designs networks of 2- and 3-way splitters that divide one input
// flow into outputs with a given integer ratio. The pkg directory is
// organized as:
//
//  1. [splitter] - demand normalization, the layer solver and plan checks
//  2. [render] - diagram model, Graphviz output and the terminal table
//  3. [io] - plan JSON import and export
//  4. [pipeline] - orchestration (solve → render) with caching
//  5. [cache], [store], [config] - infrastructure
//  6. [api] - the HTTP API
//
// # Architecture
//
//	demand (e.g. 54:18:24)
//	         ↓
//	    [splitter] (normalize, sort, solve, reverse)
//	         ↓
//	    [render/diagram] (nodes and arms)
//	         ↓
//	    [render/nodelink] DOT/SVG/PNG/PDF, [render/text] table, [io] JSON
//
// # Quick Start
//
//	p, err := splitter.Solve(splitter.Demand{54, 18, 24})
//	if err != nil {
//	    return err
//	}
//	for i, l := range p.Layers {
//	    fmt.Printf("layer %d: %d-way, takes %v\n", i+1, l.Arity, l.Takes)
//	}
//
// [splitter]: github.com/matzehuels/splitplan/pkg/splitter
// [render]: github.com/matzehuels/splitplan/pkg/render
// [io]: github.com/matzehuels/splitplan/pkg/io
// [pipeline]: github.com/matzehuels/splitplan/pkg/pipeline
// [cache]: github.com/matzehuels/splitplan/pkg/cache
// [store]: github.com/matzehuels/splitplan/pkg/store
// [config]: github.com/matzehuels/splitplan/pkg/config
// [api]: github.com/matzehuels/splitplan/pkg/api
// [render/diagram]: github.com/matzehuels/splitplan/pkg/render/diagram
// [render/nodelink]: github.com/matzehuels/splitplan/pkg/render/nodelink
// [render/text]: github.com/matzehuels/splitplan/pkg/render/text
package pkg

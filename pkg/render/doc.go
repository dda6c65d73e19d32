// Package render provides the rendering pipeline for splitter plans.
//
// # Overview
//
// Rendering happens in two steps. The [diagram] subpackage walks a verified
// plan and records an abstract node-link drawing: the input, one node per
// splitter, mergers and outputs, and every arm as an edge. The [nodelink]
// subpackage turns that drawing into Graphviz DOT and renders it.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	d, err := diagram.Build(plan)
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//
// [diagram]: github.com/matzehuels/splitplan/pkg/render/diagram
// [nodelink]: github.com/matzehuels/splitplan/pkg/render/nodelink
package render

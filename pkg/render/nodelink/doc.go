// Package nodelink renders splitter diagrams as Graphviz node-link drawings.
//
// # Overview
//
// This package takes the abstract drawing recorded by
// [github.com/matzehuels/splitplan/pkg/render/diagram] and produces DOT
// source, SVG, PNG or PDF. Splitters appear as circles labeled with their
// arity, outputs as boxes, feed-forward arms in blue and return arms as red
// dashed edges back to the input.
//
// # Usage
//
// Draw the plan, convert it to DOT, then render:
//
//	d, err := diagram.Build(plan)
//	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PNG or PDF output:
//
//	png, err := nodelink.RenderPNG(ctx, dot)
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//
// # Options
//
//   - Detailed: label arms with their share of input flow and outputs with
//     their demand
//   - Direction: "TB" (default) or "LR"
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and PNG
// rendering. PDF conversion requires librsvg (rsvg-convert).
package nodelink

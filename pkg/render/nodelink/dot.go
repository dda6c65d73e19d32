package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/splitplan/pkg/render"
	"github.com/matzehuels/splitplan/pkg/render/diagram"
)

// Layout directions.
const (
	DirectionTopDown   = "TB"
	DirectionLeftRight = "LR"
)

// Options configures splitter diagram rendering.
type Options struct {
	// Detailed labels every arm with the share of input flow it carries and
	// every output with its demand.
	Detailed bool

	// Direction is the Graphviz rankdir: "TB" (default) or "LR".
	Direction string
}

// Colors follow the feed-forward / feed-back legend of the diagram.
const (
	colorForward = "blue"
	colorReturn  = "red"
	colorInput   = "lightgreen"
	colorMerger  = "red"
)

// ToDOT converts a diagram to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Splitters of the same layer share a rank. Return edges do not constrain the
// layout so the input stays on top.
func ToDOT(d *diagram.Diagram, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = DirectionTopDown
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=16, fontname=\"Helvetica-Bold\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%s, arrowsize=0.6];\n", colorForward)
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ranks := make([][]string, d.Ranks())
	for _, n := range d.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		ranks[n.Rank] = append(ranks[n.Rank], n.ID)
	}

	buf.WriteString("\n")
	for _, ids := range ranks {
		if len(ids) < 2 {
			continue
		}
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		attrs := fmtEdgeAttrs(e, opts.Detailed)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n diagram.Node, detailed bool) string {
	if n.Kind == diagram.NodeOutput && detailed {
		return fmt.Sprintf("%s\n%d", n.Label, n.Demand)
	}
	return n.Label
}

func fmtAttrs(n diagram.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	switch n.Kind {
	case diagram.NodeInput:
		attrs = append(attrs, "shape=ellipse", "fillcolor="+colorInput)
	case diagram.NodeSplitter:
		attrs = append(attrs, "fillcolor=\"#1f77b4\"", "fontcolor=white", "width=0.5", "fixedsize=true")
	case diagram.NodeMerger:
		attrs = append(attrs, "shape=ellipse", "fillcolor="+colorMerger, "fontcolor=white")
	case diagram.NodeOutput:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"")
	}
	return attrs
}

func fmtEdgeAttrs(e diagram.Edge, detailed bool) []string {
	var attrs []string
	if e.Kind == diagram.EdgeReturn {
		attrs = append(attrs, "color="+colorReturn, "constraint=false", "style=dashed")
	}
	if detailed && e.Share != "" && e.Kind != diagram.EdgeFeed {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Share), "fontsize=10")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderGraphviz(ctx, dot, graphviz.PNG)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// Package diagram turns a splitter plan into an abstract node-link drawing.
//
// [Draw] walks a verified [splitter.Plan] and reports every node and edge to a
// [Canvas]. The canvas is the only drawing state; backends such as the
// Graphviz sink in [github.com/matzehuels/splitplan/pkg/render/nodelink]
// consume the recorded [Diagram] instead of sharing global figure state.
//
// Arms of each layer are assigned splitter by splitter in a fixed order:
// outputs' takes (largest output first), then arms forwarded to the next
// layer, then the return arm fed back to the input.
package diagram

import (
	"fmt"

	"github.com/matzehuels/splitplan/pkg/splitter"
)

// NodeKind classifies diagram nodes.
type NodeKind int

const (
	NodeInput NodeKind = iota
	NodeSplitter
	NodeMerger
	NodeOutput
)

func (k NodeKind) String() string {
	switch k {
	case NodeInput:
		return "input"
	case NodeSplitter:
		return "splitter"
	case NodeMerger:
		return "merger"
	case NodeOutput:
		return "output"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// EdgeKind classifies diagram edges.
type EdgeKind int

const (
	// EdgeFeed connects the input or a forwarded arm to a splitter.
	EdgeFeed EdgeKind = iota
	// EdgeTake carries an arm to an output or its merger.
	EdgeTake
	// EdgeReturn carries an arm back to the input.
	EdgeReturn
	// EdgeMerge connects a merger to its output.
	EdgeMerge
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeFeed:
		return "feed"
	case EdgeTake:
		return "take"
	case EdgeReturn:
		return "return"
	case EdgeMerge:
		return "merge"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// Node is a drawable element.
type Node struct {
	ID    string
	Kind  NodeKind
	Label string

	// Rank is the drawing row: 0 for the input, i+1 for splitters of
	// layer i, and depth+1 for mergers and outputs.
	Rank int

	Arity  int   // splitters only
	Output int   // mergers and outputs: index in plan order
	Demand int64 // outputs only: original demand
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From string
	To   string
	Kind EdgeKind

	// Share is the fraction of one pass of input flow carried by the arm,
	// e.g. "1/8". Empty for merge edges.
	Share string
}

// Canvas receives the elements of a drawing.
type Canvas interface {
	AddNode(Node)
	AddEdge(Edge)
}

// Diagram is a Canvas that records everything drawn on it.
type Diagram struct {
	Nodes []Node
	Edges []Edge
}

// AddNode records n.
func (d *Diagram) AddNode(n Node) { d.Nodes = append(d.Nodes, n) }

// AddEdge records e.
func (d *Diagram) AddEdge(e Edge) { d.Edges = append(d.Edges, e) }

// CountNodes returns the number of nodes of the given kind.
func (d *Diagram) CountNodes(kind NodeKind) int {
	n := 0
	for _, node := range d.Nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

// CountEdges returns the number of edges of the given kind.
func (d *Diagram) CountEdges(kind EdgeKind) int {
	n := 0
	for _, e := range d.Edges {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Ranks returns the number of drawing rows.
func (d *Diagram) Ranks() int {
	maxRank := -1
	for _, n := range d.Nodes {
		maxRank = max(maxRank, n.Rank)
	}
	return maxRank + 1
}

// Build draws p on a fresh Diagram.
func Build(p *splitter.Plan) (*Diagram, error) {
	d := &Diagram{}
	if err := Draw(p, d); err != nil {
		return nil, err
	}
	return d, nil
}

// InputID is the ID of the input node.
const InputID = "input"

// SplitterID names splitter j of layer i.
func SplitterID(layer, j int64) string { return fmt.Sprintf("s%d_%d", layer, j) }

// OutputID names output k.
func OutputID(k int) string { return fmt.Sprintf("out%d", k) }

// MergerID names the merger in front of output k.
func MergerID(k int) string { return fmt.Sprintf("merge%d", k) }

// Draw reports the drawing of p to c. The plan is verified first so that the
// arm bookkeeping below cannot run out of arms.
func Draw(p *splitter.Plan, c Canvas) error {
	if err := p.Verify(); err != nil {
		return fmt.Errorf("draw plan: %w", err)
	}

	depth := p.Depth()
	arms := make([]int64, p.Outputs())
	for _, l := range p.Layers {
		for k, t := range l.Takes {
			arms[k] += t
		}
	}

	c.AddNode(Node{ID: InputID, Kind: NodeInput, Label: "input", Rank: 0})

	// Outputs and mergers first so backends can lay them out in plan order.
	sinks := make([]string, p.Outputs())
	for k := range p.Outputs() {
		demand := p.InputDemand(k)
		c.AddNode(Node{
			ID:     OutputID(k),
			Kind:   NodeOutput,
			Label:  fmt.Sprintf("output %d", p.Order[k]+1),
			Rank:   depth + 1,
			Output: k,
			Demand: demand,
		})
		sinks[k] = OutputID(k)
		if arms[k] > 1 {
			c.AddNode(Node{ID: MergerID(k), Kind: NodeMerger, Label: "merger", Rank: depth + 1, Output: k})
			c.AddEdge(Edge{From: MergerID(k), To: OutputID(k), Kind: EdgeMerge})
			sinks[k] = MergerID(k)
		}
	}

	splitters := p.Splitters()
	denom := int64(1)
	for i, l := range p.Layers {
		layer := int64(i)
		arity := int64(l.Arity)
		denom *= arity
		share := fmt.Sprintf("1/%d", denom)

		for j := range splitters[i] {
			c.AddNode(Node{
				ID:    SplitterID(layer, j),
				Kind:  NodeSplitter,
				Label: fmt.Sprintf("%d", l.Arity),
				Rank:  i + 1,
				Arity: l.Arity,
			})
		}
		if i == 0 {
			c.AddEdge(Edge{From: InputID, To: SplitterID(0, 0), Kind: EdgeFeed, Share: "1"})
		}

		arm := int64(0)
		next := func() string {
			id := SplitterID(layer, arm/arity)
			arm++
			return id
		}
		for k, t := range l.Takes {
			for range t {
				c.AddEdge(Edge{From: next(), To: sinks[k], Kind: EdgeTake, Share: share})
			}
		}
		for f := range p.Forwarded(i) {
			c.AddEdge(Edge{From: next(), To: SplitterID(layer+1, f), Kind: EdgeFeed, Share: share})
		}
		if l.Return {
			c.AddEdge(Edge{From: next(), To: InputID, Kind: EdgeReturn, Share: share})
		}
	}
	return nil
}

package splitter

import "slices"

// Arities supported by a splitter.
const (
	Arity2 = 2
	Arity3 = 3
)

// Layer is one row of splitters.
type Layer struct {
	// Arity is the number of arms of every splitter in this layer (2 or 3).
	Arity int `json:"arity"`

	// Total is the layer's flow in units of its finest subdivision,
	// including the returned unit.
	Total int64 `json:"total"`

	// Return is true when one arm of this layer is fed back to the input.
	Return bool `json:"return"`

	// Takes holds, per output in plan order, the number of arms of this
	// layer that go straight to that output.
	Takes []int64 `json:"takes"`
}

// ReturnArms returns 1 when the layer has a return arm, else 0.
func (l Layer) ReturnArms() int64 {
	if l.Return {
		return 1
	}
	return 0
}

// Taken returns the number of arms that go to outputs.
func (l Layer) Taken() int64 {
	var n int64
	for _, t := range l.Takes {
		n += t
	}
	return n
}

func (l Layer) clone() Layer {
	l.Takes = slices.Clone(l.Takes)
	return l
}

// Plan is a complete splitter layout.
// Plans are never modified after [Solve] returns them.
type Plan struct {
	// Input is the demand exactly as given to Solve.
	Input Demand `json:"input"`

	// Demand is Input sorted descending and normalized. Takes vectors are
	// indexed the same way.
	Demand Demand `json:"demand"`

	// Order maps each plan output to its index in Input.
	Order []int `json:"order"`

	// Layers runs from the splitter fed by the input to the layer nearest
	// the outputs.
	Layers []Layer `json:"layers"`
}

// Outputs returns the number of outputs.
func (p *Plan) Outputs() int {
	return len(p.Demand)
}

// Depth returns the number of layers.
func (p *Plan) Depth() int {
	return len(p.Layers)
}

// Layer returns a copy of layer i.
func (p *Plan) Layer(i int) Layer {
	return p.Layers[i].clone()
}

// Clone returns a deep copy of p.
func (p *Plan) Clone() *Plan {
	out := &Plan{
		Input:  p.Input.Clone(),
		Demand: p.Demand.Clone(),
		Order:  slices.Clone(p.Order),
		Layers: make([]Layer, len(p.Layers)),
	}
	for i, l := range p.Layers {
		out.Layers[i] = l.clone()
	}
	return out
}

// Splitters returns the number of splitters in every layer. The first layer
// has one splitter and each forwarded arm feeds one splitter of the next.
func (p *Plan) Splitters() []int64 {
	counts := make([]int64, len(p.Layers))
	n := int64(1)
	for i, l := range p.Layers {
		counts[i] = n
		n = n*int64(l.Arity) - l.Taken() - l.ReturnArms()
	}
	return counts
}

// Forwarded returns the number of arms of layer i that feed layer i+1.
func (p *Plan) Forwarded(i int) int64 {
	l := p.Layers[i]
	return p.Splitters()[i]*int64(l.Arity) - l.Taken() - l.ReturnArms()
}

// Returns counts the layers that feed an arm back to the input.
func (p *Plan) Returns() int {
	n := 0
	for _, l := range p.Layers {
		if l.Return {
			n++
		}
	}
	return n
}

// Delivered reconstructs each output's share from the layers: every arm taken
// at layer i is worth the product of the arities of the layers after i.
func (p *Plan) Delivered() []int64 {
	out := make([]int64, p.Outputs())
	weight := int64(1)
	for i := len(p.Layers) - 1; i >= 0; i-- {
		l := p.Layers[i]
		for k, t := range l.Takes {
			if k < len(out) {
				out[k] += t * weight
			}
		}
		weight *= int64(l.Arity)
	}
	return out
}

// InputDemand returns the demand of plan output k in input order terms:
// the original value given for that output.
func (p *Plan) InputDemand(k int) int64 {
	return p.Input[p.Order[k]]
}

// assemble turns layers accumulated in solve order (output side first) into
// plan order. It always returns a fresh slice.
func assemble(acc []Layer) []Layer {
	out := make([]Layer, len(acc))
	for i, l := range acc {
		out[len(acc)-1-i] = l
	}
	return out
}

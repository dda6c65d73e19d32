// Package text renders a splitter plan as a terminal table.
//
// One row per layer, input side first: arity, splitter count, total flow,
// whether a return arm exists, and the arms taken by each output. Output
// columns are labeled with the original 1-based position and demand.
package text

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/splitplan/pkg/splitter"
)

// Options controls table styling. The zero value renders plain text.
type Options struct {
	HeaderStyle lipgloss.Style
	BorderStyle lipgloss.Style
	ReturnStyle lipgloss.Style
}

// Headers returns the column headers for p.
func Headers(p *splitter.Plan) []string {
	h := []string{"Layer", "Arity", "Splitters", "Total", "Return"}
	for k := range p.Outputs() {
		h = append(h, fmt.Sprintf("#%d (%d)", p.Order[k]+1, p.InputDemand(k)))
	}
	return h
}

// Rows returns one row per layer.
func Rows(p *splitter.Plan) [][]string {
	splitters := p.Splitters()
	rows := make([][]string, p.Depth())
	for i, l := range p.Layers {
		ret := ""
		if l.Return {
			ret = "yes"
		}
		row := []string{
			fmt.Sprint(i + 1),
			fmt.Sprint(l.Arity),
			fmt.Sprint(splitters[i]),
			fmt.Sprint(l.Total),
			ret,
		}
		for _, t := range l.Takes {
			row = append(row, fmt.Sprint(t))
		}
		rows[i] = row
	}
	return rows
}

// Table renders p as a bordered table.
func Table(p *splitter.Plan, opts Options) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(opts.BorderStyle).
		Headers(Headers(p)...).
		Rows(Rows(p)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return opts.HeaderStyle.Inherit(base)
			}
			if col == 4 {
				return opts.ReturnStyle.Inherit(base)
			}
			return base
		})
	return t.Render()
}

// Summary is a one-line description of p.
func Summary(p *splitter.Plan) string {
	var total int64
	for _, n := range p.Splitters() {
		total += n
	}
	parts := []string{
		fmt.Sprintf("%d layers", p.Depth()),
		fmt.Sprintf("%d splitters", total),
	}
	if r := p.Returns(); r > 0 {
		parts = append(parts, fmt.Sprintf("%d returned", r))
	}
	return fmt.Sprintf("%s -> ratio %s: %s", demandString(p.Input), demandString(originalRatio(p)), strings.Join(parts, ", "))
}

// originalRatio maps the normalized demand back to input order.
func originalRatio(p *splitter.Plan) splitter.Demand {
	out := make(splitter.Demand, p.Outputs())
	for k, idx := range p.Order {
		out[idx] = p.Demand[k]
	}
	return out
}

func demandString(d splitter.Demand) string {
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ":")
}

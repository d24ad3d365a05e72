package model

import "github.com/abunai/impact/internal/ir"

// Resolver extracts characteristic literal names from flow elements.
type Resolver interface {
	// DataLiterals returns the literals of all data characteristics on the
	// element's variables.
	DataLiterals(e ir.FlowElement) []string
	// NodeLiterals returns the literals of the node characteristics in effect
	// where the element executes.
	NodeLiterals(e ir.FlowElement) []string
}

// LiteralResolver reads literals straight from the flow element.
// Results are NFC-normalized and de-duplicated in first-seen order.
type LiteralResolver struct{}

// DataLiterals implements Resolver.
func (LiteralResolver) DataLiterals(e ir.FlowElement) []string {
	var raw []string
	for _, v := range e.Variables {
		for _, c := range v.Characteristics {
			raw = append(raw, c.Literal)
		}
	}
	return ir.NormalizeLiterals(raw)
}

// NodeLiterals implements Resolver.
func (LiteralResolver) NodeLiterals(e ir.FlowElement) []string {
	raw := make([]string, 0, len(e.NodeCharacteristics))
	for _, c := range e.NodeCharacteristics {
		raw = append(raw, c.Literal)
	}
	return ir.NormalizeLiterals(raw)
}

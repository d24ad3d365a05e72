package confidentiality

import (
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
)

// Evaluator finds the elements of a sequence that violate a predicate.
type Evaluator struct {
	resolver model.Resolver
}

// NewEvaluator creates an evaluator. A nil resolver reads literals straight
// from the flow elements.
func NewEvaluator(resolver model.Resolver) *Evaluator {
	if resolver == nil {
		resolver = model.LiteralResolver{}
	}
	return &Evaluator{resolver: resolver}
}

// Evaluate returns the violating elements of seq in sequence order.
// A nil predicate matches nothing. Never returns nil.
func (e *Evaluator) Evaluate(seq ir.ActionSequence, pred Predicate) []ir.FlowElement {
	violations := []ir.FlowElement{}
	if pred == nil {
		return violations
	}
	for _, el := range seq.Elements {
		if pred(e.resolver.DataLiterals(el), e.resolver.NodeLiterals(el)) {
			violations = append(violations, el)
		}
	}
	return violations
}

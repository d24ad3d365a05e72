package confidentiality

import (
	"slices"
	"strings"

	"github.com/abunai/impact/internal/ir"
)

// Constraint keys, compared case-insensitively.
const (
	KeyData = "dataconstraints"
	KeyNode = "nodeconstraints"
)

// Predicate decides whether an element with the given data and node literals
// violates confidentiality.
type Predicate func(data, node []string) bool

// Never is the predicate that matches nothing.
func Never(_, _ []string) bool { return false }

// Constraint is a set of forbidden data literals and forbidden node literals.
// Literals are normalized and de-duplicated in first-seen order.
type Constraint struct {
	Data []string `json:"data"`
	Node []string `json:"node"`
}

// Parse reads the constraint lines of one description.
func Parse(description string) Constraint {
	return FromDescriptions(description)
}

// FromDescriptions accumulates the constraint lines of every description.
//
// A line contributes when it has the form key:value1,value2 with key
// dataconstraints or nodeconstraints. Whitespace is dropped from the key and
// trimmed around each value; spaces inside a value are kept. Lines with
// another key or without exactly one colon are ignored.
func FromDescriptions(descriptions ...string) Constraint {
	var data, node []string
	for _, d := range descriptions {
		for _, line := range strings.Split(d, "\n") {
			key, values, ok := parseLine(line)
			if !ok {
				continue
			}
			switch key {
			case KeyData:
				data = append(data, values...)
			case KeyNode:
				node = append(node, values...)
			}
		}
	}
	return Constraint{
		Data: ir.NormalizeLiterals(data),
		Node: ir.NormalizeLiterals(node),
	}
}

func parseLine(line string) (string, []string, bool) {
	fields := strings.Split(line, ":")
	if len(fields) != 2 {
		return "", nil, false
	}
	key := strings.ToLower(strings.Join(strings.Fields(fields[0]), ""))
	if key != KeyData && key != KeyNode {
		return "", nil, false
	}
	values := strings.Split(fields[1], ",")
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return key, values, true
}

// IsEmpty reports whether the constraint forbids nothing.
func (c Constraint) IsEmpty() bool {
	return len(c.Data) == 0 && len(c.Node) == 0
}

// Matches reports whether the literals intersect the forbidden sets.
// An empty constraint never matches.
func (c Constraint) Matches(data, node []string) bool {
	return intersects(c.Data, data) || intersects(c.Node, node)
}

// Predicate returns Matches as a Predicate.
func (c Constraint) Predicate() Predicate {
	if c.IsEmpty() {
		return Never
	}
	return c.Matches
}

// String renders the constraint in description form. Parsing the result
// yields an equal constraint.
func (c Constraint) String() string {
	var lines []string
	if len(c.Data) > 0 {
		lines = append(lines, "DataConstraints: "+strings.Join(c.Data, ","))
	}
	if len(c.Node) > 0 {
		lines = append(lines, "NodeConstraints: "+strings.Join(c.Node, ","))
	}
	return strings.Join(lines, "\n")
}

func intersects(forbidden, literals []string) bool {
	if len(forbidden) == 0 {
		return false
	}
	for _, l := range literals {
		if slices.Contains(forbidden, ir.NormalizeLiteral(l)) {
			return true
		}
	}
	return false
}

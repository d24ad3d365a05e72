package ir

import (
	"fmt"
	"strings"
)

// ElementID is an opaque, stable identifier of an architecture element.
type ElementID string

// Category is the structural category of an architecture element.
//
// The zero value is Unclassified so that a missing lookup result is inert.
type Category int

const (
	Unclassified Category = iota
	AssemblyComponent
	ResourceContainer
	UsageActor
	InterfaceSignature
	Interface
	Connector
	EntryLevelCall
	ExternalCall
	VariableAssignment
	Branch
)

var categoryNames = [...]string{
	Unclassified:       "Unclassified",
	AssemblyComponent:  "AssemblyComponent",
	ResourceContainer:  "ResourceContainer",
	UsageActor:         "UsageActor",
	InterfaceSignature: "InterfaceSignature",
	Interface:          "Interface",
	Connector:          "Connector",
	EntryLevelCall:     "EntryLevelCall",
	ExternalCall:       "ExternalCall",
	VariableAssignment: "VariableAssignment",
	Branch:             "Branch",
}

// Categories returns every classifiable category in declaration order.
func Categories() []Category {
	return []Category{
		AssemblyComponent,
		ResourceContainer,
		UsageActor,
		InterfaceSignature,
		Interface,
		Connector,
		EntryLevelCall,
		ExternalCall,
		VariableAssignment,
		Branch,
	}
}

// String returns the category name.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Classifiable reports whether sources of this category propagate.
func (c Category) Classifiable() bool {
	return c > Unclassified && int(c) < len(categoryNames)
}

// UncertaintyType returns the uncertainty family used in reports.
func (c Category) UncertaintyType() string {
	switch c {
	case AssemblyComponent:
		return "Component"
	case ResourceContainer, UsageActor:
		return "Actor"
	case InterfaceSignature, Interface:
		return "Interface"
	case Connector:
		return "Connector"
	case EntryLevelCall, ExternalCall, VariableAssignment, Branch:
		return "Behavior"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name. Unknown names decode as Unclassified.
func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

// ParseCategory returns the category with the given name (case-insensitive).
func ParseCategory(name string) Category {
	for i, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return Category(i)
		}
	}
	return Unclassified
}

// Source is an architecture element at which an assumption may be wrong.
// Sources are immutable once created.
type Source struct {
	ID       ElementID `json:"id"`
	Category Category  `json:"category"`
	Name     string    `json:"name,omitempty"`
	Kind     string    `json:"kind,omitempty"`
}

// String describes the source the way analysis reports do.
func (s Source) String() string {
	kind := s.Kind
	if kind == "" {
		kind = s.Category.String()
	}
	return fmt.Sprintf("%s Uncertainty annotated to %s %q (%s).",
		s.Category.UncertaintyType(), kind, s.Name, s.ID)
}

// Impact links an uncertainty source to one element affected by it.
type Impact struct {
	Source   Source    `json:"source"`
	Affected ElementID `json:"affected"`
}

// String renders the impact for detailed reports.
func (i Impact) String() string {
	return fmt.Sprintf("%s -> %s", i.Source.ID, i.Affected)
}

// Characteristic is a typed label attached to a variable or a node.
type Characteristic struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Literal string `json:"literal" yaml:"literal"`
}

// Variable is a data-flow variable carried by a flow element.
type Variable struct {
	Name            string           `json:"name"`
	Characteristics []Characteristic `json:"characteristics,omitempty"`
}

// FlowElement is one step of an action sequence.
type FlowElement struct {
	ID                  ElementID        `json:"id"`
	Name                string           `json:"name,omitempty"`
	Kind                string           `json:"kind,omitempty"`
	Scope               ElementID        `json:"scope,omitempty"`
	Variables           []Variable       `json:"variables,omitempty"`
	NodeCharacteristics []Characteristic `json:"node_characteristics,omitempty"`
}

// String renders the element for reports.
func (e FlowElement) String() string {
	if e.Name == "" {
		return fmt.Sprintf("%s (%s)", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s %q (%s)", e.Kind, e.Name, e.ID)
}

// ActionSequence is an ordered, non-empty execution trace.
type ActionSequence struct {
	Elements []FlowElement `json:"elements"`
}

// NewActionSequence builds a sequence from the given elements.
func NewActionSequence(elements ...FlowElement) ActionSequence {
	return ActionSequence{Elements: elements}
}

// IDs returns the element identities in order.
func (s ActionSequence) IDs() []ElementID {
	ids := make([]ElementID, len(s.Elements))
	for i, e := range s.Elements {
		ids[i] = e.ID
	}
	return ids
}

// Contains reports whether any element of the sequence has the given id.
func (s ActionSequence) Contains(id ElementID) bool {
	for _, e := range s.Elements {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Touches reports whether the sequence contains any element of the set.
func (s ActionSequence) Touches(ids map[ElementID]struct{}) bool {
	for _, e := range s.Elements {
		if _, ok := ids[e.ID]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of elements.
func (s ActionSequence) Len() int {
	return len(s.Elements)
}

// ModelEntity names an architecture element as assumption tooling sees it.
type ModelEntity struct {
	ID          string `json:"id" yaml:"id"`
	ModelView   string `json:"modelView,omitempty" yaml:"model_view,omitempty"`
	ElementName string `json:"elementName,omitempty" yaml:"element_name,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
}

// String renders the entity the way assumption tooling displays it.
func (m ModelEntity) String() string {
	var b strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&b, "Name: %s ", m.Name)
	}
	if m.Type != "" {
		fmt.Fprintf(&b, "Type: %s ", m.Type)
	}
	fmt.Fprintf(&b, "Id: %s", m.ID)
	return b.String()
}

// Assumption is an architect's assumption about the deployed system.
//
// JSON field names follow the assumption exchange format (camelCase). The
// analysis reads only AffectedEntities and Description and sets Analyzed once
// the entities have been registered.
type Assumption struct {
	ID                     string        `json:"id" yaml:"id"`
	Type                   string        `json:"type,omitempty" yaml:"type,omitempty"`
	Description            string        `json:"description" yaml:"description"`
	AffectedEntities       []ModelEntity `json:"affectedEntities" yaml:"affected_entities"`
	ProbabilityOfViolation *float64      `json:"probabilityOfViolation,omitempty" yaml:"probability_of_violation,omitempty"`
	Impact                 string        `json:"impact,omitempty" yaml:"impact,omitempty"`
	Analyzed               bool          `json:"analyzed" yaml:"analyzed"`
}

// EntityIDs returns the ids of the affected entities in order.
func (a Assumption) EntityIDs() []ElementID {
	ids := make([]ElementID, 0, len(a.AffectedEntities))
	for _, e := range a.AffectedEntities {
		ids = append(ids, ElementID(e.ID))
	}
	return ids
}

package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/abunai/impact/internal/ir"
)

// Store is an immutable, indexed architecture model.
//
// Thread-safety: a built Store is read-only and safe for concurrent use.
type Store struct {
	name      string
	elements  map[ir.ElementID]*Element
	order     []ir.ElementID
	edges     map[Relation]map[ir.ElementID][]ir.ElementID
	scenarios []ir.ElementID
}

// Name returns the model name.
func (s *Store) Name() string {
	return s.name
}

// Len returns the number of elements.
func (s *Store) Len() int {
	return len(s.order)
}

// Lookup returns the element with the given id.
func (s *Store) Lookup(id ir.ElementID) (Element, bool) {
	e, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

// Neighbors returns the ids related to id by rel, in declaration order.
// Returns nil for unknown ids or when no neighbors exist.
func (s *Store) Neighbors(id ir.ElementID, rel Relation) []ir.ElementID {
	ids := s.edges[rel][id]
	if len(ids) == 0 {
		return nil
	}
	return slices.Clone(ids)
}

// Elements returns every element in declaration order.
func (s *Store) Elements() []Element {
	out := make([]Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.elements[id])
	}
	return out
}

// Scenarios returns the usage scenario ids in declaration order.
func (s *Store) Scenarios() []ir.ElementID {
	return slices.Clone(s.scenarios)
}

// EntryOf returns the first action of a usage scenario: its start action if
// one is declared, otherwise the first action in declaration order.
func (s *Store) EntryOf(scenario ir.ElementID) (ir.ElementID, bool) {
	actions := s.edges[ScenarioActions][scenario]
	for _, id := range actions {
		if s.elements[id].Kind == KindStart {
			return id, true
		}
	}
	if len(actions) == 0 {
		return "", false
	}
	return actions[0], true
}

// NodeCharacteristicsOf returns the node characteristics in effect where an
// action executes: those of the resource container hosting its assembly
// context, or those of its usage scenario.
func (s *Store) NodeCharacteristicsOf(id ir.ElementID) []ir.Characteristic {
	e, ok := s.elements[id]
	if !ok || e.Scope == "" {
		return nil
	}
	scope, ok := s.elements[e.Scope]
	if !ok {
		return nil
	}
	switch scope.Kind {
	case KindUsageScenario:
		return slices.Clone(scope.NodeCharacteristics)
	case KindAssemblyContext:
		if c, ok := s.elements[scope.Container]; ok {
			return slices.Clone(c.NodeCharacteristics)
		}
	}
	return nil
}

// ReferenceError reports an element referring to an id that does not exist
// or has the wrong kind.
type ReferenceError struct {
	Element ir.ElementID
	Field   string
	Target  ir.ElementID
	Reason  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("element %s: %s references %s: %s", e.Element, e.Field, e.Target, e.Reason)
}

// DuplicateError reports two elements sharing an id.
type DuplicateError struct {
	ID ir.ElementID
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate element id %s", e.ID)
}

// Builder assembles a Store. A Builder is not safe for concurrent use.
type Builder struct {
	name     string
	elements map[ir.ElementID]*Element
	order    []ir.ElementID
}

// NewBuilder creates a builder for a model with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:     name,
		elements: make(map[ir.ElementID]*Element),
	}
}

// Add registers an element. Returns *DuplicateError if the id is taken.
func (b *Builder) Add(e Element) error {
	if e.ID == "" {
		return fmt.Errorf("element of kind %s has no id", e.Kind)
	}
	if _, dup := b.elements[e.ID]; dup {
		return &DuplicateError{ID: e.ID}
	}
	cp := e
	cp.Successors = slices.Clone(e.Successors)
	cp.Variables = slices.Clone(e.Variables)
	cp.NodeCharacteristics = slices.Clone(e.NodeCharacteristics)
	b.elements[e.ID] = &cp
	b.order = append(b.order, e.ID)
	return nil
}

// MustAdd is Add for fixtures; it panics on error.
func (b *Builder) MustAdd(elements ...Element) *Builder {
	for _, e := range elements {
		if err := b.Add(e); err != nil {
			panic(err)
		}
	}
	return b
}

// Build checks references and materializes every relation.
// Returns *ReferenceError on the first dangling or mistyped reference.
func (b *Builder) Build() (*Store, error) {
	s := &Store{
		name:     b.name,
		elements: maps.Clone(b.elements),
		order:    slices.Clone(b.order),
		edges:    make(map[Relation]map[ir.ElementID][]ir.ElementID),
	}
	for _, id := range s.order {
		e := s.elements[id]
		if err := s.checkReferences(e); err != nil {
			return nil, err
		}
		s.index(e)
	}

	return s, nil
}

// expectedKinds lists which kinds each reference field may point at.
var expectedKinds = map[string][]Kind{
	"scope":     {KindAssemblyContext, KindUsageScenario},
	"container": {KindResourceContainer},
	"signature": {KindSignature},
	"interface": {KindInterface},
	"connector": {KindConnector},
	"from":      {KindAssemblyContext},
	"to":        {KindAssemblyContext},
	"target":    ActionKinds,
}

func (s *Store) checkReferences(e *Element) error {
	for _, ref := range e.References() {
		t, ok := s.elements[ref.ID]
		if !ok {
			return &ReferenceError{Element: e.ID, Field: ref.Field, Target: ref.ID, Reason: "not found"}
		}
		if !slices.Contains(expectedKinds[ref.Field], t.Kind) {
			return &ReferenceError{Element: e.ID, Field: ref.Field, Target: ref.ID,
				Reason: fmt.Sprintf("has kind %s", t.Kind)}
		}
	}
	for _, next := range e.Successors {
		t, ok := s.elements[next]
		if !ok {
			return &ReferenceError{Element: e.ID, Field: "next", Target: next, Reason: "not found"}
		}
		if !t.Kind.IsAction() {
			return &ReferenceError{Element: e.ID, Field: "next", Target: next,
				Reason: fmt.Sprintf("has kind %s", t.Kind)}
		}
	}
	return nil
}

// index adds e's outgoing and reverse edges. Called in declaration order, so
// every neighbor list ends up in declaration order.
func (s *Store) index(e *Element) {
	if e.Kind == KindUsageScenario {
		s.scenarios = append(s.scenarios, e.ID)
	}

	if e.Kind.IsAction() {
		for _, next := range e.Successors {
			s.addEdge(Successor, e.ID, next)
			if e.Kind == KindBranch {
				s.addEdge(BranchStarts, e.ID, next)
			}
		}
		if e.Scope != "" {
			switch s.elements[e.Scope].Kind {
			case KindAssemblyContext:
				s.addEdge(ExecutedIn, e.Scope, e.ID)
			case KindUsageScenario:
				s.addEdge(ScenarioActions, e.Scope, e.ID)
			}
		}
	}

	if e.Kind.IsCallSite() {
		if e.Target != "" {
			s.addEdge(Calls, e.ID, e.Target)
		}
		if e.Signature != "" {
			s.addEdge(SignatureCallSites, e.Signature, e.ID)
		}
	}

	switch e.Kind {
	case KindAssemblyContext:
		if e.Container != "" {
			s.addEdge(Hosts, e.Container, e.ID)
		}
	case KindSignature:
		if e.Interface != "" {
			s.addEdge(InterfaceSignatures, e.Interface, e.ID)
		}
	case KindExternalCall:
		if e.Connector != "" {
			s.addEdge(ConnectorCallSites, e.Connector, e.ID)
		}
	}
}

func (s *Store) addEdge(rel Relation, from, to ir.ElementID) {
	m := s.edges[rel]
	if m == nil {
		m = make(map[ir.ElementID][]ir.ElementID)
		s.edges[rel] = m
	}
	if slices.Contains(m[from], to) {
		return
	}
	m[from] = append(m[from], to)
}

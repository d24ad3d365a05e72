package model

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/abunai/impact/internal/ir"
)

// DefaultMaxSequences bounds sequence enumeration. Branch-heavy models grow
// combinatorially; the limit turns a runaway enumeration into an error.
const DefaultMaxSequences = 10000

// SequenceLimitError is returned when enumeration exceeds the configured
// maximum number of sequences.
type SequenceLimitError struct {
	Model string
	Limit int
}

func (e *SequenceLimitError) Error() string {
	return fmt.Sprintf("model %s: more than %d action sequences", e.Model, e.Limit)
}

// Finder enumerates the action sequences of a model.
//
// For each usage scenario (in declaration order) the finder walks control
// flow from the scenario entry. A call site descends into its target
// behaviour and resumes at the caller's successors once the callee ends.
// A branch forks one sequence per transition. Re-entering an element in the
// same calling context closes the sequence (loop), and a call site already on
// the call stack is not descended into again (recursion), so enumeration
// always terminates.
type Finder struct {
	store        *Store
	maxSequences int
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithMaxSequences sets the enumeration limit. Values <= 0 keep the default.
func WithMaxSequences(n int) FinderOption {
	return func(f *Finder) {
		if n > 0 {
			f.maxSequences = n
		}
	}
}

// NewFinder creates a Finder over the given store.
func NewFinder(store *Store, opts ...FinderOption) *Finder {
	f := &Finder{store: store, maxSequences: DefaultMaxSequences}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindAll returns every action sequence in deterministic order.
func (f *Finder) FindAll(ctx context.Context) ([]ir.ActionSequence, error) {
	w := &walker{
		ctx:    ctx,
		finder: f,
		seen:   make(map[string]bool),
	}
	for _, scenario := range f.store.Scenarios() {
		entry, ok := f.store.EntryOf(scenario)
		if !ok {
			continue
		}
		if err := w.visit(entry, nil, nil); err != nil {
			return nil, err
		}
	}
	if w.out == nil {
		w.out = []ir.ActionSequence{}
	}
	return w.out, nil
}

// frame is a pending return point: the successors of a call site.
type frame struct {
	site ir.ElementID
	next []ir.ElementID
}

type walker struct {
	ctx    context.Context
	finder *Finder
	seen   map[string]bool
	out    []ir.ActionSequence
}

func (w *walker) visit(id ir.ElementID, path []ir.FlowElement, calls []frame) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	key := contextKey(calls, id)
	if w.seen[key] {
		return w.emit(path)
	}
	el, ok := w.finder.store.Lookup(id)
	if !ok {
		return &ReferenceError{Element: id, Field: "next", Target: id, Reason: "not found"}
	}

	w.seen[key] = true
	defer delete(w.seen, key)

	path = append(path[:len(path):len(path)], w.finder.flowElement(el))

	if el.Kind.IsCallSite() && el.Target != "" && !onCallStack(calls, id) {
		callee := append(calls[:len(calls):len(calls)], frame{site: id, next: el.Successors})
		return w.visit(el.Target, path, callee)
	}
	return w.advance(el.Successors, path, calls)
}

func (w *walker) advance(next []ir.ElementID, path []ir.FlowElement, calls []frame) error {
	for len(next) == 0 && len(calls) > 0 {
		top := calls[len(calls)-1]
		calls = calls[:len(calls)-1]
		next = top.next
	}
	if len(next) == 0 {
		return w.emit(path)
	}
	for _, n := range next {
		if err := w.visit(n, path, calls); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) emit(path []ir.FlowElement) error {
	if len(path) == 0 {
		return nil
	}
	if len(w.out) >= w.finder.maxSequences {
		return &SequenceLimitError{Model: w.finder.store.Name(), Limit: w.finder.maxSequences}
	}
	w.out = append(w.out, ir.ActionSequence{Elements: slices.Clone(path)})
	return nil
}

func onCallStack(calls []frame, site ir.ElementID) bool {
	for _, f := range calls {
		if f.site == site {
			return true
		}
	}
	return false
}

func contextKey(calls []frame, id ir.ElementID) string {
	var b strings.Builder
	for _, f := range calls {
		b.WriteString(string(f.site))
		b.WriteByte('>')
	}
	b.WriteString(string(id))
	return b.String()
}

func (f *Finder) flowElement(e Element) ir.FlowElement {
	return ir.FlowElement{
		ID:                  e.ID,
		Name:                e.Name,
		Kind:                string(e.Kind),
		Scope:               e.Scope,
		Variables:           slices.Clone(e.Variables),
		NodeCharacteristics: f.store.NodeCharacteristicsOf(e.ID),
	}
}

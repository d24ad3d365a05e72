package engine

import (
	"log/slog"

	"github.com/abunai/impact/internal/ir"
)

// Registry holds the uncertainty sources of one analysis run in insertion
// order. One source exists per element id; registering an id again is a
// no-op.
//
// Thread-safety: a Registry is used by the single goroutine driving a run.
type Registry struct {
	classifier *Classifier
	logger     *slog.Logger

	sources []ir.Source
	index   map[ir.ElementID]int
	skipped []ir.ElementID
}

// NewRegistry creates an empty registry.
func NewRegistry(classifier *Classifier, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		classifier: classifier,
		logger:     logger,
		index:      make(map[ir.ElementID]int),
	}
}

// Register classifies id and records it as a source. Unclassified ids are
// remembered in Skipped and yield no source. Returns the source and whether
// id is classifiable.
func (r *Registry) Register(id ir.ElementID) (ir.Source, bool) {
	if i, ok := r.index[id]; ok {
		return r.sources[i], true
	}

	src := r.classifier.Describe(id)
	if !src.Category.Classifiable() {
		r.skipped = append(r.skipped, id)
		r.logger.Debug("skipping unclassifiable element", "id", id, "kind", src.Kind)
		return src, false
	}

	r.index[id] = len(r.sources)
	r.sources = append(r.sources, src)
	r.logger.Debug("registered uncertainty source", "id", id, "category", src.Category)
	return src, true
}

// RegisterAssumption registers every affected entity of a and marks it
// analyzed. A nil assumption is ignored.
func (r *Registry) RegisterAssumption(a *ir.Assumption) {
	if a == nil {
		return
	}
	for _, id := range a.EntityIDs() {
		r.Register(id)
	}
	a.Analyzed = true
}

// Sources returns the registered sources in insertion order.
func (r *Registry) Sources() []ir.Source {
	out := make([]ir.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Skipped returns the unclassifiable ids in registration order, including
// repeats.
func (r *Registry) Skipped() []ir.ElementID {
	out := make([]ir.ElementID, len(r.skipped))
	copy(out, r.skipped)
	return out
}

package engine

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
)

// Propagator computes the elements affected by each uncertainty source.
//
// Each category has one rule describing which model relations carry the
// uncertainty downstream. Traversal uses a visited set, so cyclic models
// reach a fixed point instead of looping.
type Propagator struct {
	store    ModelStore
	parallel bool
	logger   *slog.Logger
}

// PropagatorOption configures a Propagator.
type PropagatorOption func(*Propagator)

// WithParallelSources propagates sources concurrently. Output is identical
// to sequential propagation.
func WithParallelSources(enabled bool) PropagatorOption {
	return func(p *Propagator) {
		p.parallel = enabled
	}
}

// WithPropagationLogger sets the logger for per-source debug output.
func WithPropagationLogger(logger *slog.Logger) PropagatorOption {
	return func(p *Propagator) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPropagator creates a propagator over the given store.
func NewPropagator(store ModelStore, opts ...PropagatorOption) *Propagator {
	p := &Propagator{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Propagate returns the impacts of all sources, grouped by source in source
// order. Within one source every affected element appears once, in discovery
// order. Different sources affecting the same element each keep their impact.
//
// Returns ctx.Err() if the context is done before propagation completes.
func (p *Propagator) Propagate(ctx context.Context, sources []ir.Source) ([]ir.Impact, error) {
	affected := make([][]ir.ElementID, len(sources))

	if p.parallel && len(sources) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, src := range sources {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				affected[i] = p.Affected(src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, src := range sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			affected[i] = p.Affected(src)
		}
	}

	impacts := []ir.Impact{}
	for i, src := range sources {
		p.logger.Debug("propagated uncertainty source",
			"source", src.ID, "category", src.Category, "affected", len(affected[i]))
		for _, id := range affected[i] {
			impacts = append(impacts, ir.Impact{Source: src, Affected: id})
		}
	}
	return impacts, nil
}

// Affected returns the elements affected by one source, without duplicates.
func (p *Propagator) Affected(src ir.Source) []ir.ElementID {
	out := newOrderedSet()
	id := src.ID

	switch src.Category {
	case ir.AssemblyComponent:
		// Calls leaving the assembly are not followed.
		out.add(id)
		out.add(p.store.Neighbors(id, model.ExecutedIn)...)

	case ir.ResourceContainer:
		for _, assembly := range p.store.Neighbors(id, model.Hosts) {
			out.add(p.store.Neighbors(assembly, model.ExecutedIn)...)
		}

	case ir.UsageActor:
		p.closure(out, p.store.Neighbors(id, model.ScenarioActions))

	case ir.InterfaceSignature:
		out.add(p.store.Neighbors(id, model.SignatureCallSites)...)

	case ir.Interface:
		for _, sig := range p.store.Neighbors(id, model.InterfaceSignatures) {
			out.add(p.store.Neighbors(sig, model.SignatureCallSites)...)
		}

	case ir.Connector:
		for _, site := range p.store.Neighbors(id, model.ConnectorCallSites) {
			out.add(site)
			out.add(p.store.Neighbors(site, model.Calls)...)
		}

	case ir.Branch:
		p.closure(out, []ir.ElementID{id}, model.BranchStarts)

	case ir.EntryLevelCall, ir.ExternalCall, ir.VariableAssignment:
		p.closure(out, []ir.ElementID{id})

	case ir.Unclassified:
		// inert
	}

	return out.items
}

// closure adds starts and everything reachable from them over Successor and
// Calls (plus any extra relations), breadth-first.
func (p *Propagator) closure(out *orderedSet, starts []ir.ElementID, extra ...model.Relation) {
	rels := append([]model.Relation{model.Successor, model.Calls}, extra...)

	visited := make(map[ir.ElementID]bool, len(starts))
	queue := make([]ir.ElementID, 0, len(starts))
	for _, s := range starts {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out.add(cur)

		for _, rel := range rels {
			for _, n := range p.store.Neighbors(cur, rel) {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
	}
}

// orderedSet keeps first-seen order.
type orderedSet struct {
	items []ir.ElementID
	seen  map[ir.ElementID]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: []ir.ElementID{}, seen: make(map[ir.ElementID]bool)}
}

func (s *orderedSet) add(ids ...ir.ElementID) {
	for _, id := range ids {
		if !s.seen[id] {
			s.seen[id] = true
			s.items = append(s.items, id)
		}
	}
}

package engine

import (
	"sync"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
)

// ModelStore is the read-only model capability the analysis needs.
// Implemented by *model.Store.
type ModelStore interface {
	Lookup(id ir.ElementID) (model.Element, bool)
	Neighbors(id ir.ElementID, rel model.Relation) []ir.ElementID
}

var kindCategories = map[model.Kind]ir.Category{
	model.KindAssemblyContext:   ir.AssemblyComponent,
	model.KindResourceContainer: ir.ResourceContainer,
	model.KindUsageScenario:     ir.UsageActor,
	model.KindSignature:         ir.InterfaceSignature,
	model.KindInterface:         ir.Interface,
	model.KindConnector:         ir.Connector,
	model.KindEntryLevelCall:    ir.EntryLevelCall,
	model.KindExternalCall:      ir.ExternalCall,
	model.KindSetVariable:       ir.VariableAssignment,
	model.KindBranch:            ir.Branch,
}

// Display names used when describing uncertainty sources.
var kindNames = map[model.Kind]string{
	model.KindAssemblyContext:   "AssemblyContext",
	model.KindResourceContainer: "ResourceContainer",
	model.KindUsageScenario:     "UsageScenario",
	model.KindSignature:         "OperationSignature",
	model.KindInterface:         "OperationInterface",
	model.KindConnector:         "AssemblyConnector",
	model.KindEntryLevelCall:    "EntryLevelSystemCall",
	model.KindExternalCall:      "ExternalCallAction",
	model.KindSetVariable:       "SetVariableAction",
	model.KindBranch:            "BranchAction",
}

// Classifier resolves element ids to categories with one store lookup per id.
//
// A Classifier belongs to a single run. Thread-safety: safe for concurrent
// use via internal mutex.
type Classifier struct {
	store ModelStore

	mu   sync.Mutex
	memo map[ir.ElementID]ir.Source
}

// NewClassifier creates a classifier over the given store.
func NewClassifier(store ModelStore) *Classifier {
	return &Classifier{
		store: store,
		memo:  make(map[ir.ElementID]ir.Source),
	}
}

// Classify returns the category of id, Unclassified when the store has no
// such element or its kind is not supported by propagation.
func (c *Classifier) Classify(id ir.ElementID) ir.Category {
	return c.Describe(id).Category
}

// Describe returns the source descriptor for id.
func (c *Classifier) Describe(id ir.ElementID) ir.Source {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.memo[id]; ok {
		return s
	}
	s := ir.Source{ID: id, Category: ir.Unclassified}
	if e, ok := c.store.Lookup(id); ok {
		s.Name = e.Name
		if cat, ok := kindCategories[e.Kind]; ok {
			s.Category = cat
			s.Kind = kindNames[e.Kind]
		} else {
			s.Kind = string(e.Kind)
		}
	}
	c.memo[id] = s
	return s
}

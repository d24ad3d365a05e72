package engine

import (
	"slices"

	"github.com/abunai/impact/internal/ir"
)

// ImpactedSequence is a candidate sequence marked by an uncertainty source.
type ImpactedSequence struct {
	// Index is the position of the sequence in the candidate enumeration.
	Index int `json:"index"`

	// Source is the uncertainty source that marked the sequence.
	Source ir.ElementID `json:"source"`

	Sequence ir.ActionSequence `json:"sequence"`
}

// Collection is the aggregated outcome of propagation.
type Collection struct {
	// AllAffected is the union of affected elements in first-seen order.
	AllAffected []ir.ElementID `json:"all_affected"`

	// ImpactSet holds one entry per (source, candidate) pair where the
	// candidate touches an element affected by the source, ordered by source
	// then candidate index. A sequence marked by several sources appears once
	// per source.
	ImpactSet []ImpactedSequence `json:"impact_set"`

	// DistinctImpactSet is ImpactSet without structural duplicates, ordered
	// by candidate index.
	DistinctImpactSet []ImpactedSequence `json:"distinct_impact_set"`

	keys map[string]int
}

// IndexOf returns the candidate index of the first candidate structurally
// equal to seq, or -1.
func (c *Collection) IndexOf(seq ir.ActionSequence) int {
	if i, ok := c.keys[ir.SequenceKey(seq)]; ok {
		return i
	}
	return -1
}

// Collect aggregates impacts over the candidate sequences.
func Collect(impacts []ir.Impact, candidates []ir.ActionSequence) *Collection {
	c := &Collection{
		AllAffected:       []ir.ElementID{},
		ImpactSet:         []ImpactedSequence{},
		DistinctImpactSet: []ImpactedSequence{},
		keys:              make(map[string]int, len(candidates)),
	}

	candidateKeys := make([]string, len(candidates))
	for i, seq := range candidates {
		k := ir.SequenceKey(seq)
		candidateKeys[i] = k
		if _, ok := c.keys[k]; !ok {
			c.keys[k] = i
		}
	}

	// Group affected elements per source, keeping source order.
	var sourceOrder []ir.ElementID
	perSource := make(map[ir.ElementID]map[ir.ElementID]struct{})
	seen := make(map[ir.ElementID]bool)
	for _, imp := range impacts {
		set, ok := perSource[imp.Source.ID]
		if !ok {
			set = make(map[ir.ElementID]struct{})
			perSource[imp.Source.ID] = set
			sourceOrder = append(sourceOrder, imp.Source.ID)
		}
		set[imp.Affected] = struct{}{}
		if !seen[imp.Affected] {
			seen[imp.Affected] = true
			c.AllAffected = append(c.AllAffected, imp.Affected)
		}
	}

	for _, src := range sourceOrder {
		for i, seq := range candidates {
			if seq.Touches(perSource[src]) {
				c.ImpactSet = append(c.ImpactSet, ImpactedSequence{Index: i, Source: src, Sequence: seq})
			}
		}
	}

	c.DistinctImpactSet = Distinct(c.ImpactSet)
	return c
}

// Distinct removes structural duplicates, keeping the entry with the lowest
// candidate index, and orders the result by candidate index. Distinct is
// idempotent.
func Distinct(set []ImpactedSequence) []ImpactedSequence {
	out := []ImpactedSequence{}
	byKey := make(map[string]int)
	for _, s := range set {
		k := ir.SequenceKey(s.Sequence)
		if j, ok := byKey[k]; ok {
			if s.Index < out[j].Index {
				out[j] = s
			}
			continue
		}
		byKey[k] = len(out)
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b ImpactedSequence) int {
		return a.Index - b.Index
	})
	return out
}

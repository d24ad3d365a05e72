package store

import (
	"time"

	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
)

// RunRecord is the persisted form of one analysis run.
type RunRecord struct {
	ID         string            `json:"id"`
	Model      string            `json:"model"`
	Title      string            `json:"title"`
	StartedAt  time.Time         `json:"started_at"`
	Constraint string            `json:"constraint"`
	Report     string            `json:"report"`
	Skipped    []ir.ElementID    `json:"skipped"`
	Sources    []ir.Source       `json:"sources"`
	Impacts    []ImpactRecord    `json:"impacts"`
	Sequences  []SequenceRecord  `json:"sequences"`
	Violations []ViolationRecord `json:"violations"`
}

// ImpactRecord is one (source, affected element) pair.
type ImpactRecord struct {
	Source   ir.ElementID `json:"source"`
	Affected ir.ElementID `json:"affected"`
}

// SequenceRecord is one impact set entry. Distinct marks entries that are
// also part of the distinct impact set.
type SequenceRecord struct {
	Index    int            `json:"index"`
	Source   ir.ElementID   `json:"source"`
	Distinct bool           `json:"distinct"`
	Elements []ir.ElementID `json:"elements"`
}

// ViolationRecord lists the violating elements of one candidate sequence.
type ViolationRecord struct {
	Index    int            `json:"index"`
	Elements []ir.ElementID `json:"elements"`
}

// RunSummary is a row of ListRuns.
type RunSummary struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Title      string    `json:"title"`
	StartedAt  time.Time `json:"started_at"`
	Sources    int       `json:"sources"`
	Violations int       `json:"violations"`
}

// FromResult converts an analysis result into a record. report is the
// rendered text report, title the report title.
func FromResult(res *engine.Result, title, report string) RunRecord {
	rec := RunRecord{
		ID:         res.RunID,
		Model:      res.Model,
		Title:      title,
		StartedAt:  res.StartedAt,
		Constraint: res.Constraint.String(),
		Report:     report,
		Skipped:    append([]ir.ElementID{}, res.Skipped...),
		Sources:    append([]ir.Source{}, res.Sources...),
		Impacts:    make([]ImpactRecord, 0, len(res.Impacts)),
		Sequences:  []SequenceRecord{},
		Violations: make([]ViolationRecord, 0, len(res.Violations)),
	}

	for _, imp := range res.Impacts {
		rec.Impacts = append(rec.Impacts, ImpactRecord{Source: imp.Source.ID, Affected: imp.Affected})
	}

	if res.Collection != nil {
		distinct := make(map[int]ir.ElementID, len(res.DistinctImpactSet))
		for _, s := range res.DistinctImpactSet {
			distinct[s.Index] = s.Source
		}
		for _, s := range res.ImpactSet {
			src, ok := distinct[s.Index]
			isDistinct := ok && src == s.Source
			if isDistinct {
				delete(distinct, s.Index)
			}
			rec.Sequences = append(rec.Sequences, SequenceRecord{
				Index:    s.Index,
				Source:   s.Source,
				Distinct: isDistinct,
				Elements: s.Sequence.IDs(),
			})
		}
	}

	for _, v := range res.Violations {
		ids := make([]ir.ElementID, len(v.Elements))
		for i, e := range v.Elements {
			ids[i] = e.ID
		}
		rec.Violations = append(rec.Violations, ViolationRecord{Index: v.Index, Elements: ids})
	}

	return rec
}

// DistinctSequences returns the entries marked distinct, in stored order.
func (r RunRecord) DistinctSequences() []SequenceRecord {
	out := []SequenceRecord{}
	for _, s := range r.Sequences {
		if s.Distinct {
			out = append(out, s)
		}
	}
	return out
}

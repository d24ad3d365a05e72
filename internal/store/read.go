package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abunai/impact/internal/ir"
)

// ErrRunNotFound is returned by ReadRun for unknown run ids.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with the given id and all its child rows, in the
// order they were saved.
//
// Returns an error wrapping ErrRunNotFound if no such run exists.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	var (
		rec       RunRecord
		startedAt string
		skipped   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, model, title, started_at, constraint_text, report, skipped
		FROM runs
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Model, &rec.Title, &startedAt, &rec.Constraint, &rec.Report, &skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}

	if rec.StartedAt, err = parseTime(startedAt); err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	if rec.Skipped, err = unmarshalIDs(skipped); err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	if rec.Sources, err = s.readSources(ctx, id); err != nil {
		return RunRecord{}, err
	}
	if rec.Impacts, err = s.readImpacts(ctx, id); err != nil {
		return RunRecord{}, err
	}
	if rec.Sequences, err = s.readSequences(ctx, id); err != nil {
		return RunRecord{}, err
	}
	if rec.Violations, err = s.readViolations(ctx, id); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns summaries of all runs, newest first. Runs started at the
// same instant are ordered by id.
//
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.model, r.title, r.started_at,
			(SELECT COUNT(*) FROM sources s WHERE s.run_id = r.id),
			(SELECT COUNT(*) FROM violations v WHERE v.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		var (
			sum       RunSummary
			startedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Model, &sum.Title, &startedAt, &sum.Sources, &sum.Violations); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sum.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("scan run %s: %w", sum.ID, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

func (s *Store) readSources(ctx context.Context, runID string) ([]ir.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT element_id, category, name, kind
		FROM sources
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := []ir.Source{}
	for rows.Next() {
		var id, category, name, kind string
		if err := rows.Scan(&id, &category, &name, &kind); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, ir.Source{
			ID:       ir.ElementID(id),
			Category: ir.ParseCategory(category),
			Name:     name,
			Kind:     kind,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

func (s *Store) readImpacts(ctx context.Context, runID string) ([]ImpactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, affected_id
		FROM impacts
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query impacts: %w", err)
	}
	defer rows.Close()

	impacts := []ImpactRecord{}
	for rows.Next() {
		var source, affected string
		if err := rows.Scan(&source, &affected); err != nil {
			return nil, fmt.Errorf("scan impact: %w", err)
		}
		impacts = append(impacts, ImpactRecord{Source: ir.ElementID(source), Affected: ir.ElementID(affected)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate impacts: %w", err)
	}
	return impacts, nil
}

func (s *Store) readSequences(ctx context.Context, runID string) ([]SequenceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, source_id, is_distinct, elements
		FROM impacted_sequences
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query impacted sequences: %w", err)
	}
	defer rows.Close()

	sequences := []SequenceRecord{}
	for rows.Next() {
		var (
			seq      SequenceRecord
			source   string
			distinct int
			elements string
		)
		if err := rows.Scan(&seq.Index, &source, &distinct, &elements); err != nil {
			return nil, fmt.Errorf("scan impacted sequence: %w", err)
		}
		seq.Source = ir.ElementID(source)
		seq.Distinct = distinct != 0
		if seq.Elements, err = unmarshalIDs(elements); err != nil {
			return nil, fmt.Errorf("scan impacted sequence %d: %w", seq.Index, err)
		}
		sequences = append(sequences, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate impacted sequences: %w", err)
	}
	return sequences, nil
}

func (s *Store) readViolations(ctx context.Context, runID string) ([]ViolationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, elements
		FROM violations
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	violations := []ViolationRecord{}
	for rows.Next() {
		var (
			v        ViolationRecord
			elements string
		)
		if err := rows.Scan(&v.Index, &elements); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		if v.Elements, err = unmarshalIDs(elements); err != nil {
			return nil, fmt.Errorf("scan violation %d: %w", v.Index, err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return violations, nil
}

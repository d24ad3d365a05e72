package store

import (
	"context"
	"fmt"

	"github.com/abunai/impact/internal/ir"
)

// SaveRun writes a run and all its child rows in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: saving a run id twice
// keeps the first record and returns inserted=false.
func (s *Store) SaveRun(ctx context.Context, rec RunRecord) (inserted bool, err error) {
	skipped, err := marshalIDs(rec.Skipped)
	if err != nil {
		return false, fmt.Errorf("save run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("save run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, model, title, started_at, constraint_text, report, skipped, engine_version, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Model,
		rec.Title,
		formatTime(rec.StartedAt),
		rec.Constraint,
		rec.Report,
		skipped,
		ir.EngineVersion,
		ir.SchemaVersion,
	)
	if err != nil {
		return false, fmt.Errorf("save run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save run: rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	for i, src := range rec.Sources {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sources (run_id, seq, element_id, category, name, kind)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, i, src.ID, src.Category.String(), src.Name, src.Kind)
		if err != nil {
			return false, fmt.Errorf("save run: source %s: %w", src.ID, err)
		}
	}

	for i, imp := range rec.Impacts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO impacts (run_id, seq, source_id, affected_id)
			VALUES (?, ?, ?, ?)
		`, rec.ID, i, imp.Source, imp.Affected)
		if err != nil {
			return false, fmt.Errorf("save run: impact %s -> %s: %w", imp.Source, imp.Affected, err)
		}
	}

	for i, seq := range rec.Sequences {
		elements, err := marshalIDs(seq.Elements)
		if err != nil {
			return false, fmt.Errorf("save run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO impacted_sequences (run_id, seq, idx, source_id, is_distinct, elements)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, i, seq.Index, seq.Source, boolToInt(seq.Distinct), elements)
		if err != nil {
			return false, fmt.Errorf("save run: sequence %d: %w", seq.Index, err)
		}
	}

	for _, v := range rec.Violations {
		elements, err := marshalIDs(v.Elements)
		if err != nil {
			return false, fmt.Errorf("save run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO violations (run_id, idx, elements)
			VALUES (?, ?, ?)
		`, rec.ID, v.Index, elements)
		if err != nil {
			return false, fmt.Errorf("save run: violation %d: %w", v.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("save run: commit: %w", err)
	}
	return true, nil
}

// DeleteRun removes a run and its child rows. Deleting an unknown id is not
// an error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}

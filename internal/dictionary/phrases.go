package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"phrasebook/internal/services"
)

// Upsert inserts a phrase or, when the source already exists, replaces its
// target, context, and tags. Source and target are required.
func (s *Store) Upsert(ctx context.Context, in Input) (UpsertResult, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return UpsertResult{}, err
	}
	var result UpsertResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.upsertTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert phrase: %w", err)
	}
	return result, nil
}

// ImportBatch upserts every input in one transaction. Inputs must already be
// valid; the first invalid input aborts the batch.
func (s *Store) ImportBatch(ctx context.Context, inputs []Input) (ImportStats, error) {
	var stats ImportStats
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stats = ImportStats{}
		for i, raw := range inputs {
			in := raw.normalized()
			if err := validateInput(in); err != nil {
				return fmt.Errorf("input %d: %w", i+1, err)
			}
			res, err := s.upsertTx(ctx, tx, in)
			if err != nil {
				return err
			}
			if res.Created {
				stats.Imported++
			} else {
				stats.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("import batch: %w", err)
	}
	return stats, nil
}

func (s *Store) upsertTx(ctx context.Context, tx *sql.Tx, in Input) (UpsertResult, error) {
	now := s.timestamp()

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM phrases WHERE source = ?`, in.Source).Scan(&id)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE phrases SET target = ?, context = ?, tags = ?, updated_at = ? WHERE id = ?`,
			in.Target, nullableString(in.Context), nullableString(in.Tags), now, id,
		)
		if err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{ID: id}, nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO phrases (source, target, context, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			in.Source, in.Target, nullableString(in.Context), nullableString(in.Tags), now, now,
		)
		if err != nil {
			return UpsertResult{}, err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return UpsertResult{}, fmt.Errorf("last insert id: %w", err)
		}
		return UpsertResult{ID: id, Created: true}, nil
	default:
		return UpsertResult{}, err
	}
}

func validateInput(in Input) error {
	switch {
	case in.Source == "":
		return services.Wrap(services.ErrValidation, "dictionary", "validate", "source is required", nil)
	case in.Target == "":
		return services.Wrap(services.ErrValidation, "dictionary", "validate", "target is required", nil)
	}
	return nil
}

// GetByID fetches a phrase by identifier. A missing row returns (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Phrase, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+phraseColumns+` FROM phrases WHERE id = ?`, id)
	phrase, err := scanPhrase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get phrase: %w", err)
	}
	return phrase, nil
}

// FindBySource returns the phrase with the exact (trimmed) source, or (nil, nil).
func (s *Store) FindBySource(ctx context.Context, source string) (*Phrase, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+phraseColumns+` FROM phrases WHERE source = ?`, strings.TrimSpace(source))
	phrase, err := scanPhrase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find phrase by source: %w", err)
	}
	return phrase, nil
}

// List returns phrases ordered by usage count, then newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Phrase, error) {
	query := `SELECT ` + phraseColumns + ` FROM phrases`
	var args []any
	if tag := strings.TrimSpace(opts.Tag); tag != "" {
		query += ` WHERE instr(',' || replace(coalesce(tags, ''), ' ', '') || ',', ?) > 0`
		args = append(args, ","+strings.ReplaceAll(tag, " ", "")+",")
	}
	query += ` ORDER BY usage_count DESC, created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	defer rows.Close()

	var phrases []*Phrase
	for rows.Next() {
		phrase, err := scanPhrase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		phrases = append(phrases, phrase)
	}
	return phrases, rows.Err()
}

// Sources returns every id and source in List order.
func (s *Store) Sources(ctx context.Context) ([]SourceRef, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, source FROM phrases ORDER BY usage_count DESC, created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var refs []SourceRef
	for rows.Next() {
		var ref SourceRef
		if err := rows.Scan(&ref.ID, &ref.Source); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// IncrementUsage bumps the usage counter and returns the updated phrase. The
// update and the read-back share one transaction; a missing phrase is
// services.ErrNotFound and never a nil phrase.
func (s *Store) IncrementUsage(ctx context.Context, id int64) (*Phrase, error) {
	var phrase *Phrase
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE phrases SET usage_count = usage_count + 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if err := requireAffected(res, id); err != nil {
			return err
		}
		phrase, err = scanPhrase(tx.QueryRowContext(ctx, `SELECT `+phraseColumns+` FROM phrases WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(id)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("increment usage: %w", err)
	}
	if phrase == nil {
		return nil, notFound(id)
	}
	return phrase, nil
}

// Delete removes a phrase.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM phrases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete phrase: %w", err)
	}
	return requireAffected(res, id)
}

// Count returns the number of stored phrases.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM phrases`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count phrases: %w", err)
	}
	return count, nil
}

func requireAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id int64) error {
	return services.Wrap(services.ErrNotFound, "dictionary", "lookup", fmt.Sprintf("phrase %d", id), nil)
}

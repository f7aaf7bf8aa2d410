package dictionary

import (
	"database/sql"
	"errors"
	"time"
)

const phraseColumns = "id, source, target, context, tags, created_at, updated_at, usage_count"

func scanPhrase(scanner interface{ Scan(dest ...any) error }) (*Phrase, error) {
	var (
		phrase     Phrase
		context    sql.NullString
		tags       sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
		usage      sql.NullInt64
	)
	if err := scanner.Scan(
		&phrase.ID,
		&phrase.Source,
		&phrase.Target,
		&context,
		&tags,
		&createdRaw,
		&updatedRaw,
		&usage,
	); err != nil {
		return nil, err
	}
	phrase.Context = context.String
	phrase.Tags = tags.String
	phrase.UsageCount = usage.Int64
	if created, err := parseTimeString(createdRaw.String); err == nil {
		phrase.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		phrase.UpdatedAt = updated
	}
	return &phrase, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// parseTimeString accepts RFC 3339 and the naive ISO layout older databases used.
func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999", value)
}

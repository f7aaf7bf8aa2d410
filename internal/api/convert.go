package api

import (
	"phrasebook/internal/activity"
	"phrasebook/internal/alignment"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/preflight"
	"phrasebook/internal/search"
)

// FromPhrase converts a stored phrase to its API representation.
func FromPhrase(p *dictionary.Phrase) Phrase {
	if p == nil {
		return Phrase{}
	}
	dto := Phrase{
		ID:         p.ID,
		Source:     p.Source,
		Target:     p.Target,
		Context:    p.Context,
		Tags:       p.TagList(),
		UsageCount: p.UsageCount,
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !p.UpdatedAt.IsZero() {
		dto.UpdatedAt = p.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromPhrases converts a slice of stored phrases. The result is never nil so
// it encodes as a JSON array.
func FromPhrases(phrases []*dictionary.Phrase) []Phrase {
	out := make([]Phrase, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, FromPhrase(p))
	}
	return out
}

// FromCandidates converts search hits.
func FromCandidates(candidates []search.Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Candidate{Rank: c.Rank, Score: c.Score, Phrase: FromPhrase(c.Phrase)})
	}
	return out
}

// FromEntry converts an activity entry.
func FromEntry(e activity.Entry) ActivityEntry {
	dto := ActivityEntry{User: e.User, Action: e.Action, Details: e.Details}
	if !e.Timestamp.IsZero() {
		dto.Timestamp = e.Timestamp.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromEntries converts activity entries, preserving order.
func FromEntries(entries []activity.Entry) []ActivityEntry {
	out := make([]ActivityEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}

// FromSummary converts an alignment summary.
func FromSummary(s alignment.Summary) AlignSummary {
	return AlignSummary{
		Total:     s.Total,
		Matched:   s.Matched,
		Unmatched: s.Unmatched,
		MatchRate: s.MatchRate(),
	}
}

// FromChecks converts preflight results.
func FromChecks(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}

package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"phrasebook/internal/activity"
	"phrasebook/internal/alignment"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/search"
)

func TestFromPhrase(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dto := FromPhrase(&dictionary.Phrase{
		ID:         3,
		Source:     "Hello",
		Target:     "こんにちは",
		Tags:       "greeting, casual",
		CreatedAt:  created,
		UsageCount: 2,
	})
	if dto.ID != 3 || dto.UsageCount != 2 {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(dto.Tags) != 2 || dto.Tags[1] != "casual" {
		t.Fatalf("unexpected tags %v", dto.Tags)
	}
	if dto.CreatedAt != "2024-05-01T12:00:00.000Z" || dto.UpdatedAt != "" {
		t.Fatalf("unexpected timestamps %q %q", dto.CreatedAt, dto.UpdatedAt)
	}
	if FromPhrase(nil).ID != 0 {
		t.Fatal("expected zero dto for nil phrase")
	}
}

func TestFromPhrasesEncodesEmptyArray(t *testing.T) {
	payload, err := json.Marshal(PhraseListResponse{Phrases: FromPhrases(nil)})
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != `{"phrases":[]}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestFromCandidatesAndEntries(t *testing.T) {
	candidates := FromCandidates([]search.Candidate{{Rank: 1, Score: 87.5, Phrase: &dictionary.Phrase{ID: 9, Source: "x", Target: "y"}}})
	if len(candidates) != 1 || candidates[0].Phrase.ID != 9 || candidates[0].Score != 87.5 {
		t.Fatalf("unexpected candidates %+v", candidates)
	}

	ts := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	entries := FromEntries([]activity.Entry{{Timestamp: ts, User: "alice", Action: activity.ActionLogin}})
	if entries[0].Timestamp != "2024-06-01T09:00:00.000Z" || entries[0].Action != "login" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestFromSummary(t *testing.T) {
	dto := FromSummary(alignment.Summary{Total: 4, Matched: 3, Unmatched: 1})
	if dto.MatchRate != 75 {
		t.Fatalf("unexpected match rate %v", dto.MatchRate)
	}
	payload, _ := json.Marshal(dto)
	if !strings.Contains(string(payload), `"matchRate":75`) {
		t.Fatalf("unexpected payload %s", payload)
	}
}

// Package search ranks dictionary phrases against free text.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"phrasebook/internal/config"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/logging"
	"phrasebook/internal/services"
	"phrasebook/internal/textutil"
)

// Store is the subset of the dictionary the search service needs.
type Store interface {
	Sources(ctx context.Context) ([]dictionary.SourceRef, error)
	GetByID(ctx context.Context, id int64) (*dictionary.Phrase, error)
	IncrementUsage(ctx context.Context, id int64) (*dictionary.Phrase, error)
	Upsert(ctx context.Context, in dictionary.Input) (dictionary.UpsertResult, error)
}

// Candidate is a scored phrase.
type Candidate struct {
	Rank   int
	Score  float64
	Phrase *dictionary.Phrase
}

// Service scores stored sources with a token-sort ratio.
type Service struct {
	store  Store
	cfg    config.Search
	logger *slog.Logger
}

// NewService builds a search service.
func NewService(store Store, cfg config.Search, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "search"),
	}
}

// ClampLimit maps limit into [1, MaxLimit], using DefaultLimit for zero or
// negative values.
func (s *Service) ClampLimit(limit int) int {
	maxLimit := max(1, s.cfg.MaxLimit)
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	return min(max(limit, 1), maxLimit)
}

type scored struct {
	ref   dictionary.SourceRef
	score float64
}

// Search returns up to limit candidates, best first. Ties keep the store's
// usage order.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "search", "query", "query is empty", nil)
	}
	limit = s.ClampLimit(limit)

	refs, err := s.store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	results := make([]scored, 0, len(refs))
	for _, ref := range refs {
		score := textutil.TokenSortRatio(query, ref.Source)
		if score < s.cfg.MinScore {
			continue
		}
		results = append(results, scored{ref: ref, score: score})
	}
	slices.SortStableFunc(results, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	if len(results) > limit {
		results = results[:limit]
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		phrase, err := s.store.GetByID(ctx, r.ref.ID)
		if err != nil {
			return nil, fmt.Errorf("load candidate %d: %w", r.ref.ID, err)
		}
		if phrase == nil {
			continue
		}
		candidates = append(candidates, Candidate{Rank: len(candidates) + 1, Score: r.score, Phrase: phrase})
	}
	s.logger.Debug("search complete",
		logging.String("query", query),
		logging.Int("scanned", len(refs)),
		logging.Int("returned", len(candidates)),
	)
	return candidates, nil
}

// Adopt records that a candidate's translation was used.
func (s *Service) Adopt(ctx context.Context, id int64) (*dictionary.Phrase, error) {
	phrase, err := s.store.IncrementUsage(ctx, id)
	if err != nil {
		return nil, err
	}
	if phrase == nil {
		return nil, services.Wrap(services.ErrNotFound, "search", "adopt", fmt.Sprintf("phrase %d", id), nil)
	}
	s.logger.Info("phrase adopted", logging.Int64("id", id), logging.Int64("usage_count", phrase.UsageCount))
	return phrase, nil
}

// SaveTranslation stores target as the translation of the query text.
func (s *Service) SaveTranslation(ctx context.Context, query, target, note string) (dictionary.UpsertResult, error) {
	return s.store.Upsert(ctx, dictionary.Input{Source: query, Target: target, Context: note})
}

package testsupport

import (
	"context"
	"testing"

	"phrasebook/internal/config"
	"phrasebook/internal/dictionary"
)

// MustOpenStore opens a dictionary.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *dictionary.Store {
	t.Helper()

	store, err := dictionary.Open(cfg)
	if err != nil {
		t.Fatalf("dictionary.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustUpsert stores a phrase and returns its id.
func MustUpsert(t testing.TB, store *dictionary.Store, source, target string) int64 {
	t.Helper()

	res, err := store.Upsert(context.Background(), dictionary.Input{Source: source, Target: target})
	if err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
	return res.ID
}

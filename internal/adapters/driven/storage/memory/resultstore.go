package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory implementation of driven.ResultStore.
// Used when no data directory is available and in tests.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.AnalysisResult
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]domain.AnalysisResult),
	}
}

// Save stores or replaces a result.
func (s *ResultStore) Save(_ context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *result
	stored.Sources = append([]domain.SourceReference(nil), result.Sources...)
	s.results[result.ID] = stored
	return nil
}

// Get retrieves a result by ID.
func (s *ResultStore) Get(_ context.Context, id string) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &result, nil
}

// List returns results matching filter, newest first.
func (s *ResultStore) List(_ context.Context, filter domain.HistoryFilter) ([]domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AnalysisResult, 0, len(s.results))
	for id := range s.results {
		result := s.results[id]
		if filter.Matches(&result) {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Delete removes a result.
func (s *ResultStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.results, id)
	return nil
}

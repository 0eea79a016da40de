package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driven"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// minPrefixLen is the shortest ID prefix accepted by Get.
const minPrefixLen = 4

// HistoryService exposes archived analysis results.
type HistoryService struct {
	store driven.ResultStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.ResultStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns results matching filter, newest first.
func (s *HistoryService) List(ctx context.Context, filter domain.HistoryFilter) ([]domain.AnalysisResult, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx, filter)
}

// Get returns one result by full ID or by a unique prefix of at least
// four characters.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	result, err := s.store.Get(ctx, id)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) || len(id) < minPrefixLen {
		return nil, err
	}

	all, err := s.store.List(ctx, domain.HistoryFilter{})
	if err != nil {
		return nil, err
	}
	var match *domain.AnalysisResult
	for i := range all {
		if !strings.HasPrefix(all[i].ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: prefix %q matches more than one result", domain.ErrInvalidInput, id)
		}
		match = &all[i]
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}
	return match, nil
}

// Delete removes one result.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	result, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, result.ID)
}

package driven

import (
	"context"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// ResultStore archives analysis results.
type ResultStore interface {
	// Save persists a result. Saving an existing ID replaces it.
	Save(ctx context.Context, result *domain.AnalysisResult) error

	// Get retrieves a result by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.AnalysisResult, error)

	// List returns results matching filter, newest first.
	List(ctx context.Context, filter domain.HistoryFilter) ([]domain.AnalysisResult, error)

	// Delete removes a result. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

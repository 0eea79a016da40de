package driving

import (
	"context"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// HistoryService exposes archived analysis results.
type HistoryService interface {
	// List returns results matching filter, newest first.
	List(ctx context.Context, filter domain.HistoryFilter) ([]domain.AnalysisResult, error)

	// Get returns one result. Accepts a full ID or a unique ID prefix.
	Get(ctx context.Context, id string) (*domain.AnalysisResult, error)

	// Delete removes one result.
	Delete(ctx context.Context, id string) error
}

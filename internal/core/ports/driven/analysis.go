package driven

import (
	"context"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// ProviderChecker reports whether a provider has usable credentials.
// The request builder consults it before a request is produced.
type ProviderChecker interface {
	// IsProviderConfigured returns true if requests can be routed to provider.
	IsProviderConfigured(provider domain.AIProvider) bool
}

// AnalysisBackend turns an analysis request into a structured result.
// The request is handed over by value; the engine keeps no reference to it.
type AnalysisBackend interface {
	ProviderChecker

	// Submit runs the analysis. Implementations must not retain req.
	Submit(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

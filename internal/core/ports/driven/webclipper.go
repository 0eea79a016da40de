package driven

import (
	"context"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// WebClipper captures the readable content of a web page.
type WebClipper interface {
	// Clip fetches rawURL and extracts its main content and provenance.
	// The returned clip may have an empty title; admission supplies a default.
	Clip(ctx context.Context, rawURL string) (*domain.WebClip, error)
}

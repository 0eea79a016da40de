package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Sheaf resources.
	uriScheme = "sheaf://"

	// historyListLimit caps the history resource listing.
	historyListLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the working session.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "session",
		Name:        "session",
		Description: "Sources and options of the current session",
		MIMEType:    "application/json",
	}, s.handleSessionResource)

	// Static resource for recent analyses.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recent analysis results, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	// Template for one archived analysis.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{resultId}",
		Name:        "analysis-result",
		Description: "Content of a past analysis",
		MIMEType:    "text/markdown",
	}, s.handleResultResource)
}

// handleSessionResource returns the current session as JSON.
func (s *Server) handleSessionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	session, err := s.current()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(sessionOutput(session), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling session: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleHistoryResource returns a summary of recent results.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	results, err := s.ports.History.List(ctx, domain.HistoryFilter{Limit: historyListLimit})
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	type resultInfo struct {
		ID           string `json:"id"`
		URI          string `json:"uri"`
		AnalysisType string `json:"analysis_type"`
		Provider     string `json:"provider"`
		Sources      int    `json:"sources"`
		CreatedAt    string `json:"created_at"`
	}

	infos := make([]resultInfo, len(results))
	for i := range results {
		infos[i] = resultInfo{
			ID:           results[i].ID,
			URI:          uriScheme + "history/" + results[i].ID,
			AnalysisType: results[i].AnalysisType.String(),
			Provider:     results[i].Provider.String(),
			Sources:      len(results[i].Sources),
			CreatedAt:    results[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleResultResource returns one past analysis with its source list.
func (s *Server) handleResultResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract resultId from URI: sheaf://history/{resultId}
	resultID := extractResultID(req.Params.URI)
	if resultID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.History.Get(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("getting result: %w", err)
	}

	var b strings.Builder
	b.WriteString(result.Content)
	if len(result.Sources) > 0 {
		b.WriteString("\n\n---\n")
		for _, ref := range result.Sources {
			fmt.Fprintf(&b, "\n[%s] %s", ref.Label, ref.Title)
			if ref.Origin != "" {
				fmt.Fprintf(&b, " (%s)", ref.Origin)
			}
		}
		b.WriteString("\n")
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		}},
	}, nil
}

// extractResultID extracts the result ID from a URI like sheaf://history/{resultId}.
func extractResultID(uri string) string {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

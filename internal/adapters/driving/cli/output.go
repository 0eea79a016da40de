package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/custodia-labs/sheaf/internal/core/domain"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable renders rows under headers with rounded borders.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// JSON views. Domain types carry no tags, so output shapes live here.

type referenceView struct {
	Label  string `json:"label"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Origin string `json:"origin,omitempty"`
}

type usageView struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type resultView struct {
	ID           string          `json:"id"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	AnalysisType string          `json:"analysis_type"`
	Content      string          `json:"content"`
	Sources      []referenceView `json:"sources"`
	Usage        usageView       `json:"usage"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newResultView(r *domain.AnalysisResult) resultView {
	view := resultView{
		ID:           r.ID,
		Provider:     r.Provider.String(),
		Model:        r.Model,
		AnalysisType: r.AnalysisType.String(),
		Content:      r.Content,
		Sources:      make([]referenceView, len(r.Sources)),
		Usage:        usageView{InputTokens: r.Usage.InputTokens, OutputTokens: r.Usage.OutputTokens},
		CreatedAt:    r.CreatedAt,
	}
	for i, ref := range r.Sources {
		view.Sources[i] = referenceView{
			Label:  ref.Label,
			ID:     ref.ID,
			Type:   ref.Type.String(),
			Title:  ref.Title,
			Origin: ref.Origin,
		}
	}
	return view
}

type sourceView struct {
	Label      string `json:"label"`
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Provenance string `json:"provenance"`
	Chars      int    `json:"chars"`
	Words      int    `json:"words"`
	Content    string `json:"content"`
}

type requestView struct {
	AnalysisType            string       `json:"analysis_type"`
	CustomPrompt            string       `json:"custom_prompt,omitempty"`
	Provider                string       `json:"provider"`
	Language                string       `json:"language"`
	OutputFormat            string       `json:"output_format"`
	IncludeSourceReferences bool         `json:"include_source_references"`
	Sources                 []sourceView `json:"sources"`
	Stats                   domain.Stats `json:"stats"`
}

func newRequestView(req *domain.AnalysisRequest) requestView {
	view := requestView{
		AnalysisType:            req.AnalysisType.String(),
		CustomPrompt:            req.CustomPrompt,
		Provider:                req.Provider.String(),
		Language:                req.Language,
		OutputFormat:            req.OutputFormat.String(),
		IncludeSourceReferences: req.IncludeSourceReferences,
		Sources:                 make([]sourceView, len(req.Sources)),
		Stats:                   domain.ComputeStats(req.Sources),
	}
	for i := range req.Sources {
		rec := &req.Sources[i]
		view.Sources[i] = sourceView{
			Label:      domain.SourceLabel(i),
			ID:         rec.ID,
			Type:       rec.Type.String(),
			Title:      rec.Title,
			Provenance: rec.Provenance(),
			Chars:      rec.Metadata.CharCount,
			Words:      rec.Metadata.WordCount,
			Content:    rec.Content,
		}
	}
	return view
}

// printReferences lists the sources an analysis cited.
func printReferences(w io.Writer, refs []domain.SourceReference) {
	if len(refs) == 0 {
		return
	}
	fmt.Fprintln(w, "Sources:")
	for _, ref := range refs {
		if ref.Origin != "" {
			fmt.Fprintf(w, "  [%s] %s (%s)\n", ref.Label, ref.Title, ref.Origin)
		} else {
			fmt.Fprintf(w, "  [%s] %s\n", ref.Label, ref.Title)
		}
	}
}

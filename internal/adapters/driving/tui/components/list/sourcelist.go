// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// SourceList displays the session's sources in a navigable list.
type SourceList struct {
	sources  []domain.SourceRecord
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the source list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the source list.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources yet. Add a note, some text or a web page.")
	}

	lines := make([]string, 0, len(l.sources)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))), "")

	// Each source takes two lines
	visibleCount := (l.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.sources) {
		end = len(l.sources)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSource(i, &l.sources[i]))
	}
	return strings.Join(lines, "\n")
}

// renderSource formats one source: label, title and type, then provenance.
func (l *SourceList) renderSource(index int, record *domain.SourceRecord) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	maxTitleLen := l.width - 24
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	title := truncate(record.Title, maxTitleLen)
	label := domain.SourceLabel(index)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%-3s %s", indicator, label, title))
	} else {
		titleLine = indicator + l.styles.Label.Render(fmt.Sprintf("%-3s", label)) + " " +
			l.styles.Normal.Render(title)
	}
	badge := l.styles.SourceType(record.Type).Render(" [" + record.Type.String() + "]")

	detail := fmt.Sprintf("      %s · %d words", record.Provenance(), record.Metadata.WordCount)
	return titleLine + badge + "\n" + l.styles.Muted.Render(truncate(detail, l.width-2))
}

// SetSources replaces the list, keeping the selection in range.
func (l *SourceList) SetSources(sources []domain.SourceRecord) {
	l.sources = sources
	if l.selected >= len(sources) {
		l.selected = len(sources) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Sources returns the listed sources.
func (l *SourceList) Sources() []domain.SourceRecord {
	return l.sources
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *SourceList) SetSelected(index int) {
	if index >= 0 && index < len(l.sources) {
		l.selected = index
	}
}

// SelectedSource returns the currently selected source, or nil if none.
func (l *SourceList) SelectedSource() *domain.SourceRecord {
	if len(l.sources) == 0 || l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}

// IsEmpty returns whether the list is empty.
func (l *SourceList) IsEmpty() bool {
	return len(l.sources) == 0
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if n < 4 || len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// Package result provides the analysis result view for the TUI.
package result

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheaf/internal/core/domain"
)

// View shows one analysis result with its cited sources.
type View struct {
	styles *styles.Styles

	result       *domain.AnalysisResult
	back         messages.ViewType
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new result view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		back:   messages.ViewMenu,
		width:  80,
		height: 24,
	}
}

// SetResult shows result. Esc returns to back.
func (v *View) SetResult(result domain.AnalysisResult, back messages.ViewType) {
	v.result = &result
	v.back = back
	v.scrollOffset = 0
	v.wrapContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the result view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset -= v.visibleLines()
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	case "pgdown", "ctrl+d":
		v.scrollOffset += v.visibleLines()
		if maxOffset := v.maxScrollOffset(); v.scrollOffset > maxOffset {
			v.scrollOffset = maxOffset
		}
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}

	return v, nil
}

// wrapContent lays out the analysis text followed by the source list.
func (v *View) wrapContent() {
	if v.result == nil {
		v.lines = nil
		return
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(v.result.Content))
	if len(v.result.Sources) > 0 {
		b.WriteString("\n\nSources\n")
		for _, ref := range v.result.Sources {
			fmt.Fprintf(&b, "[%s] %s", ref.Label, ref.Title)
			if ref.Origin != "" {
				fmt.Fprintf(&b, " (%s)", ref.Origin)
			}
			b.WriteString("\n")
		}
	}

	contentWidth := v.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}
	wrapped := lipgloss.NewStyle().Width(contentWidth).Render(strings.TrimRight(b.String(), "\n"))
	v.lines = strings.Split(wrapped, "\n")
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Reserve lines for title, metadata, separator, help, and padding
	available := v.height - 8
	if available < 1 {
		available = 1
	}
	return available
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	maxOffset := len(v.lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

// View renders the result view.
func (v *View) View() string {
	var b strings.Builder

	if v.result == nil {
		b.WriteString(v.styles.Title.Render("Analysis"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("(No result)"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.styles.Title.Render(v.result.AnalysisType.Description()))
	b.WriteString("\n")
	meta := fmt.Sprintf("%s · %s · %d sources · %d tokens",
		v.result.Provider.Description(), v.result.Model, len(v.result.Sources), v.result.Usage.Total())
	if !v.result.CreatedAt.IsZero() {
		meta += " · " + v.result.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	b.WriteString(v.styles.Muted.Render(meta))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage,
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.lines)),
			len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrapContent()
}

// Result returns the result on display.
func (v *View) Result() *domain.AnalysisResult {
	return v.result
}

// Back returns the view esc returns to.
func (v *View) Back() messages.ViewType {
	return v.back
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

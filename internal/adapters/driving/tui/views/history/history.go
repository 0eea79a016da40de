// Package history provides the archived results list view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// ActionOption represents a result action.
type ActionOption int

const (
	ActionShow ActionOption = iota
	ActionDelete
	ActionCancel
)

// listLimit caps how many results the view loads.
const listLimit = 200

var errNoHistory = errors.New("history is not available")

// View is the archived results list.
type View struct {
	styles  *styles.Styles
	history driving.HistoryService

	results      []domain.AnalysisResult
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
	showingMenu  bool
	menuSelected ActionOption
	scrollOffset int
}

// NewView creates a new history view. history may be nil.
func NewView(s *styles.Styles, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		history: history,
		width:   80,
		height:  24,
	}
}

// Init resets the view and loads results.
func (v *View) Init() tea.Cmd {
	v.selected = 0
	v.scrollOffset = 0
	v.showingMenu = false
	v.err = nil
	v.loading = true
	return v.loadResults()
}

// loadResults returns a command that loads recent results.
func (v *View) loadResults() tea.Cmd {
	history := v.history
	return func() tea.Msg {
		if history == nil {
			return messages.HistoryLoaded{Err: errNoHistory}
		}
		results, err := history.List(context.Background(), domain.HistoryFilter{Limit: listLimit})
		return messages.HistoryLoaded{Results: results, Err: err}
	}
}

// deleteResult returns a command that deletes one result.
func (v *View) deleteResult(id string) tea.Cmd {
	history := v.history
	return func() tea.Msg {
		if history == nil {
			return messages.ResultDeleted{ID: id, Err: errNoHistory}
		}
		return messages.ResultDeleted{ID: id, Err: history.Delete(context.Background(), id)}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.showingMenu {
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.HistoryLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.results = msg.Results
		v.err = nil
		if v.selected >= len(v.results) {
			v.selected = max(len(v.results)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.ResultDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.loading = true
		return v, v.loadResults()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.results)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if len(v.results) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionShow
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "r":
		v.loading = true
		return v, v.loadResults()
	}

	return v, nil
}

// handleMenuKeyMsg handles key presses in action menu mode.
func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > ActionShow {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case "enter":
		return v.handleMenuSelect()
	case "esc":
		v.showingMenu = false
	}

	return v, nil
}

// handleMenuSelect handles selection of an action.
func (v *View) handleMenuSelect() (*View, tea.Cmd) {
	v.showingMenu = false
	if v.selected >= len(v.results) {
		return v, nil
	}

	result := v.results[v.selected]

	switch v.menuSelected {
	case ActionShow:
		return v, func() tea.Msg {
			return messages.ResultSelected{Result: result, Back: messages.ViewHistory}
		}
	case ActionDelete:
		return v, v.deleteResult(result.ID)
	case ActionCancel:
	}

	return v, nil
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, separator, help, and padding
	available := v.height - 8
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the history view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("History (%d)", len(v.results))))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading history..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if len(v.results) == 0 {
		b.WriteString(v.styles.Muted.Render("No analyses yet. Submit a session to see it here."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.showingMenu {
		b.WriteString(v.renderActionMenu())
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.results) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderResult(i, &v.results[i]))
		b.WriteString("\n")
	}

	if len(v.results) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.results)),
			len(v.results))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderResult renders a single result line: when, what, and the lead title.
func (v *View) renderResult(index int, result *domain.AnalysisResult) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	when := result.CreatedAt.Local().Format("2006-01-02 15:04")
	kind := fmt.Sprintf("%-10s %-9s", result.AnalysisType, result.Provider)

	lead := ""
	if len(result.Sources) > 0 {
		lead = result.Sources[0].Title
		if extra := len(result.Sources) - 1; extra > 0 {
			lead += fmt.Sprintf(" +%d", extra)
		}
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%s  %s  %s", indicator, when, kind, lead))
	}
	return v.styles.Normal.Render(indicator) +
		v.styles.Muted.Render(when+"  ") +
		v.styles.Normal.Render(kind+"  ") +
		v.styles.Muted.Render(lead)
}

// renderActionMenu renders the action menu overlay.
func (v *View) renderActionMenu() string {
	var b strings.Builder

	if v.selected < len(v.results) {
		r := v.results[v.selected]
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Actions for: %s %s", r.AnalysisType, r.ID)))
		b.WriteString("\n\n")
	}

	options := []struct {
		action ActionOption
		label  string
	}{
		{ActionShow, "Show"},
		{ActionDelete, "Delete"},
		{ActionCancel, "Cancel"},
	}

	for _, opt := range options {
		if v.menuSelected == opt.action {
			b.WriteString(v.styles.Selected.Render("> " + opt.label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + opt.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Results returns the loaded results.
func (v *View) Results() []domain.AnalysisResult {
	return v.results
}

// SelectedIndex returns the currently selected result index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// IsShowingMenu returns true if the action menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

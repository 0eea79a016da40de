// Package session provides the working session view for the TUI: the
// source list, the analysis options and submission.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// Mode is what the view is currently doing with key presses.
type Mode int

const (
	// ModeBrowse navigates the source list and runs session commands.
	ModeBrowse Mode = iota
	// ModeInput sends key presses to the prompt.
	ModeInput
	// ModePicker filters and picks a vault note.
	ModePicker
)

// inputStep identifies which field the prompt is collecting.
type inputStep int

const (
	stepNone inputStep = iota
	stepTextTitle
	stepTextContent
	stepSelectionTitle
	stepSelectionContent
	stepURL
	stepLanguage
	stepCustomPrompt
)

// Key constants.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
)

var errNoSessions = errors.New("sessions are not available")

// View is the working session view.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	sessions driving.SessionFactory
	session  driving.SessionService

	sources *list.SourceList
	prompt  *input.Prompt
	bar     *status.Bar

	mode         Mode
	step         inputStep
	pendingTitle string

	notes          []domain.NoteRef
	filtered       []domain.NoteRef
	pickerSelected int

	working bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new session view. sessions may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, sessions driving.SessionFactory) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:   s,
		keymap:   km,
		sessions: sessions,
		sources:  list.NewSourceList(s),
		prompt:   input.NewPrompt(s),
		bar:      status.NewBar(s, km),
		width:    80,
		height:   24,
	}
}

// Init opens a session when there is none or the last one was closed.
// An open session is kept so leaving the view does not lose sources.
func (v *View) Init() tea.Cmd {
	v.mode = ModeBrowse
	v.step = stepNone
	v.prompt.Close()
	if v.session == nil || v.session.State().IsClosed() {
		v.openSession()
	}
	v.refresh()
	return nil
}

// openSession replaces the current session with a fresh one.
func (v *View) openSession() {
	v.session = nil
	v.err = nil
	if v.sessions == nil {
		v.err = errNoSessions
		return
	}
	session, err := v.sessions.NewSession()
	if err != nil {
		v.err = err
		return
	}
	v.session = session
}

// refresh copies the session's sources and totals into the components.
func (v *View) refresh() {
	if v.session == nil {
		v.sources.SetSources(nil)
		v.bar.SetStats(domain.Stats{})
		return
	}
	v.sources.SetSources(v.session.Sources())
	v.bar.SetStats(v.session.Stats())
}

// Update handles messages for the session view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case ModeInput:
			return v.handleInputKey(msg)
		case ModePicker:
			return v.handlePickerKey(msg)
		case ModeBrowse:
		}
		return v.handleBrowseKey(msg)

	case messages.NotesLoaded:
		v.setReady("")
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.notes = msg.Notes
		v.filtered = msg.Notes
		v.pickerSelected = 0
		v.mode = ModePicker
		return v, v.prompt.Open("Filter", "type to narrow the list", "")

	case messages.SourceAdded:
		v.working = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.refresh()
		v.sources.SetSelected(v.sources.Count() - 1)
		v.setReady(fmt.Sprintf("Added %s %s", domain.SourceLabel(v.sources.Count()-1), msg.Source.Title))
		return v, nil

	case messages.SourceRemoved:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.refresh()
		v.setReady("Source removed")
		return v, nil

	case messages.AnalysisCompleted:
		v.working = false
		if msg.Err != nil {
			// A failed submit keeps the session and its sources.
			v.refresh()
			v.setError(msg.Err)
			return v, nil
		}
		v.openSession()
		v.refresh()
		v.setReady("")
		if msg.Result == nil {
			return v, nil
		}
		result := *msg.Result
		return v, func() tea.Msg {
			return messages.ResultSelected{Result: result, Back: messages.ViewSession}
		}

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

// handleBrowseKey runs session commands.
func (v *View) handleBrowseKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if keymap.Matches(keyStr, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if keymap.Matches(keyStr, v.keymap.Up) || keymap.Matches(keyStr, v.keymap.Down) {
		v.sources.Update(msg)
		return v, nil
	}

	if v.session == nil {
		if keymap.Matches(keyStr, v.keymap.Reset) {
			v.openSession()
			v.refresh()
		}
		return v, nil
	}

	if v.working {
		return v, nil
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.AddNote):
		return v, v.loadNotes()
	case keymap.Matches(keyStr, v.keymap.AddText):
		return v, v.startInput(stepTextTitle, "")
	case keymap.Matches(keyStr, v.keymap.AddSelection):
		return v, v.startInput(stepSelectionTitle, "")
	case keymap.Matches(keyStr, v.keymap.ClipURL):
		return v, v.startInput(stepURL, "")
	case keymap.Matches(keyStr, v.keymap.Language):
		return v, v.startInput(stepLanguage, v.session.Options().Language)
	case keymap.Matches(keyStr, v.keymap.Prompt):
		return v, v.startInput(stepCustomPrompt, v.session.Options().CustomPrompt)
	case keymap.Matches(keyStr, v.keymap.Remove):
		return v, v.removeSelected()
	case keymap.Matches(keyStr, v.keymap.CycleType):
		v.cycleAnalysisType()
	case keymap.Matches(keyStr, v.keymap.CycleProvider):
		v.cycleProvider()
	case keymap.Matches(keyStr, v.keymap.Submit):
		return v, v.submit()
	case keymap.Matches(keyStr, v.keymap.Reset):
		v.session.Cancel()
		v.openSession()
		v.refresh()
		v.setReady("Session reset")
	}

	return v, nil
}

// startInput opens the prompt for step.
func (v *View) startInput(step inputStep, value string) tea.Cmd {
	v.mode = ModeInput
	v.step = step
	v.err = nil

	label, placeholder := stepPrompt(step)
	return v.prompt.Open(label, placeholder, value)
}

// stepPrompt returns the prompt label and placeholder for step.
func stepPrompt(step inputStep) (label, placeholder string) {
	switch step {
	case stepTextTitle:
		return "Title", "what is this text?"
	case stepTextContent:
		return "Text", "paste or type the text"
	case stepSelectionTitle:
		return "Title", "where is the selection from?"
	case stepSelectionContent:
		return "Selection", "paste the highlighted text"
	case stepURL:
		return "URL", "https://"
	case stepLanguage:
		return "Language", domain.DefaultLanguage
	case stepCustomPrompt:
		return "Instruction", "leave empty for the default prompt"
	case stepNone:
	}
	return "", ""
}

// handleInputKey feeds the prompt and commits the field on enter.
func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.closeInput()
		return v, nil
	case keyEnter:
		return v.commitInput()
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

// commitInput acts on the prompt value for the current step.
func (v *View) commitInput() (*View, tea.Cmd) {
	value := v.prompt.Value()
	step := v.step

	switch step {
	case stepTextTitle, stepSelectionTitle:
		if strings.TrimSpace(value) == "" {
			return v, nil
		}
		v.pendingTitle = strings.TrimSpace(value)
		next := stepTextContent
		if step == stepSelectionTitle {
			next = stepSelectionContent
		}
		return v, v.startInput(next, "")

	case stepTextContent:
		v.closeInput()
		return v, v.addText(v.pendingTitle, value, false)

	case stepSelectionContent:
		v.closeInput()
		return v, v.addText(v.pendingTitle, value, true)

	case stepURL:
		v.closeInput()
		return v, v.clipURL(strings.TrimSpace(value))

	case stepLanguage:
		v.closeInput()
		v.applyOption(domain.OptionLanguage, value)

	case stepCustomPrompt:
		v.closeInput()
		v.applyOption(domain.OptionCustomPrompt, value)

	case stepNone:
		v.closeInput()
	}

	return v, nil
}

// closeInput returns to browse mode.
func (v *View) closeInput() {
	v.prompt.Close()
	v.mode = ModeBrowse
	v.step = stepNone
}

// handlePickerKey filters the note list and adds the chosen note.
func (v *View) handlePickerKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.closeInput()
		return v, nil
	case "up":
		if v.pickerSelected > 0 {
			v.pickerSelected--
		}
		return v, nil
	case "down":
		if v.pickerSelected < len(v.filtered)-1 {
			v.pickerSelected++
		}
		return v, nil
	case keyEnter:
		if len(v.filtered) == 0 {
			return v, nil
		}
		path := v.filtered[v.pickerSelected].Path
		v.closeInput()
		return v, v.addNote(path)
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	v.filtered = domain.FilterNotes(v.notes, v.prompt.Value())
	if v.pickerSelected >= len(v.filtered) {
		v.pickerSelected = max(len(v.filtered)-1, 0)
	}
	return v, cmd
}

// loadNotes returns a command that lists the vault's notes.
func (v *View) loadNotes() tea.Cmd {
	sessions := v.sessions
	v.setWorking("Loading notes")
	return func() tea.Msg {
		notes, err := sessions.ListNotes(context.Background())
		return messages.NotesLoaded{Notes: notes, Err: err}
	}
}

// addNote returns a command that reads a note into the session.
func (v *View) addNote(path string) tea.Cmd {
	session := v.session
	v.working = true
	v.setWorking("Reading " + path)
	return func() tea.Msg {
		record, err := session.AddNote(context.Background(), path)
		return messages.SourceAdded{Source: record, Err: err}
	}
}

// addText returns a command that admits typed text or a selection.
func (v *View) addText(title, content string, selection bool) tea.Cmd {
	session := v.session
	return func() tea.Msg {
		var (
			record domain.SourceRecord
			err    error
		)
		if selection {
			record, err = session.AddSelection(title, content)
		} else {
			record, err = session.AddManualInput(title, content)
		}
		return messages.SourceAdded{Source: record, Err: err}
	}
}

// clipURL returns a command that fetches a page into the session.
func (v *View) clipURL(rawURL string) tea.Cmd {
	session := v.session
	v.working = true
	v.setWorking("Clipping " + rawURL)
	return func() tea.Msg {
		record, err := session.ClipURL(context.Background(), rawURL)
		return messages.SourceAdded{Source: record, Err: err}
	}
}

// removeSelected returns a command that removes the selected source.
func (v *View) removeSelected() tea.Cmd {
	selected := v.sources.SelectedSource()
	if selected == nil {
		return nil
	}
	session := v.session
	id := selected.ID
	return func() tea.Msg {
		return messages.SourceRemoved{ID: id, Err: session.Remove(id)}
	}
}

// submit returns a command that sends the session for analysis.
func (v *View) submit() tea.Cmd {
	if _, err := v.session.Build(); err != nil {
		v.setError(err)
		return nil
	}

	session := v.session
	opts := session.Options()
	v.working = true
	v.setWorking(fmt.Sprintf("Analysing with %s", opts.Provider.Description()))
	return func() tea.Msg {
		result, err := session.Submit(context.Background())
		return messages.AnalysisCompleted{Result: result, Err: err}
	}
}

// cycleAnalysisType moves to the next analysis type.
func (v *View) cycleAnalysisType() {
	types := domain.AllAnalysisTypes()
	current := v.session.Options().AnalysisType
	next := types[0]
	for i, t := range types {
		if t == current {
			next = types[(i+1)%len(types)]
			break
		}
	}
	v.applyOption(domain.OptionAnalysisType, next.String())
}

// cycleProvider moves to the next AI provider.
func (v *View) cycleProvider() {
	providers := domain.AllProviders()
	current := v.session.Options().Provider
	next := providers[0]
	for i, p := range providers {
		if p == current {
			next = providers[(i+1)%len(providers)]
			break
		}
	}
	v.applyOption(domain.OptionProvider, next.String())
}

// applyOption sets one analysis option and reports failures.
func (v *View) applyOption(field, value string) {
	if err := v.session.SetOption(field, value); err != nil {
		v.setError(err)
		return
	}
	v.setReady("")
}

// setWorking shows progress in the status bar.
func (v *View) setWorking(message string) {
	v.err = nil
	v.bar.SetState(status.StateWorking)
	v.bar.SetMessage(message)
}

// setReady returns the status bar to the session totals.
func (v *View) setReady(message string) {
	v.err = nil
	v.bar.SetState(status.StateReady)
	v.bar.SetMessage(message)
}

// setError shows err in the status bar.
func (v *View) setError(err error) {
	v.err = err
	v.bar.SetState(status.StateError)
	v.bar.SetMessage(err.Error())
}

// View renders the session view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Session"))
	if v.session != nil {
		b.WriteString(v.styles.Muted.Render(" (" + v.session.State().String() + ")"))
	}
	b.WriteString("\n")

	if v.session == nil {
		b.WriteString("\n")
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Help.Render("[R] retry  [esc] back"))
		return b.String()
	}

	b.WriteString(v.renderOptions())
	b.WriteString("\n\n")

	switch v.mode {
	case ModePicker:
		b.WriteString(v.renderPicker())
	case ModeInput:
		b.WriteString(v.sources.View())
		b.WriteString("\n\n")
		b.WriteString(v.prompt.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] confirm  [esc] cancel"))
	case ModeBrowse:
		b.WriteString(v.sources.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.bar.View())

	return b.String()
}

// renderOptions renders the current analysis options on one line.
func (v *View) renderOptions() string {
	opts := v.session.Options()

	prompt := "default"
	if strings.TrimSpace(opts.CustomPrompt) != "" {
		prompt = "custom"
	}

	parts := []string{
		v.styles.Label.Render("Analysis ") + v.styles.Normal.Render(opts.AnalysisType.String()),
		v.styles.Label.Render("Provider ") + v.styles.Normal.Render(opts.Provider.Description()),
		v.styles.Label.Render("Language ") + v.styles.Normal.Render(opts.Language),
		v.styles.Label.Render("Prompt ") + v.styles.Normal.Render(prompt),
	}
	return strings.Join(parts, v.styles.Muted.Render("  |  "))
}

// renderPicker renders the note picker.
func (v *View) renderPicker() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Notes (%d of %d)", len(v.filtered), len(v.notes))))
	b.WriteString("\n")
	b.WriteString(v.prompt.View())
	b.WriteString("\n\n")

	if len(v.filtered) == 0 {
		b.WriteString(v.styles.Muted.Render("No matching notes"))
		b.WriteString("\n")
	}

	visible := v.height - 12
	if visible < 3 {
		visible = 3
	}
	start := 0
	if v.pickerSelected >= visible {
		start = v.pickerSelected - visible + 1
	}
	for i := start; i < len(v.filtered) && i < start+visible; i++ {
		if i == v.pickerSelected {
			b.WriteString(v.styles.Selected.Render("> " + v.filtered[i].Path))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + v.filtered[i].Path))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] add  [esc] cancel"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.sources.SetDimensions(width, max(height-10, 4))
	v.prompt.SetWidth(width)
	v.bar.SetWidth(width)
}

// Session returns the current session, or nil when none could be opened.
func (v *View) Session() driving.SessionService {
	return v.session
}

// Mode returns the current mode.
func (v *View) Mode() Mode {
	return v.mode
}

// IsCapturingInput reports whether key presses are going to a prompt.
func (v *View) IsCapturingInput() bool {
	return v.mode != ModeBrowse
}

// IsWorking reports whether a command is in flight.
func (v *View) IsWorking() bool {
	return v.working
}

// FilteredNotes returns the notes matching the picker filter.
func (v *View) FilteredNotes() []domain.NoteRef {
	return v.filtered
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

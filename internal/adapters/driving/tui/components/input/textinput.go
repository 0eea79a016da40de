// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/styles"
)

// Prompt wraps a bubbles textinput with a label. One prompt is reused
// for every field a view asks for; Open reconfigures it.
type Prompt struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewPrompt creates a new, unfocused prompt.
func NewPrompt(s *styles.Styles) *Prompt {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.CharLimit = 0
	ti.Width = 50

	return &Prompt{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the prompt.
func (p *Prompt) Init() tea.Cmd {
	return textinput.Blink
}

// Open clears the prompt, sets its label and focuses it.
func (p *Prompt) Open(label, placeholder, value string) tea.Cmd {
	p.label = label
	p.textinput.Placeholder = placeholder
	p.textinput.EchoMode = textinput.EchoNormal
	p.textinput.SetValue(value)
	p.textinput.CursorEnd()
	return p.textinput.Focus()
}

// SetMasked hides typed characters, for API keys.
func (p *Prompt) SetMasked(masked bool) {
	if masked {
		p.textinput.EchoMode = textinput.EchoPassword
		return
	}
	p.textinput.EchoMode = textinput.EchoNormal
}

// Update handles input messages.
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the prompt.
func (p *Prompt) View() string {
	label := p.styles.Title.Render(p.label + ": ")
	field := p.styles.InputField.Render(p.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (p *Prompt) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *Prompt) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Label returns the current label.
func (p *Prompt) Label() string {
	return p.label
}

// Close clears and blurs the prompt.
func (p *Prompt) Close() {
	p.textinput.Reset()
	p.textinput.Blur()
	p.label = ""
}

// Focused returns whether the prompt is focused.
func (p *Prompt) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the width of the prompt.
func (p *Prompt) SetWidth(width int) {
	p.width = width
	// Account for label and padding
	inputWidth := width - len(p.label) - 10
	if inputWidth < 20 {
		inputWidth = 20
	}
	p.textinput.Width = inputWidth
}

// Width returns the current width.
func (p *Prompt) Width() int {
	return p.width
}

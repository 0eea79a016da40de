package input

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/styles"
)

func TestNewPrompt(t *testing.T) {
	p := NewPrompt(styles.DefaultStyles())

	require.NotNil(t, p)
	assert.Equal(t, "", p.Value())
	assert.False(t, p.Focused())
}

func TestNewPrompt_NilStyles(t *testing.T) {
	p := NewPrompt(nil)

	require.NotNil(t, p)
	assert.NotNil(t, p.styles)
}

func TestPrompt_Init(t *testing.T) {
	assert.NotNil(t, NewPrompt(nil).Init())
}

func TestPrompt_Open(t *testing.T) {
	p := NewPrompt(nil)

	p.Open("Title", "Enter a title", "draft")

	assert.True(t, p.Focused())
	assert.Equal(t, "Title", p.Label())
	assert.Equal(t, "draft", p.Value())
	assert.Contains(t, p.View(), "Title")
}

func TestPrompt_Typing(t *testing.T) {
	p := NewPrompt(nil)
	p.Open("URL", "", "")

	for _, r := range "abc" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "abc", p.Value())
}

func TestPrompt_Masked(t *testing.T) {
	p := NewPrompt(nil)
	p.Open("API key", "", "")

	p.SetMasked(true)
	assert.Equal(t, textinput.EchoPassword, p.textinput.EchoMode)

	p.SetMasked(false)
	assert.Equal(t, textinput.EchoNormal, p.textinput.EchoMode)

	p.SetMasked(true)
	p.Open("Title", "", "")
	assert.Equal(t, textinput.EchoNormal, p.textinput.EchoMode, "open resets masking")
}

func TestPrompt_Close(t *testing.T) {
	p := NewPrompt(nil)
	p.Open("Title", "", "something")

	p.Close()

	assert.False(t, p.Focused())
	assert.Equal(t, "", p.Value())
	assert.Equal(t, "", p.Label())
}

func TestPrompt_SetWidth(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		wantInput int
	}{
		{"wide", 100, 90},
		{"narrow clamps", 15, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrompt(nil)
			p.SetWidth(tt.width)
			assert.Equal(t, tt.width, p.Width())
			assert.Equal(t, tt.wantInput, p.textinput.Width)
		})
	}
}

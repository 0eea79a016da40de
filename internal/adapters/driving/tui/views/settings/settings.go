// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sheaf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sheaf/internal/core/domain"
	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionProvider
	SectionAnalysisType
	SectionLanguage
	SectionVault
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

// overviewItems is the number of editable rows on the overview.
const overviewItems = 4

var errNoSettings = errors.New("settings service not available")

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	// Current settings
	settings *domain.AppSettings
	err      error

	// Navigation state
	section      Section
	selected     int // selection within current section
	focusedField int // 1 when the API key prompt has focus

	prompt *input.Prompt

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		prompt:          input.NewPrompt(s),
	}
}

// Init resets the view and loads settings.
func (v *View) Init() tea.Cmd {
	v.Reset()
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: errNoSettings}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.Reset()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current section.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Global escape to go back
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.Reset()
		return v, nil
	}

	if v.settings == nil {
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionProvider:
		return v.handleProviderKeys(msg)
	case SectionAnalysisType:
		return v.handleAnalysisTypeKeys(msg)
	case SectionLanguage, SectionVault:
		return v.handleTextKeys(msg)
	}

	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < overviewItems-1 {
			v.selected++
		}
	case keyEnter:
		switch v.selected {
		case 0:
			v.section = SectionProvider
			v.selected = v.getProviderIndex()
		case 1:
			v.section = SectionAnalysisType
			v.selected = v.getAnalysisTypeIndex()
		case 2:
			v.section = SectionLanguage
			return v, v.prompt.Open("Language", domain.DefaultLanguage, v.settings.Analysis.DefaultLanguage)
		case 3:
			v.section = SectionVault
			return v, v.prompt.Open("Vault", "/path/to/vault", v.settings.Vault.Path)
		}
	}
	return v, nil
}

func (v *View) handleProviderKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	providers := domain.AllProviders()

	// If we're focused on the API key input
	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			v.prompt.Close()
			return v, nil
		case keyEnter:
			if v.selected >= 0 && v.selected < len(providers) {
				return v, v.setProvider(providers[v.selected], v.prompt.Value())
			}
			return v, nil
		}
		var cmd tea.Cmd
		v.prompt, cmd = v.prompt.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(providers)-1 {
			v.selected++
		}
	case keyTab:
		// Tab to API key input if provider requires it
		if v.selected >= 0 && v.selected < len(providers) && providers[v.selected].RequiresAPIKey() {
			return v, v.openAPIKeyPrompt()
		}
	case keyEnter:
		if v.selected >= 0 && v.selected < len(providers) {
			provider := providers[v.selected]
			// A stored key is kept; only ask when there is none.
			if provider.RequiresAPIKey() && !v.settings.IsProviderConfigured(provider) {
				return v, v.openAPIKeyPrompt()
			}
			return v, v.setProvider(provider, "")
		}
	}
	return v, nil
}

// openAPIKeyPrompt focuses the masked API key prompt.
func (v *View) openAPIKeyPrompt() tea.Cmd {
	v.focusedField = 1
	cmd := v.prompt.Open("API Key", "Enter API key", "")
	v.prompt.SetMasked(true)
	return cmd
}

func (v *View) handleAnalysisTypeKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	types := domain.AllAnalysisTypes()

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(types)-1 {
			v.selected++
		}
	case keyEnter:
		if v.selected >= 0 && v.selected < len(types) {
			return v, v.setAnalysisType(types[v.selected])
		}
	}
	return v, nil
}

// handleTextKeys edits the language or vault path.
func (v *View) handleTextKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == keyEnter {
		value := strings.TrimSpace(v.prompt.Value())
		if v.section == SectionLanguage {
			return v, v.setLanguage(value)
		}
		return v, v.setVaultPath(value)
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

// Commands to update settings.

func (v *View) setProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettings}
		}
		if apiKey != "" {
			if err := svc.SetProvider(provider, "", "", apiKey); err != nil {
				return messages.SettingsSaved{Err: err}
			}
		}
		return messages.SettingsSaved{Err: svc.SetDefaultProvider(provider)}
	}
}

func (v *View) setAnalysisType(analysisType domain.AnalysisType) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettings}
		}
		return messages.SettingsSaved{Err: svc.SetDefaultAnalysisType(analysisType)}
	}
}

func (v *View) setLanguage(language string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettings}
		}
		return messages.SettingsSaved{Err: svc.SetDefaultLanguage(language)}
	}
}

func (v *View) setVaultPath(path string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettings}
		}
		return messages.SettingsSaved{Err: svc.SetVaultPath(path)}
	}
}

// Helper methods to get current selection indices.

func (v *View) getProviderIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllProviders() {
		if p == v.settings.Analysis.DefaultProvider {
			return i
		}
	}
	return 0
}

func (v *View) getAnalysisTypeIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, t := range domain.AllAnalysisTypes() {
		if t == v.settings.Analysis.DefaultType {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	// Error display
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	// Loading state
	if v.settings == nil {
		if v.err == nil {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionProvider:
		b.WriteString(v.renderProviderSelect())
	case SectionAnalysisType:
		b.WriteString(v.renderAnalysisTypeSelect())
	case SectionLanguage, SectionVault:
		b.WriteString(v.prompt.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	provider := v.settings.Analysis.DefaultProvider
	providerValue := fmt.Sprintf("%s (%s)", provider.Description(), v.settings.Provider(provider).Model)

	vaultValue := "Not Set"
	if v.settings.Vault.Path != "" {
		vaultValue = v.settings.Vault.Path
	}

	items := []struct {
		label  string
		value  string
		status string
	}{
		{
			label:  "Default Provider",
			value:  providerValue,
			status: v.getProviderStatus(provider),
		},
		{
			label: "Analysis Type",
			value: v.settings.Analysis.DefaultType.Description(),
		},
		{
			label: "Language",
			value: v.settings.Analysis.DefaultLanguage,
		},
		{
			label: "Vault",
			value: vaultValue,
		},
	}

	for i, item := range items {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		line := fmt.Sprintf("%s%s: %s", indicator, item.label, item.value)
		if item.status != "" {
			line += " " + item.status
		}

		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Providers"))
	b.WriteString("\n")
	for _, p := range domain.AllProviders() {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %-18s", p.Description())))
		b.WriteString(v.getProviderStatus(p))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) getProviderStatus(p domain.AIProvider) string {
	if v.settings.IsProviderConfigured(p) {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderProviderSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Default Provider"))
	b.WriteString("\n\n")

	providers := domain.AllProviders()
	for i, provider := range providers {
		indicator := "  "
		if i == v.selected && v.focusedField == 0 {
			indicator = "> "
		}

		current := ""
		if provider == v.settings.Analysis.DefaultProvider {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, provider.Description(), current)
		if i == v.selected && v.focusedField == 0 {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", v.settings.Provider(provider).Model)))
		b.WriteString("\n")
	}

	if v.focusedField == 1 {
		b.WriteString("\n")
		b.WriteString(v.prompt.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderAnalysisTypeSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Default Analysis Type"))
	b.WriteString("\n\n")

	for i, t := range domain.AllAnalysisTypes() {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		current := ""
		if t == v.settings.Analysis.DefaultType {
			current = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, t.Description(), current)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case SectionAnalysisType:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionProvider:
		if v.focusedField == 1 {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	case SectionLanguage, SectionVault:
		return v.styles.Help.Render("[enter] save  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.prompt.SetWidth(width)
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// IsCapturingInput reports whether key presses are going to a prompt.
func (v *View) IsCapturingInput() bool {
	return v.prompt.Focused()
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = 0
	v.err = nil
	v.prompt.Close()
}

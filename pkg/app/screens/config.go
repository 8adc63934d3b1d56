package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/herogen/pkg/app/styles"
	"github.com/kerbaras/herogen/pkg/data"
)

type configField struct {
	label string
	get   func(*data.Settings) *string
}

var configFields = []configField{
	{"Hero Name", func(s *data.Settings) *string { return &s.HeroName }},
	{"Superpower", func(s *data.Settings) *string { return &s.Superpower }},
	{"Villain", func(s *data.Settings) *string { return &s.Villain }},
	{"Setting", func(s *data.Settings) *string { return &s.Setting }},
	{"Art Style", func(s *data.Settings) *string { return &s.ArtStyle }},
}

// ConfigScreen edits the story settings before generation.
type ConfigScreen struct {
	inputs  []textinput.Model
	focused int
	width   int
	height  int
	err     error
}

func NewConfigScreen() *ConfigScreen {
	s := &ConfigScreen{inputs: make([]textinput.Model, len(configFields))}
	for i, f := range configFields {
		ti := textinput.New()
		ti.Placeholder = f.label
		ti.CharLimit = 200
		ti.Width = 50
		s.inputs[i] = ti
	}
	s.inputs[0].Focus()
	return s
}

func (s *ConfigScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *ConfigScreen) SetSettings(settings data.Settings) {
	for i, f := range configFields {
		s.inputs[i].SetValue(*f.get(&settings))
	}
}

// Settings reads the form. Blank fields fall back to the defaults.
func (s *ConfigScreen) Settings() data.Settings {
	settings := data.DefaultSettings()
	for i, f := range configFields {
		if v := strings.TrimSpace(s.inputs[i].Value()); v != "" {
			*f.get(&settings) = v
		}
	}
	return settings
}

func (s *ConfigScreen) focus(i int) tea.Cmd {
	s.inputs[s.focused].Blur()
	s.focused = (i + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focused].Focus()
}

func (s *ConfigScreen) submit() tea.Cmd {
	s.err = nil
	settings := s.Settings()
	return func() tea.Msg { return submitSettingsMsg{settings: settings} }
}

func (s *ConfigScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "shift+tab":
			return s, s.focus(s.focused - 1)
		case "down":
			return s, s.focus(s.focused + 1)
		case "enter":
			if s.focused == len(s.inputs)-1 {
				return s, s.submit()
			}
			return s, s.focus(s.focused + 1)
		case "ctrl+s":
			return s, s.submit()
		case "esc":
			return s, func() tea.Msg { return newComicMsg{} }
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focused], cmd = s.inputs[s.focused].Update(msg)
	return s, cmd
}

func (s *ConfigScreen) View() string {
	header := styles.TitleStyle.Render("Story Settings")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Script generation failed: %s", s.err)) + "\n\n"
	}

	var b strings.Builder
	for i, f := range configFields {
		style := styles.InputStyle
		label := styles.MutedStyle.Render(f.label)
		if i == s.focused {
			style = styles.FocusedInputStyle
			label = styles.SubtitleStyle.Render(f.label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(style.Render(s.inputs[i].View()))
		b.WriteString("\n")
	}

	help := styles.HelpStyle.Render("↑/↓: field • enter: next / generate • ctrl+s: generate • esc: new selfie • ctrl+c: quit")

	return fmt.Sprintf("%s\n\n%s%s%s", header, errorMsg, b.String(), help)
}

package screens

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/herogen/pkg/app/styles"
)

// UploadScreen asks for the selfie that becomes the hero.
type UploadScreen struct {
	input  textinput.Model
	width  int
	height int
	err    error
}

func NewUploadScreen() *UploadScreen {
	ti := textinput.New()
	ti.Placeholder = "~/Pictures/selfie.jpg"
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	return &UploadScreen{input: ti}
}

func (s *UploadScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *UploadScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			s.err = nil
			path := s.input.Value()
			return s, func() tea.Msg { return submitSelfieMsg{path: path} }
		}

	case errMsg:
		s.err = msg.err
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *UploadScreen) View() string {
	header := styles.TitleStyle.Render("Become the Hero")
	intro := styles.SubtitleStyle.Render("Upload a selfie and star in your own comic book.")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	}

	input := styles.FocusedInputStyle.Render(s.input.View())

	help := styles.HelpStyle.Render("enter: upload • tab: library • ctrl+c: quit")

	return fmt.Sprintf("%s\n%s\n\n%sPath to your photo:\n%s\n%s", header, intro, errorMsg, input, help)
}

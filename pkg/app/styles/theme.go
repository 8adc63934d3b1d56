package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/herogen/pkg/data"
)

var (
	// Color palette
	Primary    = lipgloss.Color("#FFD600")
	Secondary  = lipgloss.Color("#E53935")
	Success    = lipgloss.Color("#C3E88D")
	Warning    = lipgloss.Color("#FFCB6B")
	Error      = lipgloss.Color("#F07178")
	Info       = lipgloss.Color("#82AAFF")
	Muted      = lipgloss.Color("#546E7A")
	Background = lipgloss.Color("#1A1A2E")
	Foreground = lipgloss.Color("#EEFFFF")

	RoundedBorder = lipgloss.RoundedBorder()
	ThickBorder   = lipgloss.ThickBorder()
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(Foreground)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	CardStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(1, 2).
			MarginBottom(1)

	ActiveCardStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Primary).
			Padding(1, 2).
			MarginBottom(1)

	// Comic panel frame
	PanelStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Foreground).
			Padding(1, 2)

	// Speech bubble under a panel
	DialogueStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Primary).
			Foreground(Foreground).
			Bold(true).
			Padding(0, 1)

	StatusActive = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	StatusCompleted = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(Muted)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Background(lipgloss.Color("#37474F")).
			Padding(0, 2).
			Bold(true)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Padding(0, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)

	InputStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(RoundedBorder).
				BorderForeground(Primary).
				Padding(0, 1)
)

// StatusStyle picks a style for a generation progress status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "scripting", "drawing":
		return StatusActive
	case "scripted", "drawn", "complete":
		return StatusCompleted
	case "placeholder":
		return StatusWarning
	case "error":
		return StatusError
	default:
		return MutedStyle
	}
}

// AudioStyle picks a style for the live director status.
func AudioStyle(status data.AudioStatus) lipgloss.Style {
	switch status {
	case data.AudioConnecting:
		return StatusWarning
	case data.AudioConnected:
		return StatusCompleted
	case data.AudioSpeaking:
		return StatusActive
	case data.AudioError:
		return StatusError
	default:
		return MutedStyle
	}
}

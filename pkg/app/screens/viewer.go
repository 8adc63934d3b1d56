package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/herogen/pkg/app/components"
	"github.com/kerbaras/herogen/pkg/app/styles"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/services"
)

// ViewerScreen shows the generating spinner and then the comic, one page at
// a time.
type ViewerScreen struct {
	spinner  spinner.Model
	progress *components.ProgressTracker

	snapshot services.Snapshot
	page     int

	audio        data.AudioStatus
	liveDisabled bool

	status string
	err    error
	width  int
	height int
}

func NewViewerScreen() *ViewerScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusActive

	return &ViewerScreen{
		spinner:  sp,
		progress: components.NewProgressTracker(60),
		audio:    data.AudioDisconnected,
	}
}

func (s *ViewerScreen) Init() tea.Cmd {
	return s.spinner.Tick
}

// SetSnapshot shows a new controller state. The page index is kept while
// the same story is on screen.
func (s *ViewerScreen) SetSnapshot(snap services.Snapshot) {
	if snap.Story == nil || s.snapshot.Story == nil || snap.Story.ID != s.snapshot.Story.ID {
		s.page = 0
		s.status = ""
		if snap.State != data.StateViewing {
			s.err = nil
		}
	}
	s.snapshot = snap
	s.clampPage()
}

func (s *ViewerScreen) clampPage() {
	n := s.pageCount()
	if s.page >= n {
		s.page = n - 1
	}
	if s.page < 0 {
		s.page = 0
	}
}

func (s *ViewerScreen) pageCount() int {
	if s.snapshot.Story == nil {
		return 0
	}
	return len(s.snapshot.Story.Pages)
}

func (s *ViewerScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.snapshot.State == data.StateGenerating {
			return s, nil
		}
		switch msg.String() {
		case "right":
			s.page++
			s.clampPage()
		case "left":
			s.page--
			s.clampPage()
		case "l":
			if s.liveDisabled {
				s.err = fmt.Errorf("the live director needs a Gemini API key")
				return s, nil
			}
			return s, func() tea.Msg { return toggleDirectorMsg{} }
		case "e":
			story := s.snapshot.Story
			s.status = "Exporting..."
			return s, func() tea.Msg { return exportRequestMsg{story: story} }
		case "n":
			return s, func() tea.Msg { return newComicMsg{} }
		case "q":
			return s, tea.Quit
		}

	case exportedMsg:
		if msg.err != nil {
			s.status = ""
			s.err = msg.err
		} else {
			s.status = fmt.Sprintf("Saved %s", msg.path)
		}

	case errMsg:
		s.err = msg.err
	}

	return s, nil
}

func (s *ViewerScreen) View() string {
	if s.snapshot.State == data.StateGenerating {
		title := styles.TitleStyle.Render("Writing your story")
		line := fmt.Sprintf("%s Our writers are drafting the script for %s...", s.spinner.View(), s.snapshot.Settings.HeroName)
		return fmt.Sprintf("%s\n\n%s\n\n%s", title, line, s.progress.View())
	}

	story := s.snapshot.Story
	if story == nil || len(story.Pages) == 0 {
		return styles.MutedStyle.Render("Nothing to show yet.")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(story.Title))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Starring %s vs. %s", story.HeroName, story.Settings.Villain)))
	b.WriteString("\n\n")

	b.WriteString(s.renderPage(story.Pages[s.page], len(story.Pages)))
	b.WriteString("\n\n")

	rendered := story.Rendered()
	b.WriteString(components.SimpleProgress(rendered, len(story.Pages), 30))
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" %d/%d panels drawn", rendered, len(story.Pages))))
	if p, ok := s.progress.Get(story.ID); ok && p.PageNumber > 0 {
		b.WriteString(" ")
		b.WriteString(styles.StatusStyle(p.Status).Render(fmt.Sprintf("page %d %s", p.PageNumber, p.Status)))
	}
	b.WriteString("\n")

	b.WriteString(s.renderDirector())
	b.WriteString("\n")

	if s.err != nil {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)))
		b.WriteString("\n")
	} else if s.status != "" {
		b.WriteString(styles.StatusCompleted.Render(s.status))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render("←/→: page • l: live director • e: export EPUB • n: new comic • tab: library • q: quit"))
	return b.String()
}

func (s *ViewerScreen) renderPage(page data.Page, total int) string {
	width := 60
	if s.width > 10 && s.width-8 < width {
		width = s.width - 8
	}

	var image string
	switch {
	case page.IsLoading:
		image = fmt.Sprintf("%s Drawing panel...", s.spinner.View())
	case strings.HasPrefix(page.ImageURL, "data:"):
		image = styles.StatusCompleted.Render("Panel ready")
	default:
		image = styles.StatusWarning.Render("Panel unavailable, showing placeholder")
		if page.ImageURL != "" {
			image += "\n" + styles.MutedStyle.Render(page.ImageURL)
		}
	}

	header := styles.MutedStyle.Render(fmt.Sprintf("Page %d of %d", page.PageNumber, total))
	scene := lipgloss.NewStyle().Width(width).Render(page.PanelDescription)
	panel := styles.PanelStyle.Width(width + 4).Render(fmt.Sprintf("%s\n\n%s\n\n%s", header, scene, image))

	dialogue := styles.DialogueStyle.Width(width).Render(strings.ToUpper(page.Dialogue))
	return lipgloss.JoinVertical(lipgloss.Left, panel, dialogue)
}

func (s *ViewerScreen) renderDirector() string {
	if s.liveDisabled {
		return styles.MutedStyle.Render("Director: unavailable")
	}
	label := "Director: " + string(s.audio)
	if s.audio == data.AudioSpeaking {
		label += " " + s.spinner.View()
	}
	return styles.AudioStyle(s.audio).Render(label)
}

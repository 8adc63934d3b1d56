package screens

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/herogen/pkg/app/components"
	"github.com/kerbaras/herogen/pkg/app/styles"
)

var (
	errNoLibrary     = errors.New("library is not available")
	errStoryNotFound = errors.New("story not found")
)

type LibraryScreen struct {
	repo      Library
	storyList *components.StoryList
	width     int
	height    int
	status    string
	err       error
}

func NewLibraryScreen(repo Library) *LibraryScreen {
	return &LibraryScreen{
		repo:      repo,
		storyList: components.NewStoryList(),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.loadLibrary
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.storyList.Width = msg.Width - 4
		s.storyList.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.storyList.Prev()
		case "down", "j":
			s.storyList.Next()
		case "r":
			return s, s.loadLibrary
		case "d":
			if selected := s.storyList.Selected(); selected != nil {
				return s, s.deleteStory(selected.Story.ID)
			}
		case "e":
			if selected := s.storyList.Selected(); selected != nil {
				return s, s.loadStory(selected.Story.ID, func(msg openStoryMsg) tea.Msg {
					return exportRequestMsg{story: msg.story}
				})
			}
		case "enter":
			if selected := s.storyList.Selected(); selected != nil {
				return s, s.loadStory(selected.Story.ID, func(msg openStoryMsg) tea.Msg {
					return msg
				})
			}
		}

	case libraryLoadedMsg:
		s.storyList.SetItems(msg.items)
		s.err = msg.err

	case exportedMsg:
		if msg.err != nil {
			s.err = msg.err
		} else {
			s.status = fmt.Sprintf("Saved %s", msg.path)
		}

	case errMsg:
		s.err = msg.err

	case storyDeletedMsg:
		if msg.err != nil {
			s.err = msg.err
		}
		return s, s.loadLibrary
	}

	return s, nil
}

func (s *LibraryScreen) View() string {
	header := styles.TitleStyle.Render("Comic Library")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	} else if s.status != "" {
		errorMsg = styles.StatusCompleted.Render(s.status) + "\n\n"
	}

	help := styles.HelpStyle.Render(
		"↑/k: up • ↓/j: down • enter: read • e: export EPUB • d: delete • r: refresh • tab: switch view • ctrl+c: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, errorMsg, s.storyList.View(), help)
}

func (s *LibraryScreen) loadLibrary() tea.Msg {
	if s.repo == nil {
		return libraryLoadedMsg{err: errNoLibrary}
	}

	stories, err := s.repo.ListStories()
	if err != nil {
		return libraryLoadedMsg{err: err}
	}

	items := make([]components.StoryListItem, len(stories))
	for i, story := range stories {
		_, total, rendered, _ := s.repo.GetStoryWithPageCount(story.ID)
		items[i] = components.StoryListItem{
			Story:    story,
			Total:    total,
			Rendered: rendered,
		}
	}

	return libraryLoadedMsg{items: items}
}

// loadStory fetches the full story, pages included, and hands it to then.
func (s *LibraryScreen) loadStory(id string, then func(openStoryMsg) tea.Msg) tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		story, err := repo.GetStory(id)
		if err != nil {
			return errMsg{err}
		}
		if story == nil {
			return errMsg{errStoryNotFound}
		}
		return then(openStoryMsg{story: story})
	}
}

func (s *LibraryScreen) deleteStory(id string) tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		return storyDeletedMsg{err: repo.DeleteStory(id)}
	}
}

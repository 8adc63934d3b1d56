package screens

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/herogen/pkg/data"
)

type stubSource struct {
	scriptErr error
}

func (s *stubSource) GenerateScript(ctx context.Context, selfie data.Image, settings data.Settings) (*data.Story, error) {
	if s.scriptErr != nil {
		return nil, s.scriptErr
	}
	return &data.Story{
		Title:    "Pixel Storm",
		HeroName: settings.HeroName,
		Pages: []data.Page{
			{PageNumber: 1, PanelDescription: "Skyline", Dialogue: "Night falls."},
			{PageNumber: 2, PanelDescription: "Showdown", Dialogue: "Not today!"},
		},
	}, nil
}

func (s *stubSource) GeneratePanel(ctx context.Context, description string, reference data.Image, artStyle string) (data.Image, error) {
	return data.Image{Data: []byte("png"), MIMEType: "image/png"}, nil
}

type memoryRepo struct {
	mu      sync.Mutex
	stories map[string]*data.Story
	deleted []string
	listErr error
}

func newMemoryRepo(stories ...*data.Story) *memoryRepo {
	r := &memoryRepo{stories: map[string]*data.Story{}}
	for _, s := range stories {
		r.stories[s.ID] = s
	}
	return r
}

func (r *memoryRepo) SaveStory(story *data.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stories[story.ID] = story.Clone()
	return nil
}

func (r *memoryRepo) UpdatePage(storyID string, page data.Page) error {
	return nil
}

func (r *memoryRepo) ListStories() ([]*data.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*data.Story
	for _, s := range r.stories {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (r *memoryRepo) GetStory(id string) (*data.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return nil, errors.New("story not found")
	}
	return s.Clone(), nil
}

func (r *memoryRepo) GetStoryWithPageCount(id string) (*data.Story, int, int, error) {
	s, err := r.GetStory(id)
	if err != nil {
		return nil, 0, 0, err
	}
	return s, len(s.Pages), s.Rendered(), nil
}

func (r *memoryRepo) DeleteStory(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stories, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testStory(id string) *data.Story {
	return &data.Story{
		ID:       id,
		Title:    "Pixel Storm",
		HeroName: "Captain Pixel",
		Settings: data.DefaultSettings(),
		Pages: []data.Page{
			{PageNumber: 1, PanelDescription: "Skyline", Dialogue: "Night falls.", ImageURL: "data:image/png;base64,AAAA"},
			{PageNumber: 2, PanelDescription: "Showdown", Dialogue: "Not today!", ImageURL: "https://picsum.photos/800/600?error"},
			{PageNumber: 3, PanelDescription: "Finale", Dialogue: "Victory.", IsLoading: true},
		},
	}
}

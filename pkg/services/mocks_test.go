package services

import (
	"context"
	"sync"

	"github.com/kerbaras/herogen/pkg/data"
)

// Mock implementations for testing

type mockSource struct {
	generateScriptFunc func(ctx context.Context, selfie data.Image, settings data.Settings) (*data.Story, error)
	generatePanelFunc  func(ctx context.Context, description string, reference data.Image, artStyle string) (data.Image, error)

	mu          sync.Mutex
	panelCalls  []string
	scriptCalls int
}

func (m *mockSource) GenerateScript(ctx context.Context, selfie data.Image, settings data.Settings) (*data.Story, error) {
	m.mu.Lock()
	m.scriptCalls++
	m.mu.Unlock()
	if m.generateScriptFunc != nil {
		return m.generateScriptFunc(ctx, selfie, settings)
	}
	return threePageScript(), nil
}

func (m *mockSource) GeneratePanel(ctx context.Context, description string, reference data.Image, artStyle string) (data.Image, error) {
	m.mu.Lock()
	m.panelCalls = append(m.panelCalls, description)
	m.mu.Unlock()
	if m.generatePanelFunc != nil {
		return m.generatePanelFunc(ctx, description, reference, artStyle)
	}
	return data.Image{Data: []byte("png:" + description), MIMEType: "image/png"}, nil
}

func (m *mockSource) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.panelCalls...)
}

type mockRepository struct {
	saveStoryFunc  func(story *data.Story) error
	updatePageFunc func(storyID string, page data.Page) error

	mu      sync.Mutex
	saved   []*data.Story
	updates []data.Page
}

func (m *mockRepository) SaveStory(story *data.Story) error {
	m.mu.Lock()
	m.saved = append(m.saved, story.Clone())
	m.mu.Unlock()
	if m.saveStoryFunc != nil {
		return m.saveStoryFunc(story)
	}
	return nil
}

func (m *mockRepository) UpdatePage(storyID string, page data.Page) error {
	m.mu.Lock()
	m.updates = append(m.updates, page)
	m.mu.Unlock()
	if m.updatePageFunc != nil {
		return m.updatePageFunc(storyID, page)
	}
	return nil
}

// Test helpers

var testSelfie = data.Image{Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, MIMEType: "image/jpeg"}

func threePageScript() *data.Story {
	return &data.Story{
		Title:    "Pixel Storm",
		HeroName: "Captain Pixel",
		Pages: []data.Page{
			{PageNumber: 1, PanelDescription: "rooftop", Dialogue: "Quiet night.", IsLoading: true},
			{PageNumber: 2, PanelDescription: "ambush", Dialogue: "Glitch!", IsLoading: true},
			{PageNumber: 3, PanelDescription: "victory", Dialogue: "Reality restored.", IsLoading: true},
		},
	}
}

func drainProgress(g *Generator) []GenerationProgress {
	var out []GenerationProgress
	for {
		select {
		case p := <-g.GetProgressChannel():
			out = append(out, p)
		default:
			return out
		}
	}
}

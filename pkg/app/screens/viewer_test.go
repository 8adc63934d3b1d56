package screens

import (
	"errors"
	"strings"
	"testing"

	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/services"
)

func viewing(story *data.Story) services.Snapshot {
	return services.Snapshot{State: data.StateViewing, Settings: story.Settings, Story: story, HasImage: true}
}

func TestViewerScreenPaging(t *testing.T) {
	s := NewViewerScreen()
	s.SetSnapshot(viewing(testStory("a")))

	s.Update(key("left"))
	if s.page != 0 {
		t.Errorf("Expected page to stay at 0, got %d", s.page)
	}

	s.Update(key("right"))
	s.Update(key("right"))
	s.Update(key("right"))
	if s.page != 2 {
		t.Errorf("Expected page to stop at 2, got %d", s.page)
	}
}

func TestViewerScreenKeepsPageForSameStory(t *testing.T) {
	s := NewViewerScreen()
	s.SetSnapshot(viewing(testStory("a")))
	s.Update(key("right"))

	s.SetSnapshot(viewing(testStory("a")))
	if s.page != 1 {
		t.Errorf("Expected page 1 after update, got %d", s.page)
	}

	s.SetSnapshot(viewing(testStory("b")))
	if s.page != 0 {
		t.Errorf("Expected page reset for a new story, got %d", s.page)
	}
}

func TestViewerScreenView(t *testing.T) {
	s := NewViewerScreen()
	s.SetSnapshot(viewing(testStory("a")))

	view := s.View()
	for _, want := range []string{"Pixel Storm", "Page 1 of 3", "Panel ready", "NIGHT FALLS.", "2/3", "DISCONNECTED"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}

	s.Update(key("right"))
	if !strings.Contains(s.View(), "placeholder") {
		t.Error("Expected placeholder notice on page 2")
	}

	s.Update(key("right"))
	if !strings.Contains(s.View(), "Drawing panel") {
		t.Error("Expected loading notice on page 3")
	}
}

func TestViewerScreenShowsPanelProgress(t *testing.T) {
	s := NewViewerScreen()
	s.SetSnapshot(viewing(testStory("a")))
	if strings.Contains(s.View(), "page 3 drawing") {
		t.Fatal("Expected no panel status before any progress")
	}

	s.progress.Update(services.GenerationProgress{StoryID: "a", PageNumber: 3, CurrentPage: 3, TotalPages: 3, Status: "drawing"})
	if !strings.Contains(s.View(), "page 3 drawing") {
		t.Errorf("Expected the panel being drawn in the view: %s", s.View())
	}

	s.progress.Update(services.GenerationProgress{StoryID: "a", Status: "complete"})
	if strings.Contains(s.View(), "page 3 drawing") {
		t.Error("Expected the panel status to clear once the story completes")
	}
}

func TestViewerScreenGenerating(t *testing.T) {
	s := NewViewerScreen()
	s.SetSnapshot(services.Snapshot{State: data.StateGenerating, Settings: data.DefaultSettings()})

	if !strings.Contains(s.View(), "drafting the script for Captain Pixel") {
		t.Errorf("Unexpected generating view: %s", s.View())
	}

	_, cmd := s.Update(key("n"))
	if cmd != nil {
		t.Error("Expected keys to be ignored while generating")
	}
}

func TestViewerScreenActions(t *testing.T) {
	s := NewViewerScreen()
	story := testStory("a")
	s.SetSnapshot(viewing(story))

	_, cmd := s.Update(key("e"))
	export, ok := cmd().(exportRequestMsg)
	if !ok || export.story.ID != "a" {
		t.Errorf("Expected export request for story a, got %#v", cmd())
	}

	_, cmd = s.Update(key("l"))
	if _, ok := cmd().(toggleDirectorMsg); !ok {
		t.Error("Expected director toggle")
	}

	_, cmd = s.Update(key("n"))
	if _, ok := cmd().(newComicMsg); !ok {
		t.Error("Expected new comic")
	}
}

func TestViewerScreenDirectorDisabled(t *testing.T) {
	s := NewViewerScreen()
	s.liveDisabled = true
	s.SetSnapshot(viewing(testStory("a")))

	_, cmd := s.Update(key("l"))
	if cmd != nil {
		t.Error("Expected no toggle without a director")
	}
	if s.err == nil {
		t.Error("Expected an explanation")
	}
	if !strings.Contains(s.View(), "Director: unavailable") {
		t.Error("Expected director to show as unavailable")
	}
}

func TestViewerScreenExportResult(t *testing.T) {
	s := NewViewerScreen()
	s.SetSnapshot(viewing(testStory("a")))

	s.Update(exportedMsg{path: "/tmp/pixel.epub"})
	if !strings.Contains(s.View(), "Saved /tmp/pixel.epub") {
		t.Error("Expected saved path in view")
	}

	s.Update(exportedMsg{err: errors.New("disk full")})
	if !strings.Contains(s.View(), "disk full") {
		t.Error("Expected export error in view")
	}
}

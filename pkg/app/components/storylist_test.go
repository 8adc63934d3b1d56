package components

import (
	"strings"
	"testing"
	"time"

	"github.com/kerbaras/herogen/pkg/data"
)

func testItems() []StoryListItem {
	settings := data.DefaultSettings()
	return []StoryListItem{
		{Story: &data.Story{ID: "1", Title: "Pixel Storm", Settings: settings, CreatedAt: time.Now()}, Total: 10, Rendered: 10},
		{Story: &data.Story{ID: "2", Title: "Glitch Returns", Settings: settings, CreatedAt: time.Now()}, Total: 10, Rendered: 4},
		{Story: &data.Story{ID: "3", Title: "Neon Dawn", HeroName: "Dawn", CreatedAt: time.Now()}, Total: 2, Rendered: 2},
	}
}

func TestNewStoryList(t *testing.T) {
	list := NewStoryList()

	if len(list.Items) != 0 {
		t.Errorf("Expected empty list, got %d items", len(list.Items))
	}
	if list.Selected() != nil {
		t.Error("Expected no selection on empty list")
	}
}

func TestStoryListNavigation(t *testing.T) {
	list := NewStoryList()
	list.SetItems(testItems())

	list.Next()
	if list.Selected().Story.ID != "2" {
		t.Errorf("Expected story 2, got %s", list.Selected().Story.ID)
	}

	list.Next()
	list.Next()
	if list.SelectedIndex != 0 {
		t.Errorf("Expected wrap to 0, got %d", list.SelectedIndex)
	}

	list.Prev()
	if list.SelectedIndex != 2 {
		t.Errorf("Expected wrap to 2, got %d", list.SelectedIndex)
	}
}

func TestStoryListNavigationEmpty(t *testing.T) {
	list := NewStoryList()
	list.Next()
	list.Prev()

	if list.SelectedIndex != 0 {
		t.Errorf("Expected index 0, got %d", list.SelectedIndex)
	}
}

func TestStoryListSetItemsClampsSelection(t *testing.T) {
	list := NewStoryList()
	list.SetItems(testItems())
	list.SelectedIndex = 2

	list.SetItems(testItems()[:1])
	if list.SelectedIndex != 0 {
		t.Errorf("Expected index clamped to 0, got %d", list.SelectedIndex)
	}

	list.SetItems(nil)
	if list.SelectedIndex != 0 {
		t.Errorf("Expected index 0 for empty list, got %d", list.SelectedIndex)
	}
}

func TestStoryListView(t *testing.T) {
	list := NewStoryList()
	list.Width = 100
	list.SetItems(testItems())

	view := list.View()

	for _, want := range []string{"Pixel Storm", "Glitch Returns", "Captain Pixel vs. The Glitch", "4 / 10 drawn", "Incomplete", "Complete"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view", want)
		}
	}
}

func TestStoryListViewEmpty(t *testing.T) {
	list := NewStoryList()

	if !strings.Contains(list.View(), "No comics yet") {
		t.Error("Expected empty message")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
	if got := truncate("a very long line of text", 10); got != "a very ..." {
		t.Errorf("Unexpected truncation: %q", got)
	}
}

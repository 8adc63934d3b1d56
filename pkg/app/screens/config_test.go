package screens

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/herogen/pkg/data"
)

func TestConfigScreenIsModel(t *testing.T) {
	var m tea.Model = NewConfigScreen()
	if m.Init() == nil {
		t.Error("Expected Init to start the cursor blink")
	}
}

func TestConfigScreenSettingsRoundTrip(t *testing.T) {
	s := NewConfigScreen()
	want := data.Settings{
		HeroName:   "Nova",
		Superpower: "Flight",
		Villain:    "Dr. Dusk",
		Setting:    "Lunar base",
		ArtStyle:   "Manga",
	}
	s.SetSettings(want)

	if got := s.Settings(); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestConfigScreenBlankFieldsUseDefaults(t *testing.T) {
	s := NewConfigScreen()
	s.SetSettings(data.Settings{HeroName: "Nova"})

	got := s.Settings()
	if got.HeroName != "Nova" {
		t.Errorf("Expected hero Nova, got %s", got.HeroName)
	}
	if got.Villain != data.DefaultSettings().Villain {
		t.Errorf("Expected default villain, got %s", got.Villain)
	}
}

func TestConfigScreenNavigation(t *testing.T) {
	s := NewConfigScreen()

	s.Update(key("down"))
	if s.focused != 1 {
		t.Errorf("Expected focus 1, got %d", s.focused)
	}
	s.Update(key("up"))
	s.Update(key("up"))
	if s.focused != len(configFields)-1 {
		t.Errorf("Expected focus to wrap to last field, got %d", s.focused)
	}
}

func TestConfigScreenEnterSubmitsOnLastField(t *testing.T) {
	s := NewConfigScreen()
	s.SetSettings(data.DefaultSettings())

	for i := 0; i < len(configFields)-1; i++ {
		s.Update(key("enter"))
		if s.focused != i+1 {
			t.Fatalf("Expected focus %d, got %d", i+1, s.focused)
		}
	}

	_, cmd := s.Update(key("enter"))
	msg, ok := cmd().(submitSettingsMsg)
	if !ok {
		t.Fatalf("Expected submitSettingsMsg, got %T", cmd())
	}
	if msg.settings != data.DefaultSettings() {
		t.Errorf("Unexpected settings %+v", msg.settings)
	}
}

func TestConfigScreenCtrlSAndEsc(t *testing.T) {
	s := NewConfigScreen()

	_, cmd := s.Update(key("ctrl+s"))
	if _, ok := cmd().(submitSettingsMsg); !ok {
		t.Error("Expected ctrl+s to submit")
	}

	_, cmd = s.Update(key("esc"))
	if _, ok := cmd().(newComicMsg); !ok {
		t.Error("Expected esc to start over")
	}
}

func TestConfigScreenShowsScriptError(t *testing.T) {
	s := NewConfigScreen()
	s.err = errors.New("quota exceeded")

	if !strings.Contains(s.View(), "quota exceeded") {
		t.Error("Expected the error in the view")
	}
}

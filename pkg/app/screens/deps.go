package screens

import (
	"io"

	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/integrations"
	"github.com/kerbaras/herogen/pkg/live"
	"github.com/kerbaras/herogen/pkg/services"
)

// Library is the story store as the TUI sees it.
type Library interface {
	ListStories() ([]*data.Story, error)
	GetStory(id string) (*data.Story, error)
	GetStoryWithPageCount(id string) (*data.Story, int, int, error)
	DeleteStory(id string) error
}

type ReferencePreparer interface {
	PrepareReference(img data.Image) (data.Image, error)
}

// Deps wires the screens to the rest of herogen. Director and OpenMic may be
// nil, which disables the live director.
type Deps struct {
	Controller *services.ComicController
	Generator  *services.Generator
	Library    Library
	Exporter   integrations.Exporter
	Preparer   ReferencePreparer
	Director   *live.Director
	OpenMic    func() (io.ReadCloser, error)
}

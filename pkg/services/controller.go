package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kerbaras/herogen/pkg/data"
)

var (
	ErrNoSelfie     = errors.New("no selfie uploaded")
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// Snapshot is a copy of the controller state safe to hand to views.
type Snapshot struct {
	State    data.AppState
	Settings data.Settings
	Story    *data.Story
	HasImage bool
	Err      error
}

// ComicController drives one user's way through upload, config, generation
// and viewing.
type ComicController struct {
	generator *Generator

	mu        sync.Mutex
	state     data.AppState
	selfie    data.Image
	settings  data.Settings
	story     *data.Story
	err       error
	listeners []func(Snapshot)
}

func NewComicController(generator *Generator) *ComicController {
	return &ComicController{
		generator: generator,
		state:     data.StateUpload,
		settings:  data.DefaultSettings(),
	}
}

// OnChange registers a listener called after every state or story change.
func (c *ComicController) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *ComicController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ComicController) snapshotLocked() Snapshot {
	return Snapshot{
		State:    c.state,
		Settings: c.settings,
		Story:    c.story.Clone(),
		HasImage: !c.selfie.Empty(),
		Err:      c.err,
	}
}

// UploadSelfie stores the reference image and moves to CONFIG.
func (c *ComicController) UploadSelfie(img data.Image) error {
	if img.Empty() {
		return ErrNoSelfie
	}

	c.mu.Lock()
	if c.state == data.StateGenerating {
		c.mu.Unlock()
		return fmt.Errorf("%w: generation in progress", ErrInvalidState)
	}
	c.selfie = img
	c.story = nil
	c.err = nil
	c.state = data.StateConfig
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *ComicController) UpdateSettings(settings data.Settings) error {
	c.mu.Lock()
	if c.state != data.StateConfig {
		c.mu.Unlock()
		return fmt.Errorf("%w: settings can only change in %s", ErrInvalidState, data.StateConfig)
	}
	c.settings = settings
	c.mu.Unlock()

	c.notify()
	return nil
}

// StartGeneration writes the script and then renders panels one at a time.
// A script failure returns to CONFIG with the error kept for display. Panel
// failures never abort: the page gets a placeholder.
func (c *ComicController) StartGeneration(ctx context.Context) error {
	c.mu.Lock()
	if c.selfie.Empty() {
		c.mu.Unlock()
		return ErrNoSelfie
	}
	if c.state != data.StateConfig {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot generate from %s", ErrInvalidState, c.state)
	}
	c.state = data.StateGenerating
	c.err = nil
	selfie := c.selfie
	settings := c.settings
	c.mu.Unlock()
	c.notify()

	story, err := c.generator.WriteScript(ctx, selfie, settings)
	if err != nil {
		c.mu.Lock()
		c.state = data.StateConfig
		c.err = err
		c.mu.Unlock()
		c.notify()
		return err
	}

	c.mu.Lock()
	c.story = story.Clone()
	c.state = data.StateViewing
	c.mu.Unlock()
	c.notify()

	return c.generator.RenderPages(ctx, story, selfie, func(index int, page data.Page) {
		c.mu.Lock()
		if c.story == nil || c.story.ID != story.ID || index >= len(c.story.Pages) {
			c.mu.Unlock()
			return
		}
		c.story.Pages[index] = page
		c.mu.Unlock()
		c.notify()
	})
}

// Open shows an already generated story.
func (c *ComicController) Open(story *data.Story) {
	c.mu.Lock()
	c.story = story.Clone()
	c.settings = story.Settings
	c.err = nil
	c.state = data.StateViewing
	c.mu.Unlock()
	c.notify()
}

// Reset goes back to the upload step, keeping the settings.
func (c *ComicController) Reset() {
	c.mu.Lock()
	c.state = data.StateUpload
	c.selfie = data.Image{}
	c.story = nil
	c.err = nil
	c.mu.Unlock()
	c.notify()
}

func (c *ComicController) notify() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

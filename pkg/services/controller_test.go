package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kerbaras/herogen/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(source *mockSource) (*ComicController, *Generator) {
	g := newTestGenerator(source, &mockRepository{})
	return NewComicController(g), g
}

func TestNewComicController(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	snap := c.Snapshot()
	assert.Equal(t, data.StateUpload, snap.State)
	assert.Equal(t, data.DefaultSettings(), snap.Settings)
	assert.Nil(t, snap.Story)
	assert.False(t, snap.HasImage)
}

func TestUploadMovesToConfig(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	require.NoError(t, c.UploadSelfie(testSelfie))

	snap := c.Snapshot()
	assert.Equal(t, data.StateConfig, snap.State)
	assert.True(t, snap.HasImage)
}

func TestUploadEmptyImage(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	assert.ErrorIs(t, c.UploadSelfie(data.Image{}), ErrNoSelfie)
	assert.Equal(t, data.StateUpload, c.Snapshot().State)
}

func TestUpdateSettingsOnlyInConfig(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	settings := data.DefaultSettings()
	settings.HeroName = "Byte Knight"

	assert.ErrorIs(t, c.UpdateSettings(settings), ErrInvalidState)

	require.NoError(t, c.UploadSelfie(testSelfie))
	require.NoError(t, c.UpdateSettings(settings))
	assert.Equal(t, "Byte Knight", c.Snapshot().Settings.HeroName)
}

func TestStartGenerationWithoutSelfie(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	assert.ErrorIs(t, c.StartGeneration(context.Background()), ErrNoSelfie)
}

func TestStartGenerationSuccess(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	var mu sync.Mutex
	var snaps []Snapshot
	c.OnChange(func(s Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	})

	require.NoError(t, c.UploadSelfie(testSelfie))
	require.NoError(t, c.StartGeneration(context.Background()))

	mu.Lock()
	defer mu.Unlock()

	var states []data.AppState
	var firstViewing *Snapshot
	for i := range snaps {
		states = append(states, snaps[i].State)
		if snaps[i].State == data.StateViewing && firstViewing == nil {
			firstViewing = &snaps[i]
		}
	}
	assert.Equal(t, []data.AppState{data.StateConfig, data.StateGenerating, data.StateViewing}, states[:3])

	require.NotNil(t, firstViewing)
	require.Len(t, firstViewing.Story.Pages, 3)
	for _, p := range firstViewing.Story.Pages {
		assert.True(t, p.IsLoading, "all pages start loading when viewing begins")
	}

	final := c.Snapshot()
	assert.Equal(t, data.StateViewing, final.State)
	assert.Equal(t, 3, final.Story.Rendered())
}

func TestStartGenerationScriptFailureReturnsToConfig(t *testing.T) {
	boom := errors.New("no script")
	c, g := newTestController(&mockSource{
		generateScriptFunc: func(context.Context, data.Image, data.Settings) (*data.Story, error) {
			return nil, boom
		},
	})
	defer g.Close()

	require.NoError(t, c.UploadSelfie(testSelfie))
	err := c.StartGeneration(context.Background())
	assert.ErrorIs(t, err, boom)

	snap := c.Snapshot()
	assert.Equal(t, data.StateConfig, snap.State)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Nil(t, snap.Story)
}

func TestStartGenerationPanelFailureKeepsGoing(t *testing.T) {
	source := &mockSource{
		generatePanelFunc: func(context.Context, string, data.Image, string) (data.Image, error) {
			return data.Image{}, errors.New("rate limited")
		},
	}
	c, g := newTestController(source)
	defer g.Close()

	require.NoError(t, c.UploadSelfie(testSelfie))
	require.NoError(t, c.StartGeneration(context.Background()))

	snap := c.Snapshot()
	assert.Len(t, source.calls(), 3)
	for _, p := range snap.Story.Pages {
		assert.Equal(t, DefaultPlaceholderURL, p.ImageURL)
		assert.False(t, p.IsLoading)
	}
}

func TestStartGenerationRejectsWhileGenerating(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	c, g := newTestController(&mockSource{
		generateScriptFunc: func(context.Context, data.Image, data.Settings) (*data.Story, error) {
			close(started)
			<-release
			return threePageScript(), nil
		},
	})
	defer g.Close()

	require.NoError(t, c.UploadSelfie(testSelfie))

	done := make(chan error, 1)
	go func() { done <- c.StartGeneration(context.Background()) }()
	<-started

	assert.Equal(t, data.StateGenerating, c.Snapshot().State)
	assert.ErrorIs(t, c.StartGeneration(context.Background()), ErrInvalidState)
	assert.ErrorIs(t, c.UploadSelfie(testSelfie), ErrInvalidState)

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not finish")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	require.NoError(t, c.UploadSelfie(testSelfie))
	require.NoError(t, c.StartGeneration(context.Background()))

	snap := c.Snapshot()
	snap.Story.Pages[0].Dialogue = "tampered"
	assert.NotEqual(t, "tampered", c.Snapshot().Story.Pages[0].Dialogue)
}

func TestOpenAndReset(t *testing.T) {
	c, g := newTestController(&mockSource{})
	defer g.Close()

	story := threePageScript()
	story.ID = "saved"
	story.Settings = data.DefaultSettings()
	c.Open(story)

	snap := c.Snapshot()
	assert.Equal(t, data.StateViewing, snap.State)
	assert.Equal(t, "saved", snap.Story.ID)

	c.Reset()
	snap = c.Snapshot()
	assert.Equal(t, data.StateUpload, snap.State)
	assert.Nil(t, snap.Story)
	assert.False(t, snap.HasImage)
}

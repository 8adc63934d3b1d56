package screens

import (
	"context"
	"io"

	"github.com/kerbaras/herogen/pkg/app/components"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/services"
)

// SwitchScreenMsg moves between the create flow and the library.
type SwitchScreenMsg struct {
	Screen string
}

type snapshotMsg services.Snapshot

type audioStatusMsg data.AudioStatus

type errMsg struct {
	err error
}

type generationDoneMsg struct {
	err error
}

type exportedMsg struct {
	path string
	err  error
}

type toggleDirectorMsg struct{}

type directorStartedMsg struct {
	cancel context.CancelFunc
	mic    io.Closer
	err    error
}

type libraryLoadedMsg struct {
	items []components.StoryListItem
	err   error
}

type storyDeletedMsg struct {
	err error
}

type submitSelfieMsg struct {
	path string
}

type submitSettingsMsg struct {
	settings data.Settings
}

type newComicMsg struct{}

type exportRequestMsg struct {
	story *data.Story
}

type openStoryMsg struct {
	story *data.Story
}

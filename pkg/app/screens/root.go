package screens

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/herogen/pkg/app/styles"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/services"
)

type screenType int

const (
	createView screenType = iota
	libraryView
)

type RootScreen struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	snapshots chan services.Snapshot
	audio     chan data.AudioStatus
	snapshot  services.Snapshot

	currentView screenType
	upload      *UploadScreen
	config      *ConfigScreen
	viewer      *ViewerScreen
	library     *LibraryScreen

	directorCancel context.CancelFunc
	mic            io.Closer

	width  int
	height int
}

func NewRootScreen(ctx context.Context, deps Deps) *RootScreen {
	ctx, cancel := context.WithCancel(ctx)
	r := &RootScreen{
		deps:      deps,
		ctx:       ctx,
		cancel:    cancel,
		snapshots: make(chan services.Snapshot, 64),
		audio:     make(chan data.AudioStatus, 16),
		upload:    NewUploadScreen(),
		config:    NewConfigScreen(),
		viewer:    NewViewerScreen(),
		library:   NewLibraryScreen(deps.Library),
	}

	deps.Controller.OnChange(func(s services.Snapshot) { r.snapshots <- s })
	r.snapshot = deps.Controller.Snapshot()
	r.config.SetSettings(r.snapshot.Settings)

	if deps.Director != nil {
		deps.Director.OnStatus(func(s data.AudioStatus) { r.audio <- s })
		r.viewer.audio = deps.Director.Status()
	} else {
		r.viewer.liveDisabled = true
	}
	return r
}

// Close stops running generations and the director.
func (r *RootScreen) Close() {
	r.cancel()
	r.releaseMic()
	if r.deps.Director != nil {
		_ = r.deps.Director.Disconnect()
	}
}

func (r *RootScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listenSnapshots(r.snapshots),
		listenProgress(r.deps.Generator),
		r.upload.Init(),
		r.viewer.Init(),
		r.library.Init(),
	}
	if r.deps.Director != nil {
		cmds = append(cmds, listenAudio(r.audio))
	}
	return tea.Batch(cmds...)
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.upload.Update(msg)
		r.config.Update(msg)
		r.viewer.Update(msg)
		r.library.Update(msg)
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, tea.Quit
		case "tab":
			if r.currentView == createView {
				r.currentView = libraryView
				return r, r.library.Init()
			}
			r.currentView = createView
			return r, nil
		}

	case snapshotMsg:
		prev := r.snapshot.State
		r.snapshot = services.Snapshot(msg)
		if r.snapshot.State == data.StateConfig && prev != data.StateConfig {
			r.config.SetSettings(r.snapshot.Settings)
		}
		r.config.err = r.snapshot.Err
		r.viewer.SetSnapshot(r.snapshot)
		return r, listenSnapshots(r.snapshots)

	case audioStatusMsg:
		r.viewer.audio = data.AudioStatus(msg)
		if r.deps.Director != nil && msg == audioStatusMsg(data.AudioError) {
			r.viewer.err = r.deps.Director.Err()
		}
		return r, listenAudio(r.audio)

	case services.GenerationProgress:
		r.viewer.progress.Update(msg)
		return r, listenProgress(r.deps.Generator)

	case generationDoneMsg:
		if msg.err != nil && r.snapshot.State == data.StateViewing {
			r.viewer.err = msg.err
		}
		return r, nil

	case SwitchScreenMsg:
		switch msg.Screen {
		case "library":
			r.currentView = libraryView
			return r, r.library.Init()
		case "create":
			r.currentView = createView
		}
		return r, nil

	case submitSelfieMsg:
		return r, uploadSelfie(r.deps.Controller, r.deps.Preparer, msg.path)

	case submitSettingsMsg:
		return r, startGeneration(r.ctx, r.deps.Controller, msg.settings)

	case newComicMsg:
		return r, resetController(r.deps.Controller)

	case exportRequestMsg:
		return r, exportStory(r.ctx, r.deps.Exporter, msg.story)

	case openStoryMsg:
		controller, story := r.deps.Controller, msg.story
		return r, func() tea.Msg {
			controller.Open(story)
			return SwitchScreenMsg{Screen: "create"}
		}

	case toggleDirectorMsg:
		return r, r.toggleDirector()

	case directorStartedMsg:
		if msg.err != nil {
			r.viewer.err = fmt.Errorf("director: %w", msg.err)
			return r, nil
		}
		r.releaseMic()
		r.directorCancel = msg.cancel
		r.mic = msg.mic
		return r, nil
	}

	return r, r.forward(msg)
}

func (r *RootScreen) toggleDirector() tea.Cmd {
	director := r.deps.Director
	if director == nil {
		return nil
	}
	switch director.Status() {
	case data.AudioDisconnected, data.AudioError:
		// The session may have ended on the server side with the mic still open.
		r.releaseMic()
		return startDirector(r.ctx, director, r.deps.OpenMic)
	default:
		cancel, mic := r.directorCancel, r.mic
		r.directorCancel, r.mic = nil, nil
		return stopDirector(director, cancel, mic)
	}
}

// releaseMic stops the stream from the last startDirector and closes its
// microphone.
func (r *RootScreen) releaseMic() {
	if r.directorCancel != nil {
		r.directorCancel()
		r.directorCancel = nil
	}
	if r.mic != nil {
		_ = r.mic.Close()
		r.mic = nil
	}
}

// forward hands msg to the screen that is on display.
func (r *RootScreen) forward(msg tea.Msg) tea.Cmd {
	if r.currentView == libraryView {
		_, cmd := r.library.Update(msg)
		return cmd
	}

	switch r.snapshot.State {
	case data.StateUpload:
		_, cmd := r.upload.Update(msg)
		return cmd
	case data.StateConfig:
		_, cmd := r.config.Update(msg)
		return cmd
	default:
		_, cmd := r.viewer.Update(msg)
		return cmd
	}
}

func (r *RootScreen) View() string {
	tabs := r.renderTabs()

	var content string
	if r.currentView == libraryView {
		content = r.library.View()
	} else {
		switch r.snapshot.State {
		case data.StateUpload:
			content = r.upload.View()
		case data.StateConfig:
			content = r.config.View()
		default:
			content = r.viewer.View()
		}
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderTabs() string {
	createTab := "Create"
	libraryTab := "Library"

	if r.currentView == createView {
		createTab = styles.ActiveTabStyle.Render(createTab)
		libraryTab = styles.InactiveTabStyle.Render(libraryTab)
	} else {
		createTab = styles.InactiveTabStyle.Render(createTab)
		libraryTab = styles.ActiveTabStyle.Render(libraryTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, createTab, libraryTab)
}

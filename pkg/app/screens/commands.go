package screens

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/integrations"
	"github.com/kerbaras/herogen/pkg/live"
	"github.com/kerbaras/herogen/pkg/services"
)

func listenSnapshots(ch <-chan services.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func listenAudio(ch <-chan data.AudioStatus) tea.Cmd {
	return func() tea.Msg {
		return audioStatusMsg(<-ch)
	}
}

func listenProgress(g *services.Generator) tea.Cmd {
	if g == nil {
		return nil
	}
	return func() tea.Msg {
		return <-g.GetProgressChannel()
	}
}

// LoadSelfie reads an image file and shrinks it for upload.
func LoadSelfie(path string, preparer ReferencePreparer) (data.Image, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return data.Image{}, fmt.Errorf("enter the path to a photo")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return data.Image{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	img := data.Image{Data: content, MIMEType: http.DetectContentType(content)}
	if preparer == nil {
		return img, nil
	}
	return preparer.PrepareReference(img)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func uploadSelfie(controller *services.ComicController, preparer ReferencePreparer, path string) tea.Cmd {
	return func() tea.Msg {
		img, err := LoadSelfie(path, preparer)
		if err != nil {
			return errMsg{err}
		}
		if err := controller.UploadSelfie(img); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func startGeneration(ctx context.Context, controller *services.ComicController, settings data.Settings) tea.Cmd {
	return func() tea.Msg {
		if err := controller.UpdateSettings(settings); err != nil {
			return generationDoneMsg{err}
		}
		return generationDoneMsg{controller.StartGeneration(ctx)}
	}
}

func resetController(controller *services.ComicController) tea.Cmd {
	return func() tea.Msg {
		controller.Reset()
		return nil
	}
}

func exportStory(ctx context.Context, exporter integrations.Exporter, story *data.Story) tea.Cmd {
	return func() tea.Msg {
		if exporter == nil {
			return exportedMsg{err: fmt.Errorf("export is not configured")}
		}
		if story == nil {
			return exportedMsg{err: fmt.Errorf("no story to export")}
		}
		path, err := exporter.CreateEPub(ctx, story)
		return exportedMsg{path: path, err: err}
	}
}

// startDirector connects the director and streams the microphone into it
// until the returned cancel func is called.
func startDirector(parent context.Context, director *live.Director, openMic func() (io.ReadCloser, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		if err := director.Connect(ctx); err != nil {
			cancel()
			return directorStartedMsg{err: err}
		}
		if openMic == nil {
			return directorStartedMsg{cancel: cancel}
		}

		mic, err := openMic()
		if err != nil {
			cancel()
			_ = director.Disconnect()
			return directorStartedMsg{err: err}
		}
		go func() {
			_ = director.StreamFrom(ctx, mic)
		}()
		return directorStartedMsg{cancel: cancel, mic: mic}
	}
}

func stopDirector(director *live.Director, cancel context.CancelFunc, mic io.Closer) tea.Cmd {
	return func() tea.Msg {
		if cancel != nil {
			cancel()
		}
		if mic != nil {
			_ = mic.Close()
		}
		if err := director.Disconnect(); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/services"
)

type storySummary struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	HeroName  string        `json:"heroName"`
	Settings  data.Settings `json:"settings"`
	CreatedAt string        `json:"createdAt"`
}

// handleCreate takes a multipart selfie plus settings, writes the script and
// answers with the story while panels render in the background.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	selfie, err := readSelfie(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.prepare != nil {
		if selfie, err = s.prepare.PrepareReference(selfie); err != nil {
			writeError(w, http.StatusBadRequest, "selfie is not a readable image")
			return
		}
	}

	controller := services.NewComicController(s.generator)
	if err := controller.UploadSelfie(selfie); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := controller.UpdateSettings(settingsFromForm(r)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ready := make(chan services.Snapshot, 1)
	controller.OnChange(func(snap services.Snapshot) {
		if snap.State != data.StateViewing {
			return
		}
		select {
		case ready <- snap:
		default:
		}
	})

	done := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := controller.StartGeneration(s.ctx)
		if err != nil && !errors.Is(err, services.ErrNoSelfie) {
			s.log.Warn().Err(err).Msg("generation ended with error")
		}
		done <- err
	}()

	select {
	case snap := <-ready:
		writeJSON(w, http.StatusAccepted, snap.Story)
	case err := <-done:
		select {
		case snap := <-ready:
			writeJSON(w, http.StatusAccepted, snap.Story)
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
	case <-r.Context().Done():
	}
}

func readSelfie(r *http.Request) (data.Image, error) {
	file, _, err := r.FormFile("selfie")
	if err != nil {
		return data.Image{}, errors.New("missing selfie file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return data.Image{}, errors.New("failed to read selfie")
	}
	if len(content) == 0 {
		return data.Image{}, services.ErrNoSelfie
	}
	return data.Image{Data: content, MIMEType: http.DetectContentType(content)}, nil
}

func settingsFromForm(r *http.Request) data.Settings {
	settings := data.DefaultSettings()
	fields := map[string]*string{
		"heroName":   &settings.HeroName,
		"superpower": &settings.Superpower,
		"villain":    &settings.Villain,
		"setting":    &settings.Setting,
		"artStyle":   &settings.ArtStyle,
	}
	for name, dst := range fields {
		if v := r.FormValue(name); v != "" {
			*dst = v
		}
	}
	return settings
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	stories, err := s.library.ListStories()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list stories")
		writeError(w, http.StatusInternalServerError, "failed to list stories")
		return
	}

	out := make([]storySummary, 0, len(stories))
	for _, story := range stories {
		out = append(out, storySummary{
			ID:        story.ID,
			Title:     story.Title,
			HeroName:  story.HeroName,
			Settings:  story.Settings,
			CreatedAt: story.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) loadStory(w http.ResponseWriter, r *http.Request) (*data.Story, bool) {
	story, err := s.library.GetStory(r.PathValue("id"))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load story")
		writeError(w, http.StatusInternalServerError, "failed to load story")
		return nil, false
	}
	if story == nil {
		writeError(w, http.StatusNotFound, "story not found")
		return nil, false
	}
	return story, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	story, ok := s.loadStory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}
	story, ok := s.loadStory(w, r)
	if !ok {
		return
	}
	if story.Rendered() == 0 {
		writeError(w, http.StatusConflict, "no pages have been drawn yet")
		return
	}

	path, err := s.exporter.CreateEPub(r.Context(), story)
	if err != nil {
		s.log.Error().Err(err).Str("story", story.ID).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/epub+zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	_, _ = io.Copy(w, f)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteStory(r.PathValue("id")); err != nil {
		s.log.Error().Err(err).Msg("failed to delete story")
		writeError(w, http.StatusInternalServerError, "failed to delete story")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

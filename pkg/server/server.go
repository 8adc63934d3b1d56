// Package server exposes the comic generator over HTTP and bridges browser
// microphones to the live director over a websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/integrations"
	"github.com/kerbaras/herogen/pkg/live"
	"github.com/kerbaras/herogen/pkg/services"
	"github.com/rs/zerolog"
)

const maxUploadBytes = 10 << 20

// Library is the read side of the story store.
type Library interface {
	ListStories() ([]*data.Story, error)
	GetStory(id string) (*data.Story, error)
	DeleteStory(id string) error
}

type ReferencePreparer interface {
	PrepareReference(img data.Image) (data.Image, error)
}

// DirectorFactory builds a director that plays into sink.
type DirectorFactory func(sink live.Sink) *live.Director

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.log = logger
	}
}

func WithExporter(exporter integrations.Exporter) Option {
	return func(s *Server) {
		s.exporter = exporter
	}
}

func WithReferencePreparer(p ReferencePreparer) Option {
	return func(s *Server) {
		s.prepare = p
	}
}

func WithDirector(factory DirectorFactory) Option {
	return func(s *Server) {
		s.newDirector = factory
	}
}

type Server struct {
	generator   *services.Generator
	library     Library
	exporter    integrations.Exporter
	prepare     ReferencePreparer
	newDirector DirectorFactory
	log         zerolog.Logger
	upgrader    websocket.Upgrader

	// ctx outlives requests so panels keep rendering after POST returns.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(generator *services.Generator, library Library, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		generator: generator,
		library:   library,
		prepare:   integrations.NewImageProcessor(),
		log:       zerolog.Nop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/comics", s.handleCreate)
	mux.HandleFunc("GET /api/comics", s.handleList)
	mux.HandleFunc("GET /api/comics/{id}", s.handleGet)
	mux.HandleFunc("GET /api/comics/{id}/epub", s.handleExport)
	mux.HandleFunc("DELETE /api/comics/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/live", s.handleLive)
	return s.logRequests(mux)
}

// ListenAndServe runs until ctx is done, then drains in-flight requests and
// stops background generations.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close cancels background generations and waits for them.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

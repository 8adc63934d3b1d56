package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/sources"
	"github.com/kerbaras/herogen/pkg/utils"
	"github.com/rs/zerolog"
)

const (
	DefaultPlaceholderURL = "https://picsum.photos/800/600?error"
	DefaultPageInterval   = 500 * time.Millisecond
)

// GenerationProgress represents the progress of a comic generation
type GenerationProgress struct {
	StoryID     string
	PageNumber  int
	CurrentPage int
	TotalPages  int
	Status      string // "scripting", "scripted", "drawing", "drawn", "placeholder", "complete", "error"
	Error       error
}

// Repository is the persistence the generator needs
type Repository interface {
	SaveStory(story *data.Story) error
	UpdatePage(storyID string, page data.Page) error
}

type GeneratorOption func(*Generator)

// WithPlaceholderURL sets the image URL used when a panel fails to render.
func WithPlaceholderURL(url string) GeneratorOption {
	return func(g *Generator) {
		if url != "" {
			g.placeholderURL = url
		}
	}
}

// WithPageInterval spaces out panel requests to stay under rate limits.
func WithPageInterval(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.pageInterval = d
		}
	}
}

func WithLogger(logger zerolog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.log = logger
	}
}

// Generator runs the comic pipeline: one script call, then one panel call per page
type Generator struct {
	source         sources.Source
	repo           Repository
	placeholderURL string
	pageInterval   time.Duration
	rateLimiter    *time.Ticker
	progressChan   chan GenerationProgress
	log            zerolog.Logger
	now            func() time.Time
}

// NewGenerator creates a new Generator instance
func NewGenerator(source sources.Source, repo Repository, opts ...GeneratorOption) *Generator {
	g := &Generator{
		source:         source,
		repo:           repo,
		placeholderURL: DefaultPlaceholderURL,
		pageInterval:   DefaultPageInterval,
		progressChan:   make(chan GenerationProgress, 100),
		log:            zerolog.Nop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.rateLimiter = time.NewTicker(g.pageInterval)
	return g
}

// GetProgressChannel returns the channel for receiving generation progress updates
func (g *Generator) GetProgressChannel() <-chan GenerationProgress {
	return g.progressChan
}

// Generate writes the script and then renders every page.
func (g *Generator) Generate(ctx context.Context, selfie data.Image, settings data.Settings) (*data.Story, error) {
	story, err := g.WriteScript(ctx, selfie, settings)
	if err != nil {
		return nil, err
	}
	if err := g.RenderPages(ctx, story, selfie, nil); err != nil {
		return story, err
	}
	return story, nil
}

// WriteScript generates and stores the script. Every page comes back loading.
func (g *Generator) WriteScript(ctx context.Context, selfie data.Image, settings data.Settings) (*data.Story, error) {
	if selfie.Empty() {
		return nil, ErrNoSelfie
	}

	g.sendProgress(GenerationProgress{Status: "scripting"})

	story, err := g.source.GenerateScript(ctx, selfie, settings)
	if err != nil {
		g.log.Error().Err(err).Msg("script generation failed")
		g.sendProgress(GenerationProgress{Status: "error", Error: err})
		return nil, fmt.Errorf("failed to generate script: %w", err)
	}

	story.ID = uuid.NewString()
	story.Settings = settings
	story.CreatedAt = g.now().UTC()
	for i := range story.Pages {
		story.Pages[i].IsLoading = true
		story.Pages[i].ImageURL = ""
	}

	if err := g.repo.SaveStory(story); err != nil {
		return nil, fmt.Errorf("failed to save story: %w", err)
	}

	g.log.Info().Str("story", story.ID).Str("title", story.Title).Int("pages", len(story.Pages)).Msg("script ready")
	g.sendProgress(GenerationProgress{
		StoryID:    story.ID,
		TotalPages: len(story.Pages),
		Status:     "scripted",
	})

	return story, nil
}

// RenderPages draws each page in order, one request at a time. A failed panel
// gets the placeholder image and the loop moves on. onPage, if set, receives
// every finished page.
func (g *Generator) RenderPages(ctx context.Context, story *data.Story, selfie data.Image, onPage func(index int, page data.Page)) error {
	if story == nil {
		return errors.New("story cannot be nil")
	}

	total := len(story.Pages)
	for i := range story.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.rateLimiter.C:
		}

		page := story.Pages[i]
		g.sendProgress(GenerationProgress{
			StoryID:     story.ID,
			PageNumber:  page.PageNumber,
			CurrentPage: i + 1,
			TotalPages:  total,
			Status:      "drawing",
		})

		status := "drawn"
		img, err := g.source.GeneratePanel(ctx, page.PanelDescription, selfie, story.Settings.ArtStyle)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.log.Warn().Err(err).Str("story", story.ID).Int("page", page.PageNumber).Msg("panel failed, using placeholder")
			page.ImageURL = g.placeholderURL
			status = "placeholder"
		} else {
			page.ImageURL = utils.DataURL(img)
		}
		page.IsLoading = false
		story.Pages[i] = page

		if err := g.repo.UpdatePage(story.ID, page); err != nil {
			g.log.Error().Err(err).Int("page", page.PageNumber).Msg("failed to store page")
		}

		if onPage != nil {
			onPage(i, page)
		}

		g.sendProgress(GenerationProgress{
			StoryID:     story.ID,
			PageNumber:  page.PageNumber,
			CurrentPage: i + 1,
			TotalPages:  total,
			Status:      status,
			Error:       err,
		})
	}

	g.sendProgress(GenerationProgress{
		StoryID:     story.ID,
		CurrentPage: total,
		TotalPages:  total,
		Status:      "complete",
	})
	return nil
}

// sendProgress sends a progress update (non-blocking)
func (g *Generator) sendProgress(progress GenerationProgress) {
	select {
	case g.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close stops the rate limiter.
func (g *Generator) Close() {
	g.rateLimiter.Stop()
}

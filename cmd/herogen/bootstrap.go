package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/kerbaras/herogen/pkg/config"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/integrations"
	"github.com/kerbaras/herogen/pkg/live"
	"github.com/kerbaras/herogen/pkg/logging"
	"github.com/kerbaras/herogen/pkg/services"
	"github.com/kerbaras/herogen/pkg/sources"
	"github.com/kerbaras/herogen/pkg/utils"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

type bootOptions struct {
	// console mirrors logs to stderr. The TUI leaves it off.
	console bool
	// gemini requires an API key and builds the generator.
	gemini bool
}

// runtime holds everything a command needs, built from the loaded config.
type runtime struct {
	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer

	repo      *data.Repository
	client    *genai.Client
	generator *services.Generator
	exporter  *integrations.EPubBuilder
	processor *integrations.ImageProcessor
}

func bootstrap(ctx context.Context, opts bootOptions) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: opts.console,
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: logger, logCloser: closer}

	if opts.gemini {
		if err := cfg.Validate(); err != nil {
			rt.Close()
			return nil, err
		}
	}

	rt.repo, err = data.NewDuckDBRepository(cfg.Storage.DBPath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	rt.processor = integrations.NewImageProcessor()
	if size := cfg.Generation.ReferenceSize; size > 0 {
		rt.processor.MaxWidth = size
		rt.processor.MaxHeight = size
	}

	rt.exporter = integrations.NewEPubBuilder(cfg.Storage.OutputDir, utils.NewImageLoader(nil)).
		WithLogger(logging.Component(logger, "epub"))

	if opts.gemini {
		rt.client, err = sources.NewClient(ctx, cfg.Gemini.APIKey)
		if err != nil {
			rt.Close()
			return nil, err
		}
		source := sources.NewGemini(rt.client,
			sources.WithScriptModel(cfg.Gemini.ScriptModel),
			sources.WithImageModel(cfg.Gemini.ImageModel),
		)
		rt.generator = services.NewGenerator(source, rt.repo,
			services.WithPlaceholderURL(cfg.Generation.PlaceholderURL),
			services.WithPageInterval(cfg.Generation.PageInterval),
			services.WithLogger(logging.Component(logger, "generator")),
		)
	}

	logger.Debug().Str("db", cfg.Storage.DBPath).Bool("gemini", opts.gemini).Msg("runtime ready")
	return rt, nil
}

// director builds a live director that plays into sink.
func (rt *runtime) director(sink live.Sink) *live.Director {
	return live.NewDirector(
		live.GeminiDialer(rt.client),
		live.Config{Model: rt.cfg.Live.Model, Voice: rt.cfg.Live.Voice},
		live.WithSink(sink),
		live.WithLogger(logging.Component(rt.log, "director")),
	)
}

func (rt *runtime) Close() {
	if rt.generator != nil {
		rt.generator.Close()
	}
	if rt.repo != nil {
		_ = rt.repo.Close()
	}
	if rt.logCloser != nil {
		_ = rt.logCloser.Close()
	}
}

// findStory resolves a story by id or, failing that, by title.
func (rt *runtime) findStory(ref string) (*data.Story, error) {
	story, err := rt.repo.GetStory(ref)
	if err != nil {
		return nil, err
	}
	if story != nil {
		return story, nil
	}
	story, err = rt.repo.FindStoryByTitle(ref)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, fmt.Errorf("no story matches %q", ref)
	}
	return story, nil
}

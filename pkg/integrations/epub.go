package integrations

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/utils"
	"github.com/rs/zerolog"
)

type EPubBuilder struct {
	outputDir string
	images    ImageSource
	log       zerolog.Logger
}

func NewEPubBuilder(outputDir string, images ImageSource) *EPubBuilder {
	if outputDir == "" {
		outputDir, _ = os.MkdirTemp("", "herogen-epub-*")
	}
	if images == nil {
		images = utils.NewImageLoader(nil)
	}
	return &EPubBuilder{outputDir: outputDir, images: images, log: zerolog.Nop()}
}

func (p *EPubBuilder) WithLogger(logger zerolog.Logger) *EPubBuilder {
	p.log = logger
	return p
}

// CreateEPub compiles a story into a single EPub file, one section per page.
// Pages whose image is missing or cannot be loaded are left out.
func (p *EPubBuilder) CreateEPub(ctx context.Context, story *data.Story) (string, error) {
	if story == nil || len(story.Pages) == 0 {
		return "", fmt.Errorf("no pages to compile")
	}

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	title := story.Title
	if title == "" {
		title = "Untitled Comic"
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}

	author := story.Settings.HeroName
	if author == "" {
		author = story.HeroName
	}
	e.SetAuthor(author)
	e.SetDescription(describe(story))
	e.SetLang("en")

	added := 0
	for _, page := range story.Pages {
		if page.IsLoading || page.ImageURL == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		img, err := p.images.Load(ctx, page.ImageURL)
		if err != nil {
			p.log.Warn().Err(err).Int("page", page.PageNumber).Msg("skipping page without image")
			continue
		}

		if err := p.addPage(e, page, img); err != nil {
			return "", fmt.Errorf("failed to add page %d: %w", page.PageNumber, err)
		}
		added++
	}

	if added == 0 {
		return "", fmt.Errorf("no rendered pages to compile")
	}

	outputPath := filepath.Join(p.outputDir, sanitizeFilename(title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

// addPage embeds the panel image and its dialogue caption as one section
func (p *EPubBuilder) addPage(e *epub.Epub, page data.Page, img data.Image) error {
	filename := fmt.Sprintf("page-%03d%s", page.PageNumber, extensionFor(img.MIMEType))

	internalPath, err := e.AddImage(utils.DataURL(img), filename)
	if err != nil {
		return fmt.Errorf("failed to add image: %w", err)
	}

	pageTitle := fmt.Sprintf("Page %d", page.PageNumber)

	var body strings.Builder
	body.WriteString(fmt.Sprintf(
		`<div class="page"><img src="%s" alt="%s" style="width:100%%;height:auto;"/></div>%s`,
		internalPath, html.EscapeString(pageTitle), "\n",
	))
	if page.Dialogue != "" {
		body.WriteString(fmt.Sprintf(`<p class="dialogue">%s</p>%s`, html.EscapeString(page.Dialogue), "\n"))
	}

	_, err = e.AddSection(body.String(), pageTitle, "", "")
	if err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}
	return nil
}

func describe(story *data.Story) string {
	s := story.Settings
	parts := []string{}
	if s.HeroName != "" {
		parts = append(parts, "Starring "+s.HeroName)
	}
	if s.Villain != "" {
		parts = append(parts, "against "+s.Villain)
	}
	if s.Setting != "" {
		parts = append(parts, "in "+s.Setting)
	}
	if len(parts) == 0 {
		return story.Title
	}
	return strings.Join(parts, " ") + "."
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		return "comic"
	}
	return result
}

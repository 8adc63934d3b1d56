package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kerbaras/herogen/pkg/data"
	"google.golang.org/genai"
)

const (
	DefaultScriptModel = "gemini-2.5-flash"
	DefaultImageModel  = "gemini-2.5-flash-image"

	panelTemperature = 0.7
)

var (
	ErrNoScript = errors.New("no script generated")
	ErrNoImage  = errors.New("no image found in response")
)

// contentGenerator is the slice of *genai.Models the adapter needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	models      contentGenerator
	scriptModel string
	imageModel  string
}

type GeminiOption func(*Gemini)

func WithScriptModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.scriptModel = model
		}
	}
}

func WithImageModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.imageModel = model
		}
	}
}

// NewGemini builds a Source backed by the Gemini API.
func NewGemini(client *genai.Client, opts ...GeminiOption) *Gemini {
	return newGemini(client.Models, opts...)
}

func newGemini(models contentGenerator, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		models:      models,
		scriptModel: DefaultScriptModel,
		imageModel:  DefaultImageModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewClient opens a Gemini API client for the given key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

func (g *Gemini) GenerateScript(ctx context.Context, selfie data.Image, settings data.Settings) (*data.Story, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(selfie.Data, mimeTypeOf(selfie)),
			genai.NewPartFromText(scriptPrompt(settings)),
		}, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.scriptModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   scriptSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("script request failed: %w", err)
	}

	return parseScript(resp.Text())
}

func (g *Gemini) GeneratePanel(ctx context.Context, description string, reference data.Image, artStyle string) (data.Image, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(reference.Data, mimeTypeOf(reference)),
			genai.NewPartFromText(panelPrompt(description, artStyle)),
		}, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.imageModel, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](panelTemperature),
	})
	if err != nil {
		return data.Image{}, fmt.Errorf("panel request failed: %w", err)
	}

	return firstInlineImage(resp)
}

func scriptSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":    {Type: genai.TypeString},
			"heroName": {Type: genai.TypeString},
			"pages": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"pageNumber":       {Type: genai.TypeInteger},
						"panelDescription": {Type: genai.TypeString},
						"dialogue":         {Type: genai.TypeString},
					},
					Required: []string{"pageNumber", "panelDescription", "dialogue"},
				},
			},
		},
		Required: []string{"title", "heroName", "pages"},
	}
}

type scriptResponse struct {
	Title    string `json:"title"`
	HeroName string `json:"heroName"`
	Pages    []struct {
		PageNumber       int    `json:"pageNumber"`
		PanelDescription string `json:"panelDescription"`
		Dialogue         string `json:"dialogue"`
	} `json:"pages"`
}

// parseScript decodes the structured response. Pages keep the model's order
// and are renumbered from 1 so numbering is always unique.
func parseScript(text string) (*data.Story, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoScript
	}

	var script scriptResponse
	if err := json.Unmarshal([]byte(text), &script); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	if len(script.Pages) == 0 {
		return nil, ErrNoScript
	}

	story := &data.Story{
		Title:    script.Title,
		HeroName: script.HeroName,
		Pages:    make([]data.Page, len(script.Pages)),
	}
	for i, p := range script.Pages {
		story.Pages[i] = data.Page{
			PageNumber:       i + 1,
			PanelDescription: p.PanelDescription,
			Dialogue:         p.Dialogue,
			IsLoading:        true,
		}
	}
	return story, nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) (data.Image, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return data.Image{}, ErrNoImage
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return data.Image{Data: part.InlineData.Data, MIMEType: mimeType}, nil
	}
	return data.Image{}, ErrNoImage
}

func mimeTypeOf(img data.Image) string {
	if img.MIMEType == "" {
		return "image/jpeg"
	}
	return img.MIMEType
}

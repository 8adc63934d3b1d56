package sources

import (
	"context"

	"github.com/kerbaras/herogen/pkg/data"
)

// Source is the generative service that writes and draws the comic.
type Source interface {
	GenerateScript(ctx context.Context, selfie data.Image, settings data.Settings) (*data.Story, error)
	GeneratePanel(ctx context.Context, description string, reference data.Image, artStyle string) (data.Image, error)
}

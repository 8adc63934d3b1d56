package integrations

import (
	"context"

	"github.com/kerbaras/herogen/pkg/data"
)

// Exporter turns a finished story into a file on disk.
type Exporter interface {
	CreateEPub(ctx context.Context, story *data.Story) (string, error)
}

// ImageSource resolves a page image URL to its bytes.
type ImageSource interface {
	Load(ctx context.Context, url string) (data.Image, error)
}

package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kerbaras/herogen/pkg/data"
	"github.com/vincent-petithory/dataurl"
)

// maxImageBytes caps remote downloads.
const maxImageBytes = 20 << 20

type ImageLoader struct {
	client *http.Client
}

func NewImageLoader(client *http.Client) *ImageLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &ImageLoader{client: client}
}

// DataURL encodes an image as a base64 data: URL.
func DataURL(img data.Image) string {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return dataurl.New(img.Data, mimeType).String()
}

func IsDataURL(url string) bool {
	return strings.HasPrefix(url, "data:")
}

// Load resolves a page image URL, decoding data: URLs in place and fetching
// anything else over HTTP.
func (l *ImageLoader) Load(ctx context.Context, url string) (data.Image, error) {
	if url == "" {
		return data.Image{}, fmt.Errorf("empty image URL")
	}

	if IsDataURL(url) {
		du, err := dataurl.DecodeString(url)
		if err != nil {
			return data.Image{}, fmt.Errorf("failed to decode data URL: %w", err)
		}
		return data.Image{Data: du.Data, MIMEType: du.ContentType()}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return data.Image{}, err
	}
	req.Header.Set("Accept", "image/*")
	resp, err := l.client.Do(req)
	if err != nil {
		return data.Image{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return data.Image{}, fmt.Errorf("bad status: %s", resp.Status)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return data.Image{}, fmt.Errorf("failed to read image content: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	return data.Image{Data: content, MIMEType: contentType}, nil
}

package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/kerbaras/herogen/pkg/data"
)

const (
	DefaultReferenceSize = 1024
	DefaultJPEGQuality   = 90

	// MaxDecodeSide caps either side of an uploaded image before any pixels
	// are allocated.
	MaxDecodeSide = 8192
)

// ImageProcessor shrinks the uploaded selfie before it is sent with every
// script and panel request.
type ImageProcessor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{
		MaxWidth:  DefaultReferenceSize,
		MaxHeight: DefaultReferenceSize,
		Quality:   DefaultJPEGQuality,
	}
}

// PrepareReference decodes the image, scales it to fit the bounds keeping
// the aspect ratio, and re-encodes it as JPEG. Small JPEG and PNG inputs
// are passed through untouched.
func (p *ImageProcessor) PrepareReference(img data.Image) (data.Image, error) {
	if img.Empty() {
		return data.Image{}, fmt.Errorf("empty image")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return data.Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width > MaxDecodeSide || cfg.Height > MaxDecodeSide {
		return data.Image{}, fmt.Errorf("image too large: %dx%d exceeds %dx%d", cfg.Width, cfg.Height, MaxDecodeSide, MaxDecodeSide)
	}

	decoded, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return data.Image{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := decoded.Bounds()
	width, height := p.calculateDimensions(bounds.Dx(), bounds.Dy())

	if width == bounds.Dx() && height == bounds.Dy() {
		switch format {
		case "jpeg":
			return data.Image{Data: img.Data, MIMEType: "image/jpeg"}, nil
		case "png":
			return data.Image{Data: img.Data, MIMEType: "image/png"}, nil
		}
	}

	encoded, err := p.encode(p.resize(decoded, width, height))
	if err != nil {
		return data.Image{}, err
	}
	return data.Image{Data: encoded, MIMEType: "image/jpeg"}, nil
}

// calculateDimensions calculates the new dimensions while maintaining aspect ratio
func (p *ImageProcessor) calculateDimensions(width, height int) (int, int) {
	if width <= p.MaxWidth && height <= p.MaxHeight {
		return width, height
	}

	widthScale := float64(p.MaxWidth) / float64(width)
	heightScale := float64(p.MaxHeight) / float64(height)

	scale := widthScale
	if heightScale < widthScale {
		scale = heightScale
	}

	newWidth := max(1, int(float64(width)*scale))
	newHeight := max(1, int(float64(height)*scale))

	return newWidth, newHeight
}

// resize draws onto a white canvas so transparent areas don't turn black in JPEG
func (p *ImageProcessor) resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

func (p *ImageProcessor) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

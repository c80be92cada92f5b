package insight

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextBox is one OCR detection with its rendered height in pixels.
type TextBox struct {
	Text   string
	Height float64
}

// OCR recognises text in an image file.
type OCR interface {
	ReadText(ctx context.Context, path string) ([]TextBox, error)
}

// Captioner describes an image in one sentence.
type Captioner interface {
	Caption(ctx context.Context, path string) (string, error)
}

const defaultTitleRatio = 0.8

// ImageBackend combines prominent OCR lines with a caption. Both
// capabilities are optional and shared; without a Captioner the caption
// describes the image format and dimensions.
type ImageBackend struct {
	OCR       *Lazy[OCR]
	Captioner *Lazy[Captioner]
	// TitleRatio keeps OCR lines at least this fraction of the tallest one.
	TitleRatio float64
}

func (b ImageBackend) Extract(ctx context.Context, path string) (*Insight, error) {
	format, w, h, err := imageHeader(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	if b.OCR != nil {
		ocr, err := b.OCR.Get()
		if err != nil {
			return nil, fmt.Errorf("ocr unavailable: %w", err)
		}
		boxes, err := ocr.ReadText(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
		lines = titleLines(boxes, b.ratio())
	}

	caption := fmt.Sprintf("%s image %dx%d", strings.ToUpper(format), w, h)
	if b.Captioner != nil {
		// A failed caption keeps the OCR lines and the format description.
		if c, err := b.Captioner.Get(); err == nil {
			if text, err := c.Caption(ctx, path); err == nil && collapseSpace(text) != "" {
				caption = collapseSpace(text)
			}
		}
	}

	highlights := append([]string(nil), lines...)
	if !slices.Contains(highlights, caption) {
		highlights = append(highlights, caption)
	}
	return New(highlights, caption), nil
}

func (b ImageBackend) ratio() float64 {
	if b.TitleRatio <= 0 || b.TitleRatio > 1 {
		return defaultTitleRatio
	}
	return b.TitleRatio
}

func imageHeader(path string) (string, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, 0, err
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return format, cfg.Width, cfg.Height, nil
}

// titleLines keeps detections whose height is at least ratio of the tallest.
func titleLines(boxes []TextBox, ratio float64) []string {
	var tallest float64
	for _, b := range boxes {
		tallest = max(tallest, b.Height)
	}
	if tallest <= 0 {
		return nil
	}
	threshold := tallest * ratio
	var out []string
	for _, b := range boxes {
		if strings.TrimSpace(b.Text) == "" || b.Height < threshold {
			continue
		}
		out = append(out, b.Text)
	}
	return uniqueLines(out)
}

package insight

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeOCR []TextBox

func (f fakeOCR) ReadText(context.Context, string) ([]TextBox, error) { return f, nil }

type fakeCaptioner struct {
	text string
	err  error
}

func (f fakeCaptioner) Caption(context.Context, string) (string, error) { return f.text, f.err }

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
	return p
}

func TestImageBackendHeaderOnly(t *testing.T) {
	p := writePNG(t, t.TempDir(), "shot.png", 4, 3)
	in, err := ImageBackend{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, "PNG image 4x3", in.Caption)
	require.Equal(t, []string{"PNG image 4x3"}, in.Highlights)
}

func TestImageBackendOCRAndCaption(t *testing.T) {
	p := writePNG(t, t.TempDir(), "poster.png", 8, 8)
	b := ImageBackend{
		OCR: NewLazy(func() (OCR, error) {
			return fakeOCR{{"Grand Opening", 20}, {"fine print", 5}, {"Grand Opening", 19}, {"Saturday", 16}}, nil
		}),
		Captioner: NewLazy(func() (Captioner, error) {
			return fakeCaptioner{text: " a poster  for a shop "}, nil
		}),
	}
	in, err := b.Extract(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, []string{"Grand Opening", "Saturday", "a poster for a shop"}, in.Highlights)
	require.Equal(t, "a poster for a shop", in.Caption)
}

func TestImageBackendCaptionFailureKeepsDescription(t *testing.T) {
	p := writePNG(t, t.TempDir(), "a.png", 2, 2)
	b := ImageBackend{Captioner: NewLazy(func() (Captioner, error) {
		return fakeCaptioner{err: errors.New("model offline")}, nil
	})}
	in, err := b.Extract(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, "PNG image 2x2", in.Caption)
}

func TestImageBackendUnavailableOCR(t *testing.T) {
	p := writePNG(t, t.TempDir(), "a.png", 2, 2)
	b := ImageBackend{OCR: NewLazy(func() (OCR, error) { return nil, errors.New("no model") })}
	_, err := b.Extract(context.Background(), p)
	require.Error(t, err)
}

func TestImageBackendRejectsGarbage(t *testing.T) {
	p := writeFile(t, t.TempDir(), "fake.png", "not an image")
	_, err := ImageBackend{}.Extract(context.Background(), p)
	require.Error(t, err)
}

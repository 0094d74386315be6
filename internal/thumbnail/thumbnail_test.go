package thumbnail

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenggwsx/SlashVault/internal/config"
)

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestImageThumbnailIsSquare(t *testing.T) {
	src := filepath.Join(t.TempDir(), "beach.png")
	writePNG(t, src, solid(640, 300))
	thumbs := filepath.Join(t.TempDir(), "vault_thumbs")

	g := NewGenerator(thumbs, config.ThumbnailConfig{Size: 256})
	path, err := g.Image(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(thumbs, "beach.png.png"), path)
	w, h := decodeSize(t, path)
	assert.Equal(t, 256, w)
	assert.Equal(t, 256, h)
}

func TestImageThumbnailRejectsGarbage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not a picture"), 0o600))
	thumbs := filepath.Join(t.TempDir(), "thumbs")

	g := NewGenerator(thumbs, config.ThumbnailConfig{})
	_, err := g.Image(context.Background(), src)
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(thumbs, "broken.jpg.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestVideoThumbnailFitsBox(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(src, []byte("fake"), 0o600))
	thumbs := filepath.Join(t.TempDir(), "thumbs")

	var gotPath string
	frame := func(_ context.Context, _ string, path string) (image.Image, error) {
		gotPath = path
		return solid(1920, 1080), nil
	}
	g := NewGenerator(thumbs, config.ThumbnailConfig{VideoWidth: 512, VideoHeight: 384}, WithFrameFunc(frame))
	path, err := g.Video(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, src, gotPath)
	w, h := decodeSize(t, path)
	assert.Equal(t, 512, w)
	assert.Equal(t, 288, h)
}

func TestVideoThumbnailExtractorFailure(t *testing.T) {
	wantErr := errors.New("ffmpeg missing")
	frame := func(context.Context, string, string) (image.Image, error) {
		return nil, wantErr
	}
	g := NewGenerator(t.TempDir(), config.ThumbnailConfig{}, WithFrameFunc(frame))
	_, err := g.Video(context.Background(), "clip.mp4")
	assert.ErrorIs(t, err, wantErr)
}

func TestVideoThumbnailMissingBinary(t *testing.T) {
	g := NewGenerator(t.TempDir(), config.ThumbnailConfig{FFmpeg: filepath.Join(t.TempDir(), "no-ffmpeg")})
	_, err := g.Video(context.Background(), "clip.mp4")
	assert.Error(t, err)
}

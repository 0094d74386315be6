// Package thumbnail renders PNG previews for imported images and videos.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/fenggwsx/SlashVault/internal/config"
)

// ErrNoFrame is returned when the frame extractor produced no image.
var ErrNoFrame = errors.New("no frame extracted")

// Generator writes previews into one directory, named after the source file.
type Generator struct {
	dir         string
	size        int
	videoWidth  int
	videoHeight int
	ffmpeg      string
	frame       FrameFunc
}

// FrameFunc extracts a single still from a video file.
type FrameFunc func(ctx context.Context, ffmpeg, path string) (image.Image, error)

// Option customizes a Generator.
type Option func(*Generator)

// WithFrameFunc replaces the ffmpeg-backed frame extractor.
func WithFrameFunc(fn FrameFunc) Option {
	return func(g *Generator) {
		g.frame = fn
	}
}

// NewGenerator returns a generator writing into dir.
func NewGenerator(dir string, cfg config.ThumbnailConfig, opts ...Option) *Generator {
	g := &Generator{
		dir:         dir,
		size:        orDefault(cfg.Size, 256),
		videoWidth:  orDefault(cfg.VideoWidth, 512),
		videoHeight: orDefault(cfg.VideoHeight, 384),
		ffmpeg:      cfg.FFmpeg,
		frame:       ffmpegFrame,
	}
	if g.ffmpeg == "" {
		g.ffmpeg = "ffmpeg"
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Image center-crops the picture at src to a square preview.
func (g *Generator) Image(ctx context.Context, src string) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fill(img, g.size, g.size, imaging.Center, imaging.Lanczos)
	return g.write(src, thumb)
}

// Video grabs the first frame of the clip at src and fits it in the video
// preview box.
func (g *Generator) Video(ctx context.Context, src string) (string, error) {
	frame, err := g.frame(ctx, g.ffmpeg, src)
	if err != nil {
		return "", fmt.Errorf("extract frame: %w", err)
	}
	if frame == nil {
		return "", ErrNoFrame
	}
	thumb := imaging.Fit(frame, g.videoWidth, g.videoHeight, imaging.Lanczos)
	return g.write(src, thumb)
}

func (g *Generator) write(src string, img image.Image) (string, error) {
	if err := os.MkdirAll(g.dir, 0o700); err != nil {
		return "", fmt.Errorf("create thumbs dir: %w", err)
	}
	path := filepath.Join(g.dir, filepath.Base(src)+".png")
	if err := imaging.Save(img, path, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write thumbnail: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

func ffmpegFrame(ctx context.Context, ffmpeg, path string) (image.Image, error) {
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-v", "error",
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", ffmpeg, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", ffmpeg, err)
	}
	if stdout.Len() == 0 {
		return nil, ErrNoFrame
	}
	return png.Decode(&stdout)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

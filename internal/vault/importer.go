package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fenggwsx/SlashVault/internal/mediatype"
)

// ErrAlreadyInVault is returned when the source is a payload the vault
// already holds.
var ErrAlreadyInVault = errors.New("file is already in the vault")

// Source is an external file offered for import.
type Source struct {
	// DisplayName becomes the payload file name and the item label.
	DisplayName string
	// ContentType is the declared type; empty classifies as a plain file.
	ContentType string
	// Path is the local file behind the source, when there is one.
	Path string
	Open func() (io.ReadCloser, error)
}

// FileSource describes a file on the local filesystem, looking up its
// content type on a best-effort basis.
func FileSource(path string) Source {
	return Source{
		DisplayName: filepath.Base(path),
		ContentType: mediatype.Detect(path),
		Path:        path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Thumbnailer renders previews for imported media.
type Thumbnailer interface {
	Image(ctx context.Context, src string) (string, error)
	Video(ctx context.Context, src string) (string, error)
}

// Importer copies external files into the vault and appends them to a Store.
type Importer struct {
	store    *Store
	filesDir string
	thumbs   Thumbnailer
	dedupe   bool
	log      *zap.Logger
}

// ImporterOption customizes an Importer.
type ImporterOption func(*Importer)

// WithDedupeNames keeps same-named imports side by side as name(1).ext
// instead of overwriting the earlier payload.
func WithDedupeNames(enabled bool) ImporterOption {
	return func(im *Importer) {
		im.dedupe = enabled
	}
}

// NewImporter returns an importer writing payloads into filesDir. A nil
// thumbnailer disables previews.
func NewImporter(store *Store, filesDir string, thumbs Thumbnailer, log *zap.Logger, opts ...ImporterOption) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	im := &Importer{
		store:    store,
		filesDir: filesDir,
		thumbs:   thumbs,
		log:      log,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import copies src verbatim into the files directory, classifies it by
// content type, generates a preview for images and videos and appends the
// item. A failed preview keeps the item without one.
func (im *Importer) Import(ctx context.Context, src Source) (Item, []Item, error) {
	if src.Open == nil {
		return nil, im.store.Items(), errors.New("source has no reader")
	}
	dest, err := im.destination(src.DisplayName)
	if err != nil {
		return nil, im.store.Items(), err
	}
	if src.Path != "" && sameFile(src.Path, dest) {
		return nil, im.store.Items(), fmt.Errorf("%w: %s", ErrAlreadyInVault, filepath.Base(dest))
	}
	_, statErr := os.Stat(dest)
	fresh := errors.Is(statErr, os.ErrNotExist)
	if err := copyInto(dest, src); err != nil {
		return nil, im.store.Items(), err
	}

	name := filepath.Base(dest)
	var item Item
	switch {
	case mediatype.IsImage(src.ContentType):
		item = Image{Name: name, Path: dest, Thumbnail: im.thumbnail(ctx, dest, false)}
	case mediatype.IsVideo(src.ContentType):
		item = Video{Name: name, Path: dest, Thumbnail: im.thumbnail(ctx, dest, true)}
	default:
		item = File{Name: name, Path: dest}
	}

	items, err := im.store.Append(item)
	if err != nil {
		// An overwritten name still belongs to the earlier item.
		if fresh {
			im.discard(item)
		}
		return nil, items, err
	}
	im.log.Info("file imported",
		zap.String("name", name),
		zap.String("kind", string(item.Kind())),
		zap.String("content_type", src.ContentType),
	)
	return item, items, nil
}

func (im *Importer) discard(item Item) {
	for _, path := range item.OwnedFiles() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			im.log.Warn("remove abandoned import", zap.String("path", path), zap.Error(err))
		}
	}
}

func (im *Importer) thumbnail(ctx context.Context, path string, video bool) string {
	if im.thumbs == nil {
		return ""
	}
	var (
		thumb string
		err   error
	)
	if video {
		thumb, err = im.thumbs.Video(ctx, path)
	} else {
		thumb, err = im.thumbs.Image(ctx, path)
	}
	if err != nil {
		im.log.Warn("thumbnail failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return thumb
}

func (im *Importer) destination(displayName string) (string, error) {
	dir, err := filepath.Abs(im.filesDir)
	if err != nil {
		return "", fmt.Errorf("resolve files dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	base := sanitizeName(displayName)
	if !im.dedupe {
		return filepath.Join(dir, base), nil
	}
	candidate := base
	for i := 0; i < 1000; i++ {
		path := filepath.Join(dir, candidate)
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		candidate = fmt.Sprintf("%s(%d)%s", stem, i+1, ext)
	}
	return "", fmt.Errorf("unable to find a free name for %s", base)
}

// copyInto streams src into a temp file next to dest and renames it into
// place, so dest is never truncated before the source has been read.
func copyInto(dest string, src Source) error {
	in, err := src.Open()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dest), "import-tmp-")
	if err != nil {
		return fmt.Errorf("create payload: %w", err)
	}
	tmp := out.Name()
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("copy payload: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close payload: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("place payload: %w", err)
	}
	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return fmt.Sprintf("file_%d", time.Now().Unix())
	}
	return base
}

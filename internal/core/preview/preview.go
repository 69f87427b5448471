package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/yndnr/deckshare/internal/core/domain"
)

// Defaults for New.
const (
	DefaultMaxSize      = 128
	DefaultWorkers      = 2
	DefaultCacheEntries = 256

	jpegQuality = 85
)

var supported = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Supported reports whether name has an extension the generator decodes.
func Supported(name string) bool {
	return supported[strings.ToLower(filepath.Ext(name))]
}

// Thumb is an encoded JPEG thumbnail.
type Thumb struct {
	Data []byte

	// Cached is true when the thumbnail was served without rendering.
	Cached bool
}

// Generator renders and caches thumbnails.
type Generator struct {
	maxSize uint
	sem     *semaphore.Weighted
	group   singleflight.Group
	cache   *cache
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*generatorConfig)

type generatorConfig struct {
	maxSize      int
	workers      int
	cacheEntries int
	logger       *slog.Logger
}

// WithMaxSize bounds both thumbnail dimensions in pixels.
func WithMaxSize(px int) Option {
	return func(c *generatorConfig) {
		c.maxSize = px
	}
}

// WithWorkers caps the number of renders running at once.
func WithWorkers(n int) Option {
	return func(c *generatorConfig) {
		c.workers = n
	}
}

// WithCacheEntries bounds the thumbnail cache. Zero disables caching.
func WithCacheEntries(n int) Option {
	return func(c *generatorConfig) {
		c.cacheEntries = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *generatorConfig) {
		c.logger = l
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	cfg := generatorConfig{
		maxSize:      DefaultMaxSize,
		workers:      DefaultWorkers,
		cacheEntries: DefaultCacheEntries,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxSize < 1 {
		cfg.maxSize = DefaultMaxSize
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	return &Generator{
		maxSize: uint(cfg.maxSize),
		sem:     semaphore.NewWeighted(int64(cfg.workers)),
		cache:   newCache(cfg.cacheEntries),
		logger:  cfg.logger,
	}
}

// Thumbnail returns a JPEG thumbnail of the image at path.
//
// Errors are domain.ErrPreviewNotFound, domain.ErrPreviewUnsupported,
// domain.ErrPreviewFailed or the context error while waiting for a worker.
func (g *Generator) Thumbnail(ctx context.Context, path string) (Thumb, error) {
	if !Supported(path) {
		return Thumb{}, domain.ErrPreviewUnsupported.WithDetails(path)
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Thumb{}, domain.ErrPreviewNotFound.WithDetails(path)
	case err != nil:
		return Thumb{}, domain.ErrPreviewFailed.WithDetails(path).Wrap(err)
	case info.IsDir():
		return Thumb{}, domain.ErrPreviewUnsupported.WithDetails(path)
	}

	key := cacheKey(path, info)
	if data, ok := g.cache.get(key); ok {
		return Thumb{Data: data, Cached: true}, nil
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer g.sem.Release(1)

		start := time.Now()
		data, err := g.render(path)
		if err != nil {
			return nil, err
		}
		g.cache.add(key, data)
		g.logger.Debug("thumbnail rendered",
			"path", path,
			"bytes", len(data),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return data, nil
	})
	if err != nil {
		return Thumb{}, err
	}
	return Thumb{Data: v.([]byte)}, nil
}

func (g *Generator) render(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrPreviewFailed.WithDetails(path).Wrap(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, domain.ErrPreviewFailed.WithDetails(path).Wrap(fmt.Errorf("decode: %w", err))
	}

	thumb := resize.Thumbnail(g.maxSize, g.maxSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, domain.ErrPreviewFailed.WithDetails(path).Wrap(fmt.Errorf("encode: %w", err))
	}
	return buf.Bytes(), nil
}

func cacheKey(path string, info fs.FileInfo) string {
	return fmt.Sprintf("%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano())
}

package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/info-beamer/package-scheduled-player/internal/logger"
)

const (
	// filePrefix marks files the age sweep is allowed to delete.
	filePrefix = "cache-"

	// DefaultProfileImage is the sentinel used when a profile image could
	// not be cached.
	DefaultProfileImage = "default-profile.png"

	downloadTimeout = 20 * time.Second
)

// Cache is a content-addressed on-disk store for downloaded media. Entries
// are keyed by a hash of the source URL, not its content, so repeated runs
// reuse prior downloads.
type Cache struct {
	dir    string
	client *resty.Client
}

func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		dir:    dir,
		client: resty.New().SetTimeout(downloadTimeout),
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Image downloads an image to the cache and returns its cache filename.
func (c *Cache) Image(ctx context.Context, url, ext string) (string, error) {
	name := fmt.Sprintf("%simage-%s.%s", filePrefix, hashURL(url), ext)
	return c.fetch(ctx, url, name)
}

// Video downloads a video to the cache and returns its cache filename.
func (c *Cache) Video(ctx context.Context, url string) (string, error) {
	name := filePrefix + "video-" + hashURL(url) + ".mp4"
	return c.fetch(ctx, url, name)
}

// ProfileImage caches an author's profile image at the fixed 200x200 size.
func (c *Cache) ProfileImage(ctx context.Context, url string) (string, error) {
	url = strings.Replace(url, "normal", "200x200", 1)
	return c.Image(ctx, url, "png")
}

func (c *Cache) fetch(ctx context.Context, url, name string) (string, error) {
	path := filepath.Join(c.dir, name)
	if _, err := os.Stat(path); err == nil {
		return name, nil
	}

	logger.Get().Debug().Str("url", url).Str("file", name).Msg("Caching asset")

	resp, err := c.client.R().
		SetContext(ctx).
		SetOutput(path).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch asset %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		os.Remove(path)
		return "", fmt.Errorf("unexpected status code %d for asset %s", resp.StatusCode(), url)
	}
	return name, nil
}

// Sweep removes cache files older than maxAge. Failures are logged and the
// sweep continues with the remaining files.
func (c *Cache) Sweep(maxAge time.Duration) {
	log := logger.Get()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		log.Error().Err(err).Str("dir", c.dir).Msg("Failed to read cache directory")
		return
	}

	now := time.Now()
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to stat cache file")
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to remove expired cache file")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Dur("max_age", maxAge).Msg("Swept expired cache files")
	}
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

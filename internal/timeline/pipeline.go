package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/info-beamer/package-scheduled-player/internal/assets"
	"github.com/info-beamer/package-scheduled-player/internal/logger"
	"github.com/info-beamer/package-scheduled-player/internal/models"
	"github.com/info-beamer/package-scheduled-player/internal/publish"
	"github.com/info-beamer/package-scheduled-player/internal/storage"
)

// Pipeline drives one full timeline import:
// fetch -> filter -> truncate -> extract/cache -> normalize -> sort -> persist.
type Pipeline struct {
	feedURL   string
	fetcher   *Fetcher
	cache     *assets.Cache
	store     *storage.Storage
	publisher *publish.Publisher

	mu         sync.RWMutex
	classifier *Classifier
}

// RunOptions control a single import run.
type RunOptions struct {
	// NotBefore drops posts created before this date.
	NotBefore time.Time
	// Count caps the number of posts processed after filtering. Zero means
	// no cap.
	Count int
	// FilterGarbage enables the quality classifier.
	FilterGarbage bool
}

func NewPipeline(feedURL string, classifier *Classifier, cache *assets.Cache, store *storage.Storage, publisher *publish.Publisher) *Pipeline {
	return &Pipeline{
		feedURL:    feedURL,
		fetcher:    NewFetcher(),
		cache:      cache,
		store:      store,
		publisher:  publisher,
		classifier: classifier,
	}
}

// SetClassifier swaps in a classifier built from a freshly loaded block-set.
func (p *Pipeline) SetClassifier(c *Classifier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classifier = c
}

func (p *Pipeline) getClassifier() *Classifier {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.classifier
}

// Run executes one import and persists the resulting digest. Feed and
// extraction failures are fatal; per-asset caching failures are logged and
// the asset is omitted.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) ([]models.DigestEntry, error) {
	log := logger.Get()
	start := time.Now()

	posts, err := p.fetcher.FetchTimeline(ctx, p.feedURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching timeline: %w", err)
	}
	log.Info().
		Int("total_posts", len(posts)).
		Dur("fetch_duration", time.Since(start)).
		Msg("Fetched timeline")

	kept, err := p.filter(posts, opts)
	if err != nil {
		return nil, err
	}
	if opts.Count > 0 && len(kept) > opts.Count {
		kept = kept[:opts.Count]
	}
	log.Info().
		Int("kept_posts", len(kept)).
		Msg("Filtered timeline")

	entries := make([]models.DigestEntry, 0, len(kept))
	for i := range kept {
		entry, err := p.convert(ctx, &kept[i])
		if err != nil {
			return nil, fmt.Errorf("error converting post %s: %w", kept[i].DigestID(), err)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})

	if err := p.store.SaveTimeline(entries); err != nil {
		return nil, fmt.Errorf("error persisting timeline digest: %w", err)
	}

	if p.publisher != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := p.publisher.Upload(ctx, data); err != nil {
				log.Warn().Err(err).Msg("Failed to publish timeline digest")
			}
		}
	}

	log.Info().
		Int("entries", len(entries)).
		Dur("total_duration", time.Since(start)).
		Msg("Finished timeline import")
	return entries, nil
}

// filter keeps posts created on or after the cutoff date that the
// classifier does not reject.
func (p *Pipeline) filter(posts []models.Post, opts RunOptions) ([]models.Post, error) {
	log := logger.Get()
	classifier := p.getClassifier()
	cutoff := dateOnly(opts.NotBefore)

	var kept []models.Post
	for i := range posts {
		post := &posts[i]
		created, err := post.Created()
		if err != nil {
			return nil, fmt.Errorf("post %s has a malformed creation timestamp: %w", post.DigestID(), err)
		}
		if dateOnly(created.UTC()).Before(cutoff) {
			continue
		}
		if opts.FilterGarbage {
			if garbage, reason := classifier.Classify(post); garbage {
				log.Debug().
					Str("id", post.DigestID()).
					Str("reason", reason).
					Msg("Dropping garbage post")
				continue
			}
		}
		kept = append(kept, *post)
	}
	return kept, nil
}

// convert extracts a post's content, caches its media, and assembles the
// normalized digest entry.
func (p *Pipeline) convert(ctx context.Context, post *models.Post) (models.DigestEntry, error) {
	log := logger.Get()

	content, err := ExtractContent(post)
	if err != nil {
		return models.DigestEntry{}, err
	}

	images := []string{}
	for _, url := range content.Images {
		name, err := p.cache.Image(ctx, url, "jpg")
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Omitting image that failed to cache")
			continue
		}
		images = append(images, name)
	}

	var video *models.DigestVideo
	if content.Video != nil {
		name, err := p.cache.Video(ctx, content.Video.URL)
		if err != nil {
			log.Warn().Err(err).Str("url", content.Video.URL).Msg("Omitting video that failed to cache")
		} else {
			video = &models.DigestVideo{Filename: name, Duration: content.Video.Duration}
		}
	}

	profileImage, err := p.cache.ProfileImage(ctx, post.User.ProfileImageURL)
	if err != nil {
		log.Warn().Err(err).Str("url", post.User.ProfileImageURL).Msg("Falling back to default profile image")
		profileImage = assets.DefaultProfileImage
	}

	created, err := post.Created()
	if err != nil {
		return models.DigestEntry{}, err
	}

	return models.DigestEntry{
		ID:           post.DigestID(),
		Name:         post.User.Name,
		ScreenName:   post.User.ScreenName,
		CreatedAt:    created.Unix(),
		Text:         content.Text,
		ProfileImage: profileImage,
		Images:       images,
		Video:        video,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/info-beamer/package-scheduled-player/internal/models"
)

type Fetcher struct {
	client *resty.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second),
	}
}

// FetchTimeline retrieves the timeline from the given URL and parses it into
// posts. A failure here is fatal to the import run.
func (f *Fetcher) FetchTimeline(ctx context.Context, url string) ([]models.Post, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline from %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}

	var posts []models.Post
	if err := json.Unmarshal(resp.Body(), &posts); err != nil {
		return nil, fmt.Errorf("failed to parse timeline response: %w", err)
	}

	return posts, nil
}

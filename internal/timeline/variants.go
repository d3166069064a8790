package timeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/info-beamer/package-scheduled-player/internal/logger"
	"github.com/info-beamer/package-scheduled-player/internal/models"
)

// Preferred resolution tiers, in order. A tier is only accepted when both
// dimensions stay strictly under maxTierDim.
var preferredTiers = [...]string{"large", "medium"}

const (
	maxTierDim      = 2048
	maxVideoBitrate = 1000000
	videoMIMEType   = "video/mp4"
)

// SelectImage picks the image URL for a media attachment. Accepted tiers are
// addressed as "<base_url>:<tier>"; when no preferred tier qualifies the
// bare base URL is used.
func SelectImage(media *models.MediaEntity) (string, error) {
	if media.MediaURL == "" {
		return "", errors.New("media entity has no media_url_https")
	}
	for _, tier := range preferredTiers {
		size, ok := media.Sizes[tier]
		if ok && size.H < maxTierDim && size.W < maxTierDim {
			return media.MediaURL + ":" + tier, nil
		}
	}
	return media.MediaURL, nil
}

// SelectVideo picks an mp4 encoding from the attachment's video metadata.
// Encodings above maxVideoBitrate are dropped highest-first, but never the
// last remaining candidate. Returns nil when no mp4 encoding exists.
func SelectVideo(info *models.VideoInfo) (*models.Video, error) {
	var usable []models.VideoVariant
	for _, variant := range info.Variants {
		if variant.ContentType == videoMIMEType {
			usable = append(usable, variant)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Bitrate > usable[j].Bitrate
	})

	for len(usable) >= 2 && usable[0].Bitrate > maxVideoBitrate {
		logger.Get().Debug().
			Int("bitrate", usable[0].Bitrate).
			Msg("Discarding video encoding with too high bitrate")
		usable = usable[1:]
	}

	if len(usable) == 0 {
		return nil, nil
	}
	if usable[0].URL == "" {
		return nil, fmt.Errorf("video encoding with bitrate %d has no url", usable[0].Bitrate)
	}

	video := &models.Video{URL: usable[0].URL}
	if info.DurationMillis != nil {
		seconds := float64(*info.DurationMillis) / 1000.0
		video.Duration = &seconds
	}
	return video, nil
}

package timeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/info-beamer/package-scheduled-player/internal/models"
)

type rangeKind int

const (
	kindLink rangeKind = iota
	kindMedia
)

// annotatedRange is one marked sub-span of a post's raw text.
type annotatedRange struct {
	start, end int
	kind       rangeKind
	url        *models.URLEntity
	media      *models.MediaEntity
}

// ExtractContent walks a post's annotated ranges and produces the cleaned
// text, the selected image URL for every media range, and at most one video.
//
// Ranges are processed in descending start order. Splicing back-to-front
// keeps the remaining (earlier) offsets valid after every edit; splicing
// front-to-back on the raw offsets would corrupt trailing ranges.
func ExtractContent(post *models.Post) (models.ExtractedContent, error) {
	runes := []rune(post.RawText())

	var ranges []annotatedRange
	for i := range post.Entities.URLs {
		u := &post.Entities.URLs[i]
		start, end, err := spanOf(u.Indices, len(runes))
		if err != nil {
			return models.ExtractedContent{}, fmt.Errorf("url entity: %w", err)
		}
		ranges = append(ranges, annotatedRange{start: start, end: end, kind: kindLink, url: u})
	}
	media := post.Media()
	for i := range media {
		m := &media[i]
		start, end, err := spanOf(m.Indices, len(runes))
		if err != nil {
			return models.ExtractedContent{}, fmt.Errorf("media entity: %w", err)
		}
		ranges = append(ranges, annotatedRange{start: start, end: end, kind: kindMedia, media: m})
	}

	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start > ranges[j].start
		}
		return ranges[i].end > ranges[j].end
	})

	var images []string
	var video *models.Video
	for _, r := range ranges {
		switch r.kind {
		case kindMedia:
			runes = splice(runes, r.start, r.end, "")
			img, err := SelectImage(r.media)
			if err != nil {
				return models.ExtractedContent{}, err
			}
			images = append(images, img)
			if r.media.VideoInfo != nil {
				selected, err := SelectVideo(r.media.VideoInfo)
				if err != nil {
					return models.ExtractedContent{}, err
				}
				// Last range processed wins when several carry video.
				if selected != nil {
					video = selected
				}
			}
		case kindLink:
			runes = splice(runes, r.start, r.end, r.url.DisplayURL)
		}
	}

	text := string(runes)
	// The upstream API escapes exactly these three entities in post text.
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.Join(strings.Fields(text), " ")

	return models.ExtractedContent{Text: text, Images: images, Video: video}, nil
}

// spanOf validates an entity's index pair against the text length. Offsets
// are counted in Unicode code points, matching the upstream representation.
func spanOf(indices []int, length int) (int, int, error) {
	if len(indices) != 2 {
		return 0, 0, fmt.Errorf("expected an index pair, got %v", indices)
	}
	start, end := indices[0], indices[1]
	if start < 0 || end < start || end > length {
		return 0, 0, fmt.Errorf("indices [%d, %d] out of range for text of length %d", start, end, length)
	}
	return start, end, nil
}

func splice(runes []rune, start, end int, replacement string) []rune {
	repl := []rune(replacement)
	out := make([]rune, 0, len(runes)-(end-start)+len(repl))
	out = append(out, runes[:start]...)
	out = append(out, repl...)
	out = append(out, runes[end:]...)
	return out
}

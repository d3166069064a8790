package timeline

import (
	"testing"

	"github.com/info-beamer/package-scheduled-player/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReplacesLinkRange(t *testing.T) {
	post := &models.Post{
		Text: "see https://t.co/abcd end",
		Entities: models.Entities{
			URLs: []models.URLEntity{
				{Indices: []int{4, 21}, DisplayURL: "example.com/x"},
			},
		},
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "see example.com/x end", content.Text)
	assert.Empty(t, content.Images)
	assert.Nil(t, content.Video)
}

func TestExtractRemovesMediaRange(t *testing.T) {
	post := &models.Post{
		Text: "hello world https://t.co/media",
		Entities: models.Entities{
			Media: []models.MediaEntity{
				{
					Indices:  []int{12, 30},
					MediaURL: "https://pbs.example/img1",
					Sizes:    map[string]models.MediaSize{"large": {W: 1024, H: 768}},
				},
			},
		},
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "hello world", content.Text)
	assert.Equal(t, []string{"https://pbs.example/img1:large"}, content.Images)
}

func TestExtractSpliceSafetyWithUnsortedRanges(t *testing.T) {
	// Three non-overlapping ranges, deliberately out of order in the source.
	post := &models.Post{
		Text: "a https://t.co/one b https://t.co/two c https://t.co/tri d",
		Entities: models.Entities{
			URLs: []models.URLEntity{
				{Indices: []int{2, 18}, DisplayURL: "1.io"},
				{Indices: []int{40, 56}, DisplayURL: "3.io"},
				{Indices: []int{21, 37}, DisplayURL: "2.io"},
			},
		},
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "a 1.io b 2.io c 3.io d", content.Text)
}

func TestExtractOffsetsAreRuneBased(t *testing.T) {
	post := &models.Post{
		Text: "\U0001F389\U0001F389 https://t.co/a done",
		Entities: models.Entities{
			URLs: []models.URLEntity{
				{Indices: []int{3, 17}, DisplayURL: "x.co"},
			},
		},
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "\U0001F389\U0001F389 x.co done", content.Text)
}

func TestExtractMultipleMediaRanges(t *testing.T) {
	post := &models.Post{
		Text: "x https://t.co/a https://t.co/b",
		Entities: models.Entities{
			Media: []models.MediaEntity{
				{
					Indices:  []int{2, 16},
					MediaURL: "https://img/a",
					VideoInfo: &models.VideoInfo{
						Variants: []models.VideoVariant{
							{ContentType: "video/mp4", Bitrate: 600000, URL: "https://v/a"},
						},
					},
				},
				{
					Indices:  []int{17, 31},
					MediaURL: "https://img/b",
					VideoInfo: &models.VideoInfo{
						Variants: []models.VideoVariant{
							{ContentType: "video/mp4", Bitrate: 700000, URL: "https://v/b"},
						},
					},
				},
			},
		},
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "x", content.Text)

	// Ranges are processed back-to-front, so image URLs accumulate in
	// reverse document order.
	assert.Equal(t, []string{"https://img/b", "https://img/a"}, content.Images)

	// The last range processed carries the winning video, which is the
	// first media range in document order.
	require.NotNil(t, content.Video)
	assert.Equal(t, "https://v/a", content.Video.URL)
}

func TestExtractDecodesBasicEntities(t *testing.T) {
	post := &models.Post{
		Text: "fish &amp; chips &lt;tag&gt; &quot;q&quot;",
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "fish & chips <tag> &quot;q&quot;", content.Text)
}

func TestExtractCollapsesWhitespace(t *testing.T) {
	post := &models.Post{
		Text: "  a\n\nb\tc  ",
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "a b c", content.Text)
}

func TestExtractPrefersFullText(t *testing.T) {
	post := &models.Post{
		Text:     "truncated",
		FullText: "the whole post text",
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, "the whole post text", content.Text)
}

func TestExtractExtendedEntitiesReplaceBasicMedia(t *testing.T) {
	post := &models.Post{
		Text: "hi there https://t.co/m",
		Entities: models.Entities{
			Media: []models.MediaEntity{
				{Indices: []int{9, 23}, MediaURL: "https://basic"},
			},
		},
		ExtendedEntities: &models.Entities{
			Media: []models.MediaEntity{
				{Indices: []int{9, 23}, MediaURL: "https://extended"},
			},
		},
	}

	content, err := ExtractContent(post)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://extended"}, content.Images)
}

func TestExtractMalformedPayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		post *models.Post
	}{
		{
			name: "single index",
			post: &models.Post{
				Text: "some text with enough length",
				Entities: models.Entities{
					Media: []models.MediaEntity{
						{Indices: []int{5}, MediaURL: "https://img"},
					},
				},
			},
		},
		{
			name: "indices out of range",
			post: &models.Post{
				Text: "short",
				Entities: models.Entities{
					URLs: []models.URLEntity{
						{Indices: []int{0, 100}, DisplayURL: "x.co"},
					},
				},
			},
		},
		{
			name: "media without url",
			post: &models.Post{
				Text: "post with broken media here",
				Entities: models.Entities{
					Media: []models.MediaEntity{
						{Indices: []int{0, 4}},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractContent(tt.post)
			assert.Error(t, err)
		})
	}
}

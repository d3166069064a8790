package models

// ExtractedContent is the result of running the entity extractor over one
// post: the cleaned text, every discovered image URL, and at most one video.
type ExtractedContent struct {
	Text   string
	Images []string
	Video  *Video
}

// Video is a selected video encoding. Duration is in seconds and only set
// when the source metadata supplied one.
type Video struct {
	Duration *float64
	URL      string
}

// DigestEntry is the normalized record persisted for display clients.
type DigestEntry struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ScreenName   string       `json:"screen_name"`
	CreatedAt    int64        `json:"created_at"`
	Text         string       `json:"text"`
	ProfileImage string       `json:"profile_image"`
	Images       []string     `json:"images"`
	Video        *DigestVideo `json:"video,omitempty"`
}

// DigestVideo points at a locally cached video file.
type DigestVideo struct {
	Filename string   `json:"filename"`
	Duration *float64 `json:"duration,omitempty"`
}

package models

import "time"

// Event is one schedule entry imported from a conference feed. Start is in
// UTC; the display strings keep the feed's own timezone.
type Event struct {
	Start     time.Time `json:"start"`
	StartStr  string    `json:"start_str"`
	EndStr    string    `json:"end_str"`
	StartUnix int64     `json:"start_unix"`
	EndUnix   int64     `json:"end_unix"`
	Duration  int       `json:"duration"`
	Title     string    `json:"title"`
	Track     string    `json:"track"`
	Place     string    `json:"place"`
	Abstract  string    `json:"abstract"`
	Speakers  []string  `json:"speakers"`
	Lang      string    `json:"lang"`
	ID        string    `json:"id"`
	Group     string    `json:"group"`
}

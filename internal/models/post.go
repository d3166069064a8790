package models

import (
	"strconv"
	"time"
)

// Post represents a single timeline entry as returned by the upstream API.
type Post struct {
	ID               int64     `json:"id"`
	IDStr            string    `json:"id_str"`
	Text             string    `json:"text"`
	FullText         string    `json:"full_text,omitempty"`
	CreatedAt        string    `json:"created_at"`
	User             User      `json:"user"`
	Entities         Entities  `json:"entities"`
	ExtendedEntities *Entities `json:"extended_entities,omitempty"`
	RetweetedStatus  *Post     `json:"retweeted_status,omitempty"`
}

// User is the author of a post.
type User struct {
	Name                string  `json:"name"`
	ScreenName          string  `json:"screen_name"`
	FollowersCount      int     `json:"followers_count"`
	DefaultProfile      bool    `json:"default_profile"`
	DefaultProfileImage bool    `json:"default_profile_image"`
	Description         *string `json:"description"`
	ProfileImageURL     string  `json:"profile_image_url_https"`
}

// Entities holds the annotated ranges of a post. The extended set, when
// present, replaces the basic media list.
type Entities struct {
	URLs  []URLEntity   `json:"urls"`
	Media []MediaEntity `json:"media"`
}

// URLEntity is a link range with its human-readable display form.
type URLEntity struct {
	Indices     []int  `json:"indices"`
	URL         string `json:"url"`
	DisplayURL  string `json:"display_url"`
	ExpandedURL string `json:"expanded_url"`
}

// MediaEntity is a media range with its named resolution variants and
// optional video encodings.
type MediaEntity struct {
	Indices   []int                `json:"indices"`
	MediaURL  string               `json:"media_url_https"`
	Sizes     map[string]MediaSize `json:"sizes"`
	VideoInfo *VideoInfo           `json:"video_info,omitempty"`
}

// MediaSize is the pixel dimensions of one resolution tier.
type MediaSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

// VideoInfo carries the video encodings of a media attachment. The duration
// is a pointer because the upstream API omits it for some media kinds.
type VideoInfo struct {
	DurationMillis *int64         `json:"duration_millis,omitempty"`
	Variants       []VideoVariant `json:"variants"`
}

// VideoVariant is a single video encoding.
type VideoVariant struct {
	ContentType string `json:"content_type"`
	Bitrate     int    `json:"bitrate"`
	URL         string `json:"url"`
}

// RawText returns the full post text, preferring the extended form.
func (p *Post) RawText() string {
	if p.FullText != "" {
		return p.FullText
	}
	return p.Text
}

// DigestID returns the post id as a string.
func (p *Post) DigestID() string {
	if p.IDStr != "" {
		return p.IDStr
	}
	return strconv.FormatInt(p.ID, 10)
}

// Created parses the post's creation timestamp.
func (p *Post) Created() (time.Time, error) {
	return time.Parse(time.RubyDate, p.CreatedAt)
}

// Media returns the media ranges to process, with the extended entity set
// taking precedence over the basic one.
func (p *Post) Media() []MediaEntity {
	if p.ExtendedEntities != nil {
		return p.ExtendedEntities.Media
	}
	return p.Entities.Media
}

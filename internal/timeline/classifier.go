package timeline

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/info-beamer/package-scheduled-player/internal/models"
)

const (
	minTextRunes = 10
	minFollowers = 10
)

// Classifier decides whether a post is low-quality garbage. Rules are
// evaluated in fixed order and the first match wins.
type Classifier struct {
	blocked map[string]struct{}
}

// NewClassifier creates a classifier using the given block-set of author
// display names. Reloading the block-list means constructing a new
// classifier; the set is never mutated.
func NewClassifier(blocked map[string]struct{}) *Classifier {
	if blocked == nil {
		blocked = map[string]struct{}{}
	}
	return &Classifier{blocked: blocked}
}

// LoadBlocklist reads a block-list file: one blocked author display name per
// line, blank lines ignored.
func LoadBlocklist(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blocked := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			blocked[line] = struct{}{}
		}
	}
	return blocked, nil
}

// Classify reports whether the post is garbage, along with the rule that
// fired. The reason is observability-only.
func (c *Classifier) Classify(post *models.Post) (bool, string) {
	if _, ok := c.blocked[post.User.Name]; ok {
		return true, "blocked author"
	}
	if post.RetweetedStatus != nil {
		return true, "reshare of another post"
	}
	if post.User.DefaultProfile {
		return true, "default profile"
	}
	if post.User.DefaultProfileImage {
		return true, "default profile image"
	}

	// Rules below look at the raw text, before any cleanup.
	text := post.RawText()
	if utf8.RuneCountInString(text) < minTextRunes {
		return true, "text too short"
	}
	if strings.HasPrefix(text, ".") {
		return true, "suppressed dot post"
	}
	if strings.HasPrefix(text, "@") {
		return true, "reply"
	}
	if strings.HasPrefix(text, "RT ") {
		return true, "manual reshare"
	}

	if post.User.FollowersCount < minFollowers {
		return true, "too few followers"
	}
	if post.User.Description == nil {
		return true, "no profile description"
	}
	return false, ""
}

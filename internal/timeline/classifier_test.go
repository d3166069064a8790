package timeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/info-beamer/package-scheduled-player/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keptPost() *models.Post {
	desc := "generally harmless"
	return &models.Post{
		IDStr: "1",
		Text:  "a perfectly reasonable post",
		User: models.User{
			Name:           "Alice Example",
			ScreenName:     "alice",
			FollowersCount: 50,
			Description:    &desc,
		},
	}
}

func TestClassifyRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Post)
		reason string
	}{
		{
			name:   "blocked author",
			mutate: func(p *models.Post) { p.User.Name = "Spammy McSpam" },
			reason: "blocked author",
		},
		{
			name:   "reshare",
			mutate: func(p *models.Post) { p.RetweetedStatus = &models.Post{} },
			reason: "reshare of another post",
		},
		{
			name:   "default profile",
			mutate: func(p *models.Post) { p.User.DefaultProfile = true },
			reason: "default profile",
		},
		{
			name:   "default profile image",
			mutate: func(p *models.Post) { p.User.DefaultProfileImage = true },
			reason: "default profile image",
		},
		{
			name:   "short text",
			mutate: func(p *models.Post) { p.Text = "short one" },
			reason: "text too short",
		},
		{
			name:   "short text counts runes not bytes",
			mutate: func(p *models.Post) { p.Text = "ééééééééé" },
			reason: "text too short",
		},
		{
			name:   "dot post",
			mutate: func(p *models.Post) { p.Text = ".hidden message here" },
			reason: "suppressed dot post",
		},
		{
			name:   "reply",
			mutate: func(p *models.Post) { p.Text = "@someone hello there" },
			reason: "reply",
		},
		{
			name:   "manual reshare",
			mutate: func(p *models.Post) { p.Text = "RT something worth repeating" },
			reason: "manual reshare",
		},
		{
			name:   "too few followers",
			mutate: func(p *models.Post) { p.User.FollowersCount = 9 },
			reason: "too few followers",
		},
		{
			name:   "no description",
			mutate: func(p *models.Post) { p.User.Description = nil },
			reason: "no profile description",
		},
	}

	classifier := NewClassifier(map[string]struct{}{"Spammy McSpam": {}})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := keptPost()
			tt.mutate(post)
			garbage, reason := classifier.Classify(post)
			assert.True(t, garbage)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestClassifyKeepsGoodPost(t *testing.T) {
	classifier := NewClassifier(nil)
	garbage, reason := classifier.Classify(keptPost())
	assert.False(t, garbage)
	assert.Empty(t, reason)
}

func TestClassifyFirstRuleWins(t *testing.T) {
	classifier := NewClassifier(map[string]struct{}{"Spammy McSpam": {}})

	post := keptPost()
	post.User.Name = "Spammy McSpam"
	post.Text = "RT something worth repeating"

	garbage, reason := classifier.Classify(post)
	assert.True(t, garbage)
	assert.Equal(t, "blocked author", reason)
}

func TestClassifyEmptyDescriptionIsNotMissing(t *testing.T) {
	classifier := NewClassifier(nil)

	post := keptPost()
	empty := ""
	post.User.Description = &empty

	garbage, _ := classifier.Classify(post)
	assert.False(t, garbage)
}

func TestLoadBlocklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocked.txt")
	require.NoError(t, os.WriteFile(path, []byte("Spammy McSpam\n\n  Other Guy  \n"), 0644))

	blocked, err := LoadBlocklist(path)
	require.NoError(t, err)
	assert.Len(t, blocked, 2)
	assert.Contains(t, blocked, "Spammy McSpam")
	assert.Contains(t, blocked, "Other Guy")
}

func TestLoadBlocklistMissingFile(t *testing.T) {
	_, err := LoadBlocklist(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

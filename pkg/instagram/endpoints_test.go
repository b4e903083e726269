package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetProfileURL(t *testing.T) {
	url := GetProfileURL(BaseURL, "alice")
	assert.Equal(t, "https://www.instagram.com/api/v1/users/web_profile_info/?username=alice", url)
}

func TestGetMediaURLIncludesCursor(t *testing.T) {
	url := GetMediaURL(BaseURL, "12345", "CURSOR")
	assert.Contains(t, url, MediaQueryHash)
	assert.Contains(t, url, "12345")
	assert.Contains(t, url, "CURSOR")
}

func TestGetMediaURLWithLimitClampsBounds(t *testing.T) {
	assert.Contains(t, GetMediaURLWithLimit(BaseURL, "1", "", 0), `%22first%22%3A12`)
	assert.Contains(t, GetMediaURLWithLimit(BaseURL, "1", "", 999), `%22first%22%3A50`)
}

func TestGetStoryAndHighlightURLs(t *testing.T) {
	assert.Contains(t, GetStoryReelURL(BaseURL, "111"), "reel_ids=111")
	assert.Contains(t, GetHighlightURL(BaseURL, "h1"), "reel_ids=highlight%3Ah1")
	assert.Contains(t, GetHighlightTrayURL(BaseURL, "111"), "/api/v1/highlights/111/highlights_tray/")
}

func TestGetSavedURL(t *testing.T) {
	assert.Equal(t, BaseURL+SavedEndpoint, GetSavedURL(BaseURL, ""))
	assert.Contains(t, GetSavedURL(BaseURL, "abc"), "max_id=abc")
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"alice", true},
		{"alice.bob_99", true},
		{"", false},
		{"has space", false},
		{"emoji😀", false},
		{"thisusernameiswaytoolongforinstagram", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidUsername(tt.username), tt.username)
	}
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "alice", SanitizeUsername("@alice"))
	assert.Equal(t, "alice", SanitizeUsername("alice/ "))
	assert.Equal(t, "", SanitizeUsername(""))
}

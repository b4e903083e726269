package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the provider's web host.
	BaseURL = "https://www.instagram.com"

	// ProfileEndpoint is the endpoint pattern for user profiles.
	ProfileEndpoint = "/api/v1/users/web_profile_info/"

	// MediaEndpoint is the endpoint pattern for paginated timeline media.
	MediaEndpoint = "/graphql/query/"

	// MediaQueryHash is the query hash for fetching user media.
	MediaQueryHash = "e769aa130647d2354c40ea6a439bfc08"

	// PostInfoEndpoint is the endpoint pattern for a single post lookup.
	PostInfoEndpoint = "/api/v1/media/%s/info/"

	// ReelsEndpoint fetches story and highlight reels by reel id.
	ReelsEndpoint = "/api/v1/feed/reels_media/"

	// HighlightTrayEndpoint lists a user's highlight reels.
	HighlightTrayEndpoint = "/api/v1/highlights/%s/highlights_tray/"

	// SavedEndpoint is the viewer's saved collection feed.
	SavedEndpoint = "/api/v1/feed/saved/"

	// DefaultMediaLimit is the page size for timeline queries.
	DefaultMediaLimit = 12

	// MaxMediaLimit caps the page size the provider accepts.
	MaxMediaLimit = 50
)

// GetProfileURL constructs the URL for fetching a user's profile.
func GetProfileURL(base, username string) string {
	params := url.Values{}
	params.Set("username", username)

	return fmt.Sprintf("%s%s?%s", base, ProfileEndpoint, params.Encode())
}

// GetMediaURL constructs the URL for fetching a user's timeline page.
func GetMediaURL(base, userID, after string) string {
	return GetMediaURLWithLimit(base, userID, after, DefaultMediaLimit)
}

// GetMediaURLWithLimit constructs a timeline page URL with a custom page size.
func GetMediaURLWithLimit(base, userID, after string, limit int) string {
	if limit <= 0 {
		limit = DefaultMediaLimit
	} else if limit > MaxMediaLimit {
		limit = MaxMediaLimit
	}

	params := url.Values{}
	params.Set("query_hash", MediaQueryHash)
	params.Set("variables", fmt.Sprintf(`{"id":"%s","first":%d,"after":"%s"}`, userID, limit, after))

	return fmt.Sprintf("%s%s?%s", base, MediaEndpoint, params.Encode())
}

// GetPostInfoURL constructs the URL for a single post lookup by shortcode.
func GetPostInfoURL(base, shortcode string) string {
	return fmt.Sprintf("%s"+PostInfoEndpoint, base, url.PathEscape(shortcode))
}

// GetStoryReelURL constructs the URL for a user's current story reel.
func GetStoryReelURL(base, userID string) string {
	params := url.Values{}
	params.Set("reel_ids", userID)

	return fmt.Sprintf("%s%s?%s", base, ReelsEndpoint, params.Encode())
}

// GetHighlightURL constructs the URL for one highlight reel's items.
func GetHighlightURL(base, highlightID string) string {
	params := url.Values{}
	params.Set("reel_ids", "highlight:"+highlightID)

	return fmt.Sprintf("%s%s?%s", base, ReelsEndpoint, params.Encode())
}

// GetHighlightTrayURL constructs the URL listing a user's highlights.
func GetHighlightTrayURL(base, userID string) string {
	return fmt.Sprintf("%s"+HighlightTrayEndpoint, base, url.PathEscape(userID))
}

// GetSavedURL constructs the URL for one page of the saved collection.
func GetSavedURL(base, after string) string {
	if after == "" {
		return base + SavedEndpoint
	}
	params := url.Values{}
	params.Set("max_id", after)
	return fmt.Sprintf("%s%s?%s", base, SavedEndpoint, params.Encode())
}

// IsValidUsername checks a username against the provider's rules.
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Letters, numbers, periods and underscores only.
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}

	if username[0] == '@' {
		username = username[1:]
	}

	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}

	return username
}

package instagram

import "time"

// ProfileResponse is the top-level profile payload.
type ProfileResponse struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Data            Data   `json:"data"`
	Status          string `json:"status"`
}

// Data wraps the user information in the response.
type Data struct {
	User User `json:"user"`
}

// User is a profile with its first timeline page inlined.
type User struct {
	ID                       string        `json:"id"`
	Username                 string        `json:"username"`
	FullName                 string        `json:"full_name"`
	IsPrivate                bool          `json:"is_private"`
	FollowedByViewer         bool          `json:"followed_by_viewer"`
	ProfilePicURLHD          string        `json:"profile_pic_url_hd"`
	HighlightReelCount       int           `json:"highlight_reel_count"`
	EdgeOwnerToTimelineMedia TimelineMedia `json:"edge_owner_to_timeline_media"`
}

// Accessible reports whether the viewer can enumerate this profile's
// media. Private profiles are visible only to approved followers.
func (u User) Accessible() bool {
	return !u.IsPrivate || u.FollowedByViewer
}

// TimelineMedia is one page of a user's timeline.
type TimelineMedia struct {
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

// MediaPageResponse wraps a paginated timeline query.
type MediaPageResponse struct {
	Data   Data   `json:"data"`
	Status string `json:"status"`
}

// PageInfo carries the continuation cursor for paged queries.
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// Edge wraps a single media node.
type Edge struct {
	Node Node `json:"node"`
}

// Node is a single timeline media item. Sidecar posts carry their
// children in EdgeSidecarToChildren.
type Node struct {
	ID                    string   `json:"id"`
	Shortcode             string   `json:"shortcode"`
	DisplayURL            string   `json:"display_url"`
	VideoURL              string   `json:"video_url"`
	IsVideo               bool     `json:"is_video"`
	TakenAtTimestamp      int64    `json:"taken_at_timestamp"`
	EdgeSidecarToChildren *Sidecar `json:"edge_sidecar_to_children,omitempty"`
}

// TakenAt converts the provider's unix timestamp, zero when absent.
func (n Node) TakenAt() time.Time {
	if n.TakenAtTimestamp == 0 {
		return time.Time{}
	}
	return time.Unix(n.TakenAtTimestamp, 0).UTC()
}

// MediaURL returns the direct CDN URL for this node, preferring the
// video rendition when the node is a video.
func (n Node) MediaURL() string {
	if n.IsVideo && n.VideoURL != "" {
		return n.VideoURL
	}
	return n.DisplayURL
}

// Sidecar holds the children of a multi-media post.
type Sidecar struct {
	Edges []Edge `json:"edges"`
}

// PostResponse is a single post lookup by shortcode.
type PostResponse struct {
	Items  []Node `json:"items"`
	Status string `json:"status"`
}

// ReelResponse is a story or highlight reel with its items.
type ReelResponse struct {
	Reel   Reel   `json:"reel"`
	Status string `json:"status"`
}

// Reel is a set of ephemeral media items belonging to one user.
type Reel struct {
	ID    string     `json:"id"`
	Items []ReelItem `json:"items"`
}

// ReelItem is one story or highlight media item.
type ReelItem struct {
	ID            string `json:"id"`
	MediaType     int    `json:"media_type"`
	TakenAt       int64  `json:"taken_at"`
	ImageVersions struct {
		Candidates []MediaCandidate `json:"candidates"`
	} `json:"image_versions2"`
	VideoVersions []MediaCandidate `json:"video_versions"`
}

// MediaCandidate is one rendition of a media item. The provider orders
// candidates best-first.
type MediaCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// IsVideo reports whether the item is a video clip.
func (i ReelItem) IsVideo() bool {
	return i.MediaType == 2
}

// BestURL picks the highest-quality rendition, video over image.
func (i ReelItem) BestURL() string {
	if len(i.VideoVersions) > 0 {
		return i.VideoVersions[0].URL
	}
	if len(i.ImageVersions.Candidates) > 0 {
		return i.ImageVersions.Candidates[0].URL
	}
	return ""
}

// Taken converts the item's unix timestamp, zero when absent.
func (i ReelItem) Taken() time.Time {
	if i.TakenAt == 0 {
		return time.Time{}
	}
	return time.Unix(i.TakenAt, 0).UTC()
}

// HighlightTrayResponse lists a user's highlight reels.
type HighlightTrayResponse struct {
	Tray   []HighlightReel `json:"tray"`
	Status string          `json:"status"`
}

// HighlightReel is one named highlight in the tray.
type HighlightReel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SavedPageResponse is one page of the viewer's saved collection.
type SavedPageResponse struct {
	Items         []SavedItem `json:"items"`
	MoreAvailable bool        `json:"more_available"`
	NextMaxID     string      `json:"next_max_id"`
	Status        string      `json:"status"`
}

// SavedItem wraps a saved post with its owner.
type SavedItem struct {
	Media SavedMedia `json:"media"`
}

// SavedMedia is the subset of a saved post needed to re-enqueue it.
type SavedMedia struct {
	Code    string `json:"code"`
	TakenAt int64  `json:"taken_at"`
	User    struct {
		Username string `json:"username"`
	} `json:"user"`
}

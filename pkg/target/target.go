package target

import (
	"fmt"
	"time"

	"igloader/pkg/pacing"
)

// Kind tags the variant of a download target. The scheduler dispatches on
// it with an exhaustive switch; new target kinds are a new constant plus
// one new arm, never a subclass.
type Kind int

const (
	KindProfile Kind = iota
	KindMediaPage
	KindSavedPage
	KindSinglePost
	KindSingleStory
	KindSingleHighlight
	KindStorySet
	KindHighlightSet
	KindProfilePic
)

func (k Kind) String() string {
	switch k {
	case KindProfile:
		return "profile"
	case KindMediaPage:
		return "media_page"
	case KindSavedPage:
		return "saved_page"
	case KindSinglePost:
		return "post"
	case KindSingleStory:
		return "story"
	case KindSingleHighlight:
		return "highlight"
	case KindStorySet:
		return "stories"
	case KindHighlightSet:
		return "highlights"
	case KindProfilePic:
		return "profile_pic"
	default:
		return "unknown"
	}
}

// ContentKinds selects which portions of a profile get enqueued.
type ContentKinds struct {
	Posts      bool
	Stories    bool
	Highlights bool
	ProfilePic bool
}

// Everything selects all profile content.
func Everything() ContentKinds {
	return ContentKinds{Posts: true, Stories: true, Highlights: true, ProfilePic: true}
}

// DateRange bounds enumeration by item date. Since is normalized to the
// start of its day and Until to the end of its day by NewDateRange.
type DateRange struct {
	Since time.Time
	Until time.Time
}

// NewDateRange builds a range covering whole days from since to until.
func NewDateRange(since, until time.Time) DateRange {
	s := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())
	u := time.Date(until.Year(), until.Month(), until.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), until.Location())
	return DateRange{Since: s, Until: u}
}

// Contains reports whether ts falls inside the range. A zero range
// accepts everything.
func (r DateRange) Contains(ts time.Time) bool {
	if r.Since.IsZero() && r.Until.IsZero() {
		return true
	}
	if !r.Since.IsZero() && ts.Before(r.Since) {
		return false
	}
	if !r.Until.IsZero() && ts.After(r.Until) {
		return false
	}
	return true
}

// IsZero reports whether no date filtering was requested.
func (r DateRange) IsZero() bool {
	return r.Since.IsZero() && r.Until.IsZero()
}

// Target is one unit of scheduled work. Immutable once enqueued; the
// scheduler owns the queue for the session's lifetime.
type Target struct {
	Kind     Kind
	Username string
	// Shortcode identifies a single post or reel; MediaID a story item;
	// HighlightID a highlight reel.
	Shortcode   string
	MediaID     string
	HighlightID string
	// Cursor is the continuation position for paged kinds.
	Cursor string
	// Page numbers paged kinds for progress labels, starting at 1.
	Page int
	// Content narrows profile expansion.
	Content ContentKinds
	// Dates filters enumeration; zero means no filtering.
	Dates DateRange
	// MaxPosts caps profile post expansion. Zero means unlimited.
	MaxPosts int
	// Taken is the item's creation time when the enumerator knows it,
	// so out-of-range items are dropped before any fetch cost is spent.
	Taken time.Time
}

// Label renders the target for progress display and logs.
func (t Target) Label() string {
	switch t.Kind {
	case KindProfile:
		return fmt.Sprintf("profile %s", t.Username)
	case KindMediaPage:
		return fmt.Sprintf("%s posts page %d", t.Username, t.Page)
	case KindSavedPage:
		return fmt.Sprintf("%s saved page %d", t.Username, t.Page)
	case KindSinglePost:
		return fmt.Sprintf("post %s", t.Shortcode)
	case KindSingleStory:
		return fmt.Sprintf("story %s/%s", t.Username, t.MediaID)
	case KindSingleHighlight:
		return fmt.Sprintf("highlight %s/%s", t.Username, t.HighlightID)
	case KindStorySet:
		return fmt.Sprintf("%s stories", t.Username)
	case KindHighlightSet:
		return fmt.Sprintf("%s highlights", t.Username)
	case KindProfilePic:
		return fmt.Sprintf("%s profile picture", t.Username)
	default:
		return "unknown target"
	}
}

// ItemKind maps the target onto the pacing category it is throttled as.
func (t Target) ItemKind() pacing.ItemKind {
	switch t.Kind {
	case KindSingleStory, KindStorySet:
		return pacing.KindStory
	case KindSingleHighlight, KindHighlightSet:
		return pacing.KindHighlight
	case KindMediaPage, KindSavedPage, KindProfile:
		return pacing.KindPage
	case KindProfilePic:
		return pacing.KindProfilePic
	default:
		return pacing.KindPost
	}
}

// InRange reports whether the target survives enumeration-time date
// filtering. Targets without a known item time always pass; paged kinds
// are filtered item by item inside the fetch instead.
func (t Target) InRange() bool {
	if t.Taken.IsZero() {
		return true
	}
	return t.Dates.Contains(t.Taken)
}

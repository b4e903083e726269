package target

import (
	"testing"
	"time"

	"igloader/pkg/pacing"
)

func TestFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected Target
	}{
		{
			"post link",
			"https://www.instagram.com/p/CxYz123/",
			Target{Kind: KindSinglePost, Shortcode: "CxYz123"},
		},
		{
			"reel link treated as post",
			"https://www.instagram.com/reel/Dq9Ab45/",
			Target{Kind: KindSinglePost, Shortcode: "Dq9Ab45"},
		},
		{
			"story link",
			"https://www.instagram.com/stories/some_user/31415926535/",
			Target{Kind: KindSingleStory, Username: "some_user", MediaID: "31415926535"},
		},
		{
			"highlight link with owner",
			"https://www.instagram.com/some_user/stories/highlights/17900011122/",
			Target{Kind: KindSingleHighlight, Username: "some_user", HighlightID: "17900011122"},
		},
		{
			"highlight link without owner",
			"https://www.instagram.com/stories/highlights/17900011122/",
			Target{Kind: KindSingleHighlight, HighlightID: "17900011122"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FromURL(test.url)
			if err != nil {
				t.Fatalf("FromURL(%q) returned error: %v", test.url, err)
			}
			if got != test.expected {
				t.Errorf("FromURL(%q) = %+v, expected %+v", test.url, got, test.expected)
			}
		})
	}
}

func TestFromURLRejectsUnknownShapes(t *testing.T) {
	for _, raw := range []string{
		"https://www.instagram.com/",
		"https://www.instagram.com/p/",
		"https://example.com/watch?v=abc",
	} {
		if _, err := FromURL(raw); err == nil {
			t.Errorf("FromURL(%q) should fail", raw)
		}
	}
}

func TestDateRange(t *testing.T) {
	r := NewDateRange(
		time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	)

	// Since snaps to start of day, until to end of day.
	if !r.Contains(time.Date(2025, 3, 1, 0, 0, 1, 0, time.UTC)) {
		t.Error("start of first day should be in range")
	}
	if !r.Contains(time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)) {
		t.Error("end of last day should be in range")
	}
	if r.Contains(time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)) {
		t.Error("day before range should be excluded")
	}
	if r.Contains(time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC)) {
		t.Error("day after range should be excluded")
	}

	var zero DateRange
	if !zero.Contains(time.Now()) {
		t.Error("zero range should accept everything")
	}
}

func TestTargetInRange(t *testing.T) {
	dates := NewDateRange(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	)

	in := Target{Kind: KindSinglePost, Dates: dates, Taken: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
	if !in.InRange() {
		t.Error("target inside range should pass")
	}

	out := Target{Kind: KindSinglePost, Dates: dates, Taken: time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)}
	if out.InRange() {
		t.Error("target outside range should be filtered")
	}

	unknown := Target{Kind: KindSinglePost, Dates: dates}
	if !unknown.InRange() {
		t.Error("target without a known time always passes")
	}
}

func TestItemKindMapping(t *testing.T) {
	tests := []struct {
		target   Target
		expected pacing.ItemKind
	}{
		{Target{Kind: KindSinglePost}, pacing.KindPost},
		{Target{Kind: KindSingleStory}, pacing.KindStory},
		{Target{Kind: KindStorySet}, pacing.KindStory},
		{Target{Kind: KindSingleHighlight}, pacing.KindHighlight},
		{Target{Kind: KindHighlightSet}, pacing.KindHighlight},
		{Target{Kind: KindMediaPage}, pacing.KindPage},
		{Target{Kind: KindSavedPage}, pacing.KindPage},
		{Target{Kind: KindProfilePic}, pacing.KindProfilePic},
	}
	for _, test := range tests {
		if got := test.target.ItemKind(); got != test.expected {
			t.Errorf("%s: ItemKind() = %s, expected %s", test.target.Kind, got, test.expected)
		}
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		target   Target
		expected string
	}{
		{Target{Kind: KindProfile, Username: "alice"}, "profile alice"},
		{Target{Kind: KindMediaPage, Username: "alice", Page: 2}, "alice posts page 2"},
		{Target{Kind: KindSavedPage, Username: "alice", Page: 1}, "alice saved page 1"},
		{Target{Kind: KindSinglePost, Shortcode: "abc"}, "post abc"},
		{Target{Kind: KindStorySet, Username: "alice"}, "alice stories"},
	}
	for _, test := range tests {
		if got := test.target.Label(); got != test.expected {
			t.Errorf("Label() = %q, expected %q", got, test.expected)
		}
	}
}

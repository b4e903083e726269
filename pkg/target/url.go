package target

import (
	"fmt"
	"net/url"
	"strings"
)

// FromURL builds a single-item target from a shared link. Recognized
// shapes:
//
//	instagram.com/p/<shortcode>/
//	instagram.com/reel/<shortcode>/        (reels are posts)
//	instagram.com/stories/<user>/<media>/
//	instagram.com/<user>/stories/highlights/<id>/
//	instagram.com/stories/highlights/<id>/ (owner resolved by the provider)
func FromURL(raw string) (Target, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Target{}, fmt.Errorf("invalid URL %q: %w", raw, err)
	}

	parts := splitPath(u.Path)
	if len(parts) == 0 {
		return Target{}, fmt.Errorf("URL %q has no path", raw)
	}

	switch {
	case parts[0] == "p" || parts[0] == "reel":
		if len(parts) < 2 {
			return Target{}, fmt.Errorf("URL %q is missing a shortcode", raw)
		}
		return Target{Kind: KindSinglePost, Shortcode: parts[1]}, nil

	case parts[0] == "stories" && len(parts) >= 2 && parts[1] == "highlights":
		if len(parts) < 3 {
			return Target{}, fmt.Errorf("URL %q is missing a highlight id", raw)
		}
		return Target{Kind: KindSingleHighlight, HighlightID: parts[2]}, nil

	case parts[0] == "stories":
		if len(parts) < 3 {
			return Target{}, fmt.Errorf("URL %q is missing a story id", raw)
		}
		return Target{Kind: KindSingleStory, Username: parts[1], MediaID: parts[2]}, nil

	case len(parts) >= 3 && parts[1] == "stories" && parts[2] == "highlights":
		if len(parts) < 4 {
			return Target{}, fmt.Errorf("URL %q is missing a highlight id", raw)
		}
		return Target{Kind: KindSingleHighlight, Username: parts[0], HighlightID: parts[3]}, nil
	}

	return Target{}, fmt.Errorf("unrecognized URL format: %q", raw)
}

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

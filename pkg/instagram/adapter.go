package instagram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sync"
	"time"

	"igloader/pkg/engine"
	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
	"igloader/pkg/target"
)

// Category names used as per-kind subfolder hints on payloads.
const (
	CategoryPosts      = "posts"
	CategoryStories    = "stories"
	CategoryHighlights = "highlights"
	CategoryProfilePic = "profile_pic"
)

// Adapter translates scheduled targets into provider calls and provider
// responses into outcomes. It is the only place that knows endpoint
// shapes; the engine sees targets and outcomes only.
//
// The adapter caches username->userID mappings and timeline nodes seen
// during enumeration, so downloading a post discovered on a page does
// not cost a second metadata request.
type Adapter struct {
	client *Client
	log    logger.Logger

	mu      sync.Mutex
	userIDs map[string]string
	nodes   map[string]Node
}

// NewAdapter wraps a client for use as the session fetcher.
func NewAdapter(client *Client, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Adapter{
		client:  client,
		log:     log,
		userIDs: make(map[string]string),
		nodes:   make(map[string]Node),
	}
}

// Fetch performs one logical unit of work: one post, one reel, or one
// page of enumeration. Paged and composite targets surface follow-up
// work through Outcome.Next rather than fetching it eagerly.
func (a *Adapter) Fetch(ctx context.Context, t target.Target) engine.Outcome {
	switch t.Kind {
	case target.KindProfile:
		return a.fetchProfile(ctx, t)
	case target.KindMediaPage:
		return a.fetchMediaPage(ctx, t)
	case target.KindSavedPage:
		return a.fetchSavedPage(ctx, t)
	case target.KindSinglePost:
		return a.fetchPost(ctx, t)
	case target.KindSingleStory:
		return a.fetchSingleStory(ctx, t)
	case target.KindSingleHighlight:
		return a.fetchHighlight(ctx, t)
	case target.KindStorySet:
		return a.fetchStorySet(ctx, t)
	case target.KindHighlightSet:
		return a.fetchHighlightTray(ctx, t)
	case target.KindProfilePic:
		return a.fetchProfilePic(ctx, t)
	default:
		return engine.Failure(errs.Fatal(0, "unsupported target kind %s", t.Kind))
	}
}

// outcome converts a provider error into the matching outcome variant,
// folding context cancellation into the cancelled status.
func (a *Adapter) outcome(ctx context.Context, err error) engine.Outcome {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return engine.Cancelled()
	}
	return engine.Failure(err)
}

// fetchProfile resolves a profile and fans it out into the per-content
// child targets selected on the target.
func (a *Adapter) fetchProfile(ctx context.Context, t target.Target) engine.Outcome {
	user, err := a.resolveUser(ctx, t.Username)
	if err != nil {
		return a.outcome(ctx, err)
	}

	if !user.Accessible() {
		return engine.Failure(errs.Fatal(403, "profile %s is private", t.Username))
	}

	var next []target.Target
	if t.Content.Posts {
		next = append(next, target.Target{
			Kind:     target.KindMediaPage,
			Username: t.Username,
			Page:     1,
			Dates:    t.Dates,
			MaxPosts: t.MaxPosts,
		})
	}
	if t.Content.Stories {
		next = append(next, target.Target{
			Kind:     target.KindStorySet,
			Username: t.Username,
			Dates:    t.Dates,
		})
	}
	if t.Content.Highlights && user.HighlightReelCount > 0 {
		next = append(next, target.Target{
			Kind:     target.KindHighlightSet,
			Username: t.Username,
			Dates:    t.Dates,
		})
	}
	if t.Content.ProfilePic {
		next = append(next, target.Target{
			Kind:     target.KindProfilePic,
			Username: t.Username,
		})
	}

	if len(next) == 0 {
		return engine.Empty()
	}
	return engine.Success(nil, next...)
}

// fetchMediaPage enumerates one timeline page into single-post targets
// plus the continuation page. Item timestamps are attached so the
// scheduler's date filter drops out-of-range posts before any download.
func (a *Adapter) fetchMediaPage(ctx context.Context, t target.Target) engine.Outcome {
	userID, err := a.userID(ctx, t.Username)
	if err != nil {
		return a.outcome(ctx, err)
	}

	page, err := a.client.FetchMediaPage(ctx, userID, t.Cursor)
	if err != nil {
		return a.outcome(ctx, err)
	}

	timeline := page.Data.User.EdgeOwnerToTimelineMedia
	edges := timeline.Edges
	remaining := t.MaxPosts
	if remaining > 0 && len(edges) > remaining {
		edges = edges[:remaining]
	}

	var next []target.Target
	for _, edge := range edges {
		a.cacheNode(edge.Node)
		next = append(next, target.Target{
			Kind:      target.KindSinglePost,
			Username:  t.Username,
			Shortcode: edge.Node.Shortcode,
			Dates:     t.Dates,
			Taken:     edge.Node.TakenAt(),
		})
	}

	if remaining > 0 {
		remaining -= len(edges)
	}
	morePages := timeline.PageInfo.HasNextPage && (t.MaxPosts == 0 || remaining > 0)
	if morePages {
		next = append(next, target.Target{
			Kind:     target.KindMediaPage,
			Username: t.Username,
			Cursor:   timeline.PageInfo.EndCursor,
			Page:     t.Page + 1,
			Dates:    t.Dates,
			MaxPosts: remaining,
		})
	}

	if len(next) == 0 {
		return engine.Empty()
	}
	return engine.Success(nil, next...)
}

// fetchSavedPage enumerates one page of the viewer's saved collection.
func (a *Adapter) fetchSavedPage(ctx context.Context, t target.Target) engine.Outcome {
	page, err := a.client.FetchSavedPage(ctx, t.Cursor)
	if err != nil {
		return a.outcome(ctx, err)
	}

	var next []target.Target
	for _, item := range page.Items {
		next = append(next, target.Target{
			Kind:      target.KindSinglePost,
			Username:  item.Media.User.Username,
			Shortcode: item.Media.Code,
			Dates:     t.Dates,
			Taken:     timeFromUnix(item.Media.TakenAt),
		})
	}

	if page.MoreAvailable && page.NextMaxID != "" {
		next = append(next, target.Target{
			Kind:   target.KindSavedPage,
			Cursor: page.NextMaxID,
			Page:   t.Page + 1,
			Dates:  t.Dates,
		})
	}

	if len(next) == 0 {
		return engine.Empty()
	}
	return engine.Success(nil, next...)
}

// fetchPost downloads a single post's media, including every child of a
// sidecar. Nodes seen during page enumeration come from the cache; cold
// lookups by shortcode cost one metadata request.
func (a *Adapter) fetchPost(ctx context.Context, t target.Target) engine.Outcome {
	node, ok := a.cachedNode(t.Shortcode)
	if !ok {
		post, err := a.client.FetchPost(ctx, t.Shortcode)
		if err != nil {
			return a.outcome(ctx, err)
		}
		node = post.Items[0]
		a.cacheNode(node)
	}

	nodes := []Node{node}
	if node.EdgeSidecarToChildren != nil && len(node.EdgeSidecarToChildren.Edges) > 0 {
		nodes = nodes[:0]
		for _, child := range node.EdgeSidecarToChildren.Edges {
			nodes = append(nodes, child.Node)
		}
	}

	var payloads []engine.Payload
	for i, n := range nodes {
		mediaURL := n.MediaURL()
		if mediaURL == "" {
			continue
		}
		data, err := a.client.Download(ctx, mediaURL)
		if err != nil {
			return a.outcome(ctx, err)
		}
		payloads = append(payloads, engine.Payload{
			Data:     data,
			Username: t.Username,
			Category: CategoryPosts,
			Filename: postFilename(t.Shortcode, i, len(nodes), n.IsVideo, mediaURL),
			Taken:    node.TakenAt(),
		})
	}

	if len(payloads) == 0 {
		return engine.Empty()
	}
	return engine.Success(payloads)
}

// fetchStorySet downloads the user's current story reel in one unit.
// Expired or absent reels complete empty; they are not errors.
func (a *Adapter) fetchStorySet(ctx context.Context, t target.Target) engine.Outcome {
	userID, err := a.userID(ctx, t.Username)
	if err != nil {
		return a.outcome(ctx, err)
	}

	reel, err := a.client.FetchStoryReel(ctx, userID)
	if err != nil {
		return a.outcome(ctx, err)
	}

	return a.downloadReelItems(ctx, t, reel.Reel.Items, CategoryStories)
}

// fetchSingleStory downloads one story item by media id. An item that
// has expired since the URL was captured completes empty.
func (a *Adapter) fetchSingleStory(ctx context.Context, t target.Target) engine.Outcome {
	userID, err := a.userID(ctx, t.Username)
	if err != nil {
		return a.outcome(ctx, err)
	}

	reel, err := a.client.FetchStoryReel(ctx, userID)
	if err != nil {
		return a.outcome(ctx, err)
	}

	for _, item := range reel.Reel.Items {
		if item.ID == t.MediaID {
			return a.downloadReelItems(ctx, t, []ReelItem{item}, CategoryStories)
		}
	}
	return engine.Empty()
}

// fetchHighlightTray enumerates the user's highlight reels into
// per-highlight targets.
func (a *Adapter) fetchHighlightTray(ctx context.Context, t target.Target) engine.Outcome {
	userID, err := a.userID(ctx, t.Username)
	if err != nil {
		return a.outcome(ctx, err)
	}

	tray, err := a.client.FetchHighlightTray(ctx, userID)
	if err != nil {
		return a.outcome(ctx, err)
	}

	var next []target.Target
	for _, reel := range tray.Tray {
		next = append(next, target.Target{
			Kind:        target.KindSingleHighlight,
			Username:    t.Username,
			HighlightID: reel.ID,
			Dates:       t.Dates,
		})
	}

	if len(next) == 0 {
		return engine.Empty()
	}
	return engine.Success(nil, next...)
}

// fetchHighlight downloads one highlight reel's items in one unit.
func (a *Adapter) fetchHighlight(ctx context.Context, t target.Target) engine.Outcome {
	reel, err := a.client.FetchHighlight(ctx, t.HighlightID)
	if err != nil {
		return a.outcome(ctx, err)
	}

	return a.downloadReelItems(ctx, t, reel.Reel.Items, CategoryHighlights)
}

// fetchProfilePic downloads the HD profile picture.
func (a *Adapter) fetchProfilePic(ctx context.Context, t target.Target) engine.Outcome {
	user, err := a.resolveUser(ctx, t.Username)
	if err != nil {
		return a.outcome(ctx, err)
	}
	if user.ProfilePicURLHD == "" {
		return engine.Empty()
	}

	data, err := a.client.Download(ctx, user.ProfilePicURLHD)
	if err != nil {
		return a.outcome(ctx, err)
	}

	return engine.Success([]engine.Payload{{
		Data:     data,
		Username: t.Username,
		Category: CategoryProfilePic,
		Filename: fmt.Sprintf("%s_profile_pic%s", t.Username, extFromURL(user.ProfilePicURLHD, false)),
	}})
}

// downloadReelItems downloads the in-range items of a reel as one batch.
func (a *Adapter) downloadReelItems(ctx context.Context, t target.Target, items []ReelItem, category string) engine.Outcome {
	var payloads []engine.Payload
	for _, item := range items {
		if !t.Dates.Contains(item.Taken()) && !item.Taken().IsZero() {
			continue
		}
		mediaURL := item.BestURL()
		if mediaURL == "" {
			continue
		}
		data, err := a.client.Download(ctx, mediaURL)
		if err != nil {
			return a.outcome(ctx, err)
		}
		payloads = append(payloads, engine.Payload{
			Data:     data,
			Username: t.Username,
			Category: category,
			Filename: item.ID + extFromURL(mediaURL, item.IsVideo()),
			Taken:    item.Taken(),
		})
	}

	if len(payloads) == 0 {
		return engine.Empty()
	}
	return engine.Success(payloads)
}

// resolveUser fetches a profile once and memoizes the id mapping.
func (a *Adapter) resolveUser(ctx context.Context, username string) (*User, error) {
	profile, err := a.client.FetchProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	user := profile.Data.User

	a.mu.Lock()
	a.userIDs[username] = user.ID
	a.mu.Unlock()

	return &user, nil
}

// userID returns the cached id for a username, resolving the profile on
// a cache miss.
func (a *Adapter) userID(ctx context.Context, username string) (string, error) {
	a.mu.Lock()
	id, ok := a.userIDs[username]
	a.mu.Unlock()
	if ok {
		return id, nil
	}

	user, err := a.resolveUser(ctx, username)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (a *Adapter) cacheNode(n Node) {
	if n.Shortcode == "" {
		return
	}
	a.mu.Lock()
	a.nodes[n.Shortcode] = n
	a.mu.Unlock()
}

func (a *Adapter) cachedNode(shortcode string) (Node, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.nodes[shortcode]
	return n, ok
}

// postFilename names a post's media file. Sidecar children get a
// 1-based suffix so a multi-photo post keeps all its files.
func postFilename(shortcode string, index, total int, isVideo bool, mediaURL string) string {
	ext := extFromURL(mediaURL, isVideo)
	if total > 1 {
		return fmt.Sprintf("%s_%d%s", shortcode, index+1, ext)
	}
	return shortcode + ext
}

// extFromURL extracts the file extension from a CDN URL path, falling
// back to the media type when the path has none.
func extFromURL(mediaURL string, isVideo bool) string {
	if u, err := url.Parse(mediaURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" {
			return ext
		}
	}
	if isVideo {
		return ".mp4"
	}
	return ".jpg"
}

func timeFromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

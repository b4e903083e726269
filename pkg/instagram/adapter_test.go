package instagram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloader/pkg/engine"
	"igloader/pkg/logger"
	"igloader/pkg/target"
)

// fakeProvider serves enough of the provider's endpoints for adapter
// tests: one profile, a two-page timeline, a story reel and a highlight
// tray.
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc(ProfileEndpoint, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"data": {"user": {
				"id": "111",
				"username": "alice",
				"profile_pic_url_hd": "%s/cdn/alice_hd.jpg",
				"highlight_reel_count": 1,
				"edge_owner_to_timeline_media": {"count": 3, "page_info": {"has_next_page": false}, "edges": []}
			}},
			"status": "ok"
		}`, server.URL)
	})

	mux.HandleFunc(MediaEndpoint, func(w http.ResponseWriter, r *http.Request) {
		variables := r.URL.Query().Get("variables")
		if strings.Contains(variables, `"after":"CURSOR1"`) {
			fmt.Fprintf(w, `{"data": {"user": {"edge_owner_to_timeline_media": {
				"page_info": {"has_next_page": false, "end_cursor": ""},
				"edges": [{"node": {"id": "3", "shortcode": "ccc", "display_url": "%s/cdn/ccc.jpg", "taken_at_timestamp": 1700000300}}]
			}}}, "status": "ok"}`, server.URL)
			return
		}
		fmt.Fprintf(w, `{"data": {"user": {"edge_owner_to_timeline_media": {
			"page_info": {"has_next_page": true, "end_cursor": "CURSOR1"},
			"edges": [
				{"node": {"id": "1", "shortcode": "aaa", "display_url": "%s/cdn/aaa.jpg", "taken_at_timestamp": 1700000100}},
				{"node": {"id": "2", "shortcode": "bbb", "display_url": "%s/cdn/bbb.jpg", "is_video": true, "video_url": "%s/cdn/bbb.mp4", "taken_at_timestamp": 1700000200}}
			]
		}}}, "status": "ok"}`, server.URL, server.URL, server.URL)
	})

	mux.HandleFunc(ReelsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("reel_ids"), "highlight:") {
			fmt.Fprintf(w, `{"reel": {"id": "highlight:h1", "items": [
				{"id": "hl1", "media_type": 1, "taken_at": 1700000500, "image_versions2": {"candidates": [{"url": "%s/cdn/hl1.jpg", "width": 1080}]}}
			]}, "status": "ok"}`, server.URL)
			return
		}
		fmt.Fprintf(w, `{"reel": {"id": "111", "items": [
			{"id": "st1", "media_type": 1, "taken_at": 1700000400, "image_versions2": {"candidates": [{"url": "%s/cdn/st1.jpg", "width": 1080}]}},
			{"id": "st2", "media_type": 2, "taken_at": 1700000450, "video_versions": [{"url": "%s/cdn/st2.mp4", "width": 720}]}
		]}, "status": "ok"}`, server.URL, server.URL)
	})

	mux.HandleFunc("/api/v1/highlights/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tray": [{"id": "h1", "title": "travel"}], "status": "ok"}`))
	})

	mux.HandleFunc("/api/v1/media/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items": [{"id": "9", "shortcode": "zzz", "display_url": "%s/cdn/zzz.jpg", "taken_at_timestamp": 1700000900}], "status": "ok"}`, server.URL)
	})

	mux.HandleFunc(SavedEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"media": {"code": "sv1", "taken_at": 1700000600, "user": {"username": "bob"}}}
		], "more_available": false, "status": "ok"}`))
	})

	mux.HandleFunc("/cdn/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "bytes-of-%s", strings.TrimPrefix(r.URL.Path, "/cdn/"))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestAdapter(t *testing.T) *Adapter {
	server := fakeProvider(t)
	client := NewClient(5*time.Second, nil, logger.NewTestLogger())
	client.SetBaseURL(server.URL)
	return NewAdapter(client, logger.NewTestLogger())
}

func TestAdapterProfileFansOutSelectedContent(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindProfile,
		Username: "alice",
		Content:  target.Everything(),
	})

	require.Equal(t, engine.StatusSuccess, out.Status)
	kinds := make([]target.Kind, 0, len(out.Next))
	for _, n := range out.Next {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []target.Kind{
		target.KindMediaPage,
		target.KindStorySet,
		target.KindHighlightSet,
		target.KindProfilePic,
	}, kinds)
}

func TestAdapterProfilePostsOnly(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindProfile,
		Username: "alice",
		Content:  target.ContentKinds{Posts: true},
	})

	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Next, 1)
	assert.Equal(t, target.KindMediaPage, out.Next[0].Kind)
	assert.Equal(t, 1, out.Next[0].Page)
}

func TestAdapterMediaPageEnumeratesPostsAndContinuation(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindMediaPage,
		Username: "alice",
		Page:     1,
	})

	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Next, 3)
	assert.Equal(t, "aaa", out.Next[0].Shortcode)
	assert.Equal(t, "bbb", out.Next[1].Shortcode)
	assert.False(t, out.Next[0].Taken.IsZero())

	cont := out.Next[2]
	assert.Equal(t, target.KindMediaPage, cont.Kind)
	assert.Equal(t, "CURSOR1", cont.Cursor)
	assert.Equal(t, 2, cont.Page)
}

func TestAdapterMediaPageHonorsMaxPosts(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindMediaPage,
		Username: "alice",
		MaxPosts: 1,
	})

	require.Equal(t, engine.StatusSuccess, out.Status)
	// One post, no continuation: the cap is spent.
	require.Len(t, out.Next, 1)
	assert.Equal(t, target.KindSinglePost, out.Next[0].Kind)
}

func TestAdapterPostDownloadsCachedNodeWithoutLookup(t *testing.T) {
	a := newTestAdapter(t)

	// Enumerate first so the node is cached.
	pageOut := a.Fetch(context.Background(), target.Target{Kind: target.KindMediaPage, Username: "alice"})
	require.Equal(t, engine.StatusSuccess, pageOut.Status)

	out := a.Fetch(context.Background(), pageOut.Next[1])

	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Payloads, 1)
	assert.Equal(t, "bbb.mp4", out.Payloads[0].Filename)
	assert.Equal(t, CategoryPosts, out.Payloads[0].Category)
	assert.Equal(t, []byte("bytes-of-bbb.mp4"), out.Payloads[0].Data)
}

func TestAdapterPostColdLookup(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:      target.KindSinglePost,
		Username:  "alice",
		Shortcode: "zzz",
	})

	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Payloads, 1)
	assert.Equal(t, "zzz.jpg", out.Payloads[0].Filename)
}

func TestAdapterStorySetDownloadsReel(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindStorySet,
		Username: "alice",
	})

	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Payloads, 2)
	assert.Equal(t, "st1.jpg", out.Payloads[0].Filename)
	assert.Equal(t, "st2.mp4", out.Payloads[1].Filename)
	assert.Equal(t, CategoryStories, out.Payloads[0].Category)
}

func TestAdapterSingleStoryExpiredIsEmpty(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindSingleStory,
		Username: "alice",
		MediaID:  "gone",
	})

	assert.Equal(t, engine.StatusEmpty, out.Status)
}

func TestAdapterHighlightTrayAndReel(t *testing.T) {
	a := newTestAdapter(t)

	trayOut := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindHighlightSet,
		Username: "alice",
	})
	require.Equal(t, engine.StatusSuccess, trayOut.Status)
	require.Len(t, trayOut.Next, 1)
	assert.Equal(t, "h1", trayOut.Next[0].HighlightID)

	out := a.Fetch(context.Background(), trayOut.Next[0])
	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Payloads, 1)
	assert.Equal(t, CategoryHighlights, out.Payloads[0].Category)
}

func TestAdapterProfilePic(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindProfilePic,
		Username: "alice",
	})

	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Payloads, 1)
	assert.Equal(t, "alice_profile_pic.jpg", out.Payloads[0].Filename)
	assert.Equal(t, CategoryProfilePic, out.Payloads[0].Category)
}

func TestAdapterSavedPageEnumerates(t *testing.T) {
	a := newTestAdapter(t)

	out := a.Fetch(context.Background(), target.Target{Kind: target.KindSavedPage})

	require.Equal(t, engine.StatusSuccess, out.Status)
	require.Len(t, out.Next, 1)
	assert.Equal(t, "sv1", out.Next[0].Shortcode)
	assert.Equal(t, "bob", out.Next[0].Username)
}

func TestAdapterDateFilterSkipsReelItems(t *testing.T) {
	a := newTestAdapter(t)

	// Range well before every fake item's timestamp.
	dates := target.NewDateRange(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	out := a.Fetch(context.Background(), target.Target{
		Kind:     target.KindStorySet,
		Username: "alice",
		Dates:    dates,
	})

	assert.Equal(t, engine.StatusEmpty, out.Status)
}

func TestAdapterClassifiesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "90")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, nil, logger.NewTestLogger())
	client.SetBaseURL(server.URL)
	a := NewAdapter(client, logger.NewTestLogger())

	out := a.Fetch(context.Background(), target.Target{Kind: target.KindProfile, Username: "alice", Content: target.Everything()})

	assert.Equal(t, engine.StatusRateLimited, out.Status)
	assert.Equal(t, 90*time.Second, out.RetryAfter)
}

func TestAdapterCancelledContext(t *testing.T) {
	a := newTestAdapter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := a.Fetch(ctx, target.Target{Kind: target.KindProfile, Username: "alice", Content: target.Everything()})

	assert.Equal(t, engine.StatusCancelled, out.Status)
}

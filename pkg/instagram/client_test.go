package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(5*time.Second, nil, logger.NewTestLogger())
	c.SetBaseURL(serverURL)
	return c
}

func TestFetchProfileSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ProfileEndpoint, r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {"user": {
				"id": "12345",
				"username": "alice",
				"profile_pic_url_hd": "https://cdn.example/alice.jpg",
				"edge_owner_to_timeline_media": {
					"count": 2,
					"page_info": {"has_next_page": false, "end_cursor": ""},
					"edges": []
				}
			}},
			"status": "ok"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	profile, err := client.FetchProfile(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, "12345", profile.Data.User.ID)
	assert.Equal(t, 2, profile.Data.User.EdgeOwnerToTimelineMedia.Count)
}

func TestFetchProfileLoginRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"requires_to_login": true, "status": "ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchProfile(context.Background(), "alice")

	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeFatal, errs.TypeOf(err))
}

func TestFetchProfileUnknownUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"user": {}}, "status": "ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchProfile(context.Background(), "ghost")

	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeFatal, errs.TypeOf(err))
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType errs.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, errs.ErrorTypeFatal},
		{"forbidden", http.StatusForbidden, errs.ErrorTypeFatal},
		{"not found", http.StatusNotFound, errs.ErrorTypeFatal},
		{"rate limited", http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{"server error", http.StatusInternalServerError, errs.ErrorTypeTransient},
		{"bad gateway", http.StatusBadGateway, errs.ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.FetchProfile(context.Background(), "alice")

			require.Error(t, err)
			assert.Equal(t, tt.wantType, errs.TypeOf(err))
		})
	}
}

func TestRateLimitCarriesRetryAfterHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchProfile(context.Background(), "alice")

	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeRateLimit, errs.TypeOf(err))
	assert.Equal(t, 2*time.Minute, errs.RetryAfterHint(err))
}

func TestNetworkErrorIsTransient(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.FetchProfile(context.Background(), "alice")

	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeTransient, errs.TypeOf(err))
}

func TestContextCancellationPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	client := newTestClient(server.URL)
	start := time.Now()
	_, err := client.FetchProfile(ctx, "alice")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDownloadReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary media bytes"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	data, err := client.Download(context.Background(), server.URL+"/media.jpg")

	require.NoError(t, err)
	assert.Equal(t, []byte("binary media bytes"), data)
}

func TestSetSessionInstallsCookie(t *testing.T) {
	var gotCookie, gotCSRF string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotCSRF = r.Header.Get("X-CSRFToken")
		w.Write([]byte(`{"items": [], "status": "ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetSession("sess123", "csrf456")
	client.FetchSavedPage(context.Background(), "")

	assert.Contains(t, gotCookie, "sessionid=sess123")
	assert.Equal(t, "csrf456", gotCSRF)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, 30*time.Second, parseRetryAfter("30"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT"))
}

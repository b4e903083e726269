package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
	"igloader/pkg/ratelimit"
)

// Client talks to the provider's web endpoints. It classifies every
// failure into the retry taxonomy and never retries by itself; the
// session controller owns retry policy.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a client with browser-shaped headers. A nil limiter
// disables the hard request-rate guard.
func NewClient(timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Pragma":          "no-cache",
			"Sec-Fetch-Dest":  "document",
			"Sec-Fetch-Mode":  "navigate",
			"Sec-Fetch-Site":  "none",
			"Sec-Fetch-User":  "?1",
			"X-IG-App-ID":     "936619743392459",
		},
		baseURL: BaseURL,
		limiter: limiter,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetSession installs the authenticated session cookie and CSRF token.
func (c *Client) SetSession(sessionID, csrfToken string) {
	c.headers["Cookie"] = fmt.Sprintf("sessionid=%s; csrftoken=%s", sessionID, csrfToken)
	c.headers["X-CSRFToken"] = csrfToken
}

// SetBaseURL points the client at a different host, used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// doRequest performs one HTTP request with the configured headers,
// waiting on the rate guard first. All failure paths come back as
// classified errors.
func (c *Client) doRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req = req.WithContext(ctx)

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Transient(0, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// get performs a GET against an absolute URL.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Fatal(0, "failed to create request: %v", err)
	}
	return c.doRequest(ctx, req)
}

// getJSON performs a GET and decodes the JSON response into target.
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Transient(resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		// A non-JSON body at 200 is usually the login interstitial.
		return errs.Fatal(resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}

// checkResponseStatus maps HTTP status codes onto the retry taxonomy.
// 429 carries the Retry-After hint through when the provider sends one.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		hint := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status":      resp.StatusCode,
			"url":         resp.Request.URL.String(),
			"retry_after": hint,
		})
		return errs.RateLimited(resp.StatusCode, hint, "rate limit exceeded")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.Fatal(resp.StatusCode, "authentication required")
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.Fatal(resp.StatusCode, "resource not found")
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.Transient(resp.StatusCode, "server error")
	case resp.StatusCode >= 400:
		c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.Fatal(resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
	default:
		return nil
	}
}

// parseRetryAfter handles the delta-seconds form of the header. The
// HTTP-date form is rare here and falls back to zero, which lets the
// pacing policy's critical wait take over.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// FetchProfile fetches a user's profile, including the media count and
// the first timeline page.
func (c *Client) FetchProfile(ctx context.Context, username string) (*ProfileResponse, error) {
	url := GetProfileURL(c.baseURL, username)

	var response ProfileResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	if response.RequiresToLogin {
		return nil, errs.Fatal(http.StatusUnauthorized, "login required to view profile %s", username)
	}
	if response.Data.User.ID == "" {
		return nil, errs.Fatal(http.StatusNotFound, "profile %s not found", username)
	}

	return &response, nil
}

// FetchMediaPage fetches one page of a user's timeline media.
func (c *Client) FetchMediaPage(ctx context.Context, userID, after string) (*MediaPageResponse, error) {
	url := GetMediaURL(c.baseURL, userID, after)

	var response MediaPageResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchPost fetches a single post or reel by shortcode.
func (c *Client) FetchPost(ctx context.Context, shortcode string) (*PostResponse, error) {
	url := GetPostInfoURL(c.baseURL, shortcode)

	var response PostResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	if len(response.Items) == 0 {
		return nil, errs.Fatal(http.StatusNotFound, "post %s not found", shortcode)
	}
	return &response, nil
}

// FetchStoryReel fetches the user's current story reel. An expired or
// absent reel comes back with zero items, not an error.
func (c *Client) FetchStoryReel(ctx context.Context, userID string) (*ReelResponse, error) {
	url := GetStoryReelURL(c.baseURL, userID)

	var response ReelResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchHighlightTray fetches the list of a user's highlight reels.
func (c *Client) FetchHighlightTray(ctx context.Context, userID string) (*HighlightTrayResponse, error) {
	url := GetHighlightTrayURL(c.baseURL, userID)

	var response HighlightTrayResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchHighlight fetches the items of one highlight reel.
func (c *Client) FetchHighlight(ctx context.Context, highlightID string) (*ReelResponse, error) {
	url := GetHighlightURL(c.baseURL, highlightID)

	var response ReelResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchSavedPage fetches one page of the authenticated account's saved
// collection. Requires a session cookie.
func (c *Client) FetchSavedPage(ctx context.Context, after string) (*SavedPageResponse, error) {
	url := GetSavedURL(c.baseURL, after)

	var response SavedPageResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Download fetches raw media bytes from a CDN URL.
func (c *Client) Download(ctx context.Context, mediaURL string) ([]byte, error) {
	resp, err := c.get(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Transient(resp.StatusCode, "failed to read media body: %v", err)
	}

	c.logger.DebugWithFields("downloaded media", map[string]interface{}{
		"url":  mediaURL,
		"size": len(data),
	})

	return data, nil
}

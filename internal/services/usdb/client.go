package usdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to the UltraStar song database over its form-based HTTP
// surface. A session cookie from Login authenticates later downloads.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient constructs a database client.
func NewClient(baseURL, username, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("usdb: cookie jar: %w", err)
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}, nil
}

// NewClientWithHTTP injects a custom HTTP client (used in tests).
func NewClientWithHTTP(baseURL, username, password string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     httpClient,
	}
}

// Login establishes an authenticated session. The database answers 200 even
// on bad credentials, so the response body is checked for the login form.
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return fmt.Errorf("usdb: credentials not configured")
	}
	form := url.Values{
		"user": {c.username},
		"pass": {c.password},
		"login": {"Login"},
	}
	body, err := c.post(ctx, "/index.php?link=login", form)
	if err != nil {
		return err
	}
	if strings.Contains(body, "Login or Password invalid") {
		return fmt.Errorf("usdb: login rejected for user %q", c.username)
	}
	return nil
}

// DownloadSong fetches the tagged lyrics text for a numeric song id.
func (c *Client) DownloadSong(ctx context.Context, songID int) (string, error) {
	form := url.Values{"wd": {"1"}}
	body, err := c.post(ctx, fmt.Sprintf("/index.php?link=gettxt&id=%d", songID), form)
	if err != nil {
		return "", err
	}
	txt := extractSongText(body)
	if txt == "" {
		return "", fmt.Errorf("usdb: no song text in response for id %d (not logged in?)", songID)
	}
	return txt, nil
}

// DownloadCover fetches the cover image bytes for a song id, when one exists.
func (c *Client) DownloadCover(ctx context.Context, songID int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/data/cover/%d.jpg", c.baseURL, songID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usdb: cover request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("usdb: cover request: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("usdb: request %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("usdb: request %s: status %d", path, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("usdb: read response: %w", err)
	}
	return string(data), nil
}

// extractSongText pulls the tagged song text out of the gettxt response. The
// page wraps it in a textarea; a response that is already bare tagged text is
// passed through.
func extractSongText(body string) string {
	if idx := strings.Index(body, "<textarea"); idx >= 0 {
		rest := body[idx:]
		open := strings.Index(rest, ">")
		closeTag := strings.Index(rest, "</textarea>")
		if open >= 0 && closeTag > open {
			return strings.TrimSpace(rest[open+1 : closeTag])
		}
		return ""
	}
	if strings.HasPrefix(strings.TrimSpace(body), "#") {
		return strings.TrimSpace(body)
	}
	return ""
}

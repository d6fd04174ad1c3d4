// Package instagram posts videos as Reels through Instagram's private
// mobile API. Sessions persist to disk so repeated runs reuse the same
// device identity instead of logging in fresh each time.
package instagram

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"clipcast/internal/config"
	"clipcast/internal/model"
	"clipcast/internal/util"
)

const (
	apiBase          = "https://i.instagram.com/api/v1"
	defaultUserAgent = "Instagram 275.0.0.27.98 Android (33/13; 420dpi; 1080x2219; Google/google; Pixel 7; panther; armv8l; en_US)"
)

// Client talks to the Instagram private API on behalf of one account.
type Client struct {
	username    string
	password    string
	sessionPath string
	baseURL     string

	http *http.Client
	sess *session

	// runner reaches ffmpeg for cover frame extraction.
	runner  util.CmdRunner
	verbose bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, used by tests to point at a
// local server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL points API calls at a different host, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRunner overrides the subprocess runner used for cover extraction.
func WithRunner(r util.CmdRunner) Option {
	return func(c *Client) { c.runner = r }
}

// NewClient builds a Client from the instagram.* config section.
func NewClient(cfg *config.Manager, opts ...Option) *Client {
	c := &Client{
		username:    cfg.GetString("instagram.username"),
		password:    cfg.GetString("instagram.password"),
		sessionPath: cfg.GetString("instagram.session_path"),
		baseURL:     apiBase,
		http:        &http.Client{Timeout: 60 * time.Second},
		verbose:     cfg.GetBool("app.verbose"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = util.NewDefaultRunner()
	}
	return c
}

// Authenticate restores a saved session or performs a fresh login.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.sess != nil {
		return nil
	}
	if c.username == "" || c.password == "" {
		return model.NewPlatformError(model.PlatformInstagram, model.ErrAuth,
			errors.New("instagram username and password are not configured"))
	}

	if sess, err := loadSession(c.sessionPath); err == nil && sess.Username == c.username {
		c.sess = sess
		if c.verifySession(ctx) {
			log.Info().Str("username", c.username).Msg("Instagram session restored")
			return nil
		}
		log.Warn().Msg("saved Instagram session is stale, logging in again")
		c.sess = nil
	}

	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) error {
	sess := &session{
		Username:  c.username,
		UUID:      randomHex(16),
		DeviceID:  "android-" + randomHex(8),
		UserAgent: defaultUserAgent,
		Cookies:   map[string]string{},
	}
	c.sess = sess

	// A throwaway GET seeds the csrf token cookie the login form requires.
	if _, err := c.call(ctx, http.MethodGet, "/si/fetch_headers/", nil, nil); err != nil {
		c.sess = nil
		return err
	}

	form := url.Values{
		"username":            {c.username},
		"password":            {c.password},
		"guid":                {sess.UUID},
		"device_id":           {sess.DeviceID},
		"login_attempt_count": {"0"},
		"_csrftoken":          {sess.CSRFToken},
	}

	body, err := c.call(ctx, http.MethodPost, "/accounts/login/", nil, strings.NewReader(form.Encode()))
	if err != nil {
		c.sess = nil
		return err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.sess = nil
		return model.NewPlatformError(model.PlatformInstagram, nil, fmt.Errorf("decode login response: %w", err))
	}
	if resp.Status != "ok" {
		c.sess = nil
		return classifyAPI(resp.apiResponse, 0)
	}

	sess.UserID = fmt.Sprintf("%d", resp.LoggedInUser.PK)
	if err := saveSession(c.sessionPath, sess); err != nil {
		log.Warn().Err(err).Msg("failed to persist Instagram session")
	} else {
		log.Info().Str("path", c.sessionPath).Msg("Instagram session saved")
	}
	log.Info().Str("username", c.username).Msg("Instagram login successful")
	return nil
}

// verifySession makes a cheap authenticated call to confirm the cookies
// still work.
func (c *Client) verifySession(ctx context.Context) bool {
	body, err := c.call(ctx, http.MethodGet, "/accounts/current_user/", nil, nil)
	if err != nil {
		return false
	}
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.Status == "ok"
}

// invalidateSession drops the cached session on auth failures so the next
// run logs in from scratch.
func (c *Client) invalidateSession() {
	c.sess = nil
	if err := os.Remove(c.sessionPath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to remove stale session file")
	}
}

// call performs one API request, tracking cookies and csrf tokens in the
// session, and classifies error responses.
func (c *Client) call(ctx context.Context, method, path string, headers map[string]string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, model.NewPlatformError(model.PlatformInstagram, nil, err)
	}
	req.Header.Set("User-Agent", c.sess.UserAgent)
	req.Header.Set("Accept-Language", "en-US")
	if method == http.MethodPost && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for name, value := range c.sess.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, model.NewPlatformError(model.PlatformInstagram, model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		c.sess.Cookies[ck.Name] = ck.Value
		if ck.Name == "csrftoken" {
			c.sess.CSRFToken = ck.Value
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, model.NewPlatformError(model.PlatformInstagram, model.ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		var api apiResponse
		_ = json.Unmarshal(data, &api)
		cerr := classifyAPI(api, resp.StatusCode)
		if errors.Is(cerr, model.ErrAuth) {
			c.invalidateSession()
		}
		return nil, cerr
	}
	return data, nil
}

// classifyAPI maps Instagram error responses onto the shared failure
// classes.
func classifyAPI(api apiResponse, statusCode int) error {
	msg := api.Message
	if msg == "" {
		msg = fmt.Sprintf("instagram api error (status %d)", statusCode)
	}
	cause := errors.New(msg)

	switch api.ErrorType {
	case "bad_password", "invalid_user":
		return model.NewPlatformError(model.PlatformInstagram, model.ErrAuth, cause)
	case "checkpoint_challenge_required", "challenge_required":
		return model.NewPlatformError(model.PlatformInstagram, model.ErrAuth,
			fmt.Errorf("account challenge required, resolve it in the Instagram app: %w", cause))
	case "feedback_required":
		return model.NewPlatformError(model.PlatformInstagram, model.ErrAuth, cause)
	case "login_required":
		return model.NewPlatformError(model.PlatformInstagram, model.ErrAuth, cause)
	case "rate_limit_error":
		return model.NewPlatformError(model.PlatformInstagram, model.ErrRateLimited, cause)
	}

	switch {
	case statusCode == 401 || statusCode == 403:
		return model.NewPlatformError(model.PlatformInstagram, model.ErrAuth, cause)
	case statusCode == 429 || strings.Contains(strings.ToLower(msg), "wait a few minutes"):
		return model.NewPlatformError(model.PlatformInstagram, model.ErrRateLimited, cause)
	case statusCode >= 500:
		return model.NewPlatformError(model.PlatformInstagram, model.ErrNetwork, cause)
	}
	return model.NewPlatformError(model.PlatformInstagram, nil, cause)
}

func loadSession(path string) (*session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Cookies == nil {
		s.Cookies = map[string]string{}
	}
	return &s, nil
}

func saveSession(path string, s *session) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

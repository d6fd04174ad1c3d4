package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipcast/internal/model"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{
		username:    "creator",
		password:    "hunter2",
		sessionPath: filepath.Join(t.TempDir(), "session.json"),
		baseURL:     srv.URL + "/api/v1",
		http:        srv.Client(),
	}
}

func TestLoginSuccessPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/si/fetch_headers/":
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok123"})
			w.Write([]byte(`{"status":"ok"}`))
		case "/api/v1/accounts/login/":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "creator", r.FormValue("username"))
			assert.Equal(t, "tok123", r.FormValue("_csrftoken"))
			http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "sess456"})
			json.NewEncoder(w).Encode(map[string]any{
				"status":         "ok",
				"logged_in_user": map[string]any{"pk": 42, "username": "creator"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	require.NoError(t, c.Authenticate(context.Background()))
	assert.Equal(t, "42", c.sess.UserID)
	assert.Equal(t, "sess456", c.sess.Cookies["sessionid"])

	saved, err := loadSession(c.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, "creator", saved.Username)
	assert.Equal(t, "tok123", saved.CSRFToken)
}

func TestLoginBadPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/si/fetch_headers/" {
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		w.Write([]byte(`{"status":"fail","message":"The password you entered is incorrect.","error_type":"bad_password"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	err := c.Authenticate(context.Background())
	assert.ErrorIs(t, err, model.ErrAuth)
	assert.Nil(t, c.sess)
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	c := &Client{sessionPath: filepath.Join(t.TempDir(), "s.json")}
	err := c.Authenticate(context.Background())
	assert.ErrorIs(t, err, model.ErrAuth)
}

func TestSessionRestoreSkipsLogin(t *testing.T) {
	var loginCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/accounts/current_user/":
			w.Write([]byte(`{"status":"ok"}`))
		case "/api/v1/accounts/login/":
			loginCalls++
			w.Write([]byte(`{"status":"ok"}`))
		default:
			w.Write([]byte(`{"status":"ok"}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	require.NoError(t, saveSession(c.sessionPath, &session{
		Username:  "creator",
		UserID:    "42",
		UserAgent: defaultUserAgent,
		Cookies:   map[string]string{"sessionid": "cached"},
	}))

	require.NoError(t, c.Authenticate(context.Background()))
	assert.Zero(t, loginCalls)
	assert.Equal(t, "42", c.sess.UserID)
}

func TestClassifyAPI(t *testing.T) {
	tests := []struct {
		name   string
		api    apiResponse
		status int
		class  error
	}{
		{"login required", apiResponse{ErrorType: "login_required"}, 0, model.ErrAuth},
		{"challenge", apiResponse{ErrorType: "challenge_required"}, 0, model.ErrAuth},
		{"rate limit type", apiResponse{ErrorType: "rate_limit_error"}, 0, model.ErrRateLimited},
		{"rate limit status", apiResponse{Message: "Please wait a few minutes"}, 429, model.ErrRateLimited},
		{"server error", apiResponse{}, 502, model.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyAPI(tt.api, tt.status)
			assert.ErrorIs(t, err, tt.class)

			var perr *model.PlatformError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, model.PlatformInstagram, perr.Platform)
		})
	}
}

func TestTranscodePending(t *testing.T) {
	assert.True(t, transcodePending(assertErr("Transcode not finished yet.")))
	assert.True(t, transcodePending(assertErr("media not found or unavailable")))
	assert.False(t, transcodePending(assertErr("feedback_required")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

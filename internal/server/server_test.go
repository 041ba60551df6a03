package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonightshift/scosim/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Users:      map[string]string{"root": "uucp56k", "guest": "guest"},
		APIKey:     "test-key",
		JWTSecret:  "test-secret",
		HistoryMax: 100,
		Host:       "127.0.0.1",
		Port:       0,
		LogLevel:   "error",
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := New(testConfig())
	t.Cleanup(s.sessions.CloseAll)
	return s
}

func doJSON(s *Server, method, url string, body any, apiKey string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthNeedsNoAuth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(s, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "scosim", resp["service"])
}

func TestAPIRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(s, "GET", "/api/sessions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(s, "GET", "/api/sessions", nil, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(s, "GET", "/api/sessions", nil, "test-key")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIssueTokenAndUseIt(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(s, "POST", "/auth/token", map[string]string{"api_key": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(s, "POST", "/auth/token", map[string]string{"api_key": "test-key", "user": "guest"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	assert.Equal(t, "guest", resp["user"])

	w = doJSON(s, "GET", "/api/sessions", nil, resp["token"])
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateSessionUnknownUser(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(s, "POST", "/api/session", map[string]any{"user": "mallory"}, "test-key")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func createSession(t *testing.T, s *Server) Session {
	t.Helper()
	w := doJSON(s, "POST", "/api/session", map[string]any{"skip_dialin": true}, "test-key")
	require.Equal(t, http.StatusCreated, w.Code)

	var sess Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)
	return sess
}

func drainOutput(t *testing.T, s *Server, id string) string {
	t.Helper()
	w := doJSON(s, "GET", "/api/session/"+id+"/output", nil, "test-key")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Output string `json:"output"`
		Done   bool   `json:"done"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Output
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	sess := createSession(t, s)

	assert.Equal(t, "root", sess.User)
	assert.Contains(t, ttyLines, sess.TTY)

	// login banner is buffered before the first drain
	var banner string
	require.Eventually(t, func() bool {
		banner += drainOutput(t, s, sess.ID)
		return strings.Contains(banner, "SCO UNIX System V/386 Release 3.2")
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, banner, "CONNECT 14400", "skip_dialin should bypass the modem")

	w := doJSON(s, "POST", "/api/session/"+sess.ID+"/input", map[string]string{"line": "pwd"}, "test-key")
	require.Equal(t, http.StatusOK, w.Code)

	var out string
	require.Eventually(t, func() bool {
		out += drainOutput(t, s, sess.ID)
		return strings.Contains(out, "/\n")
	}, 2*time.Second, 10*time.Millisecond)

	w = doJSON(s, "DELETE", "/api/session/"+sess.ID, nil, "test-key")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, "GET", "/api/session/"+sess.ID+"/output", nil, "test-key")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionLogoutMarksDone(t *testing.T) {
	s := newTestServer(t)
	sess := createSession(t, s)

	w := doJSON(s, "POST", "/api/session/"+sess.ID+"/input", map[string]string{"line": "logout"}, "test-key")
	require.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool {
		live, err := s.sessions.Get(sess.ID)
		require.NoError(t, err)
		return live.Done()
	}, 2*time.Second, 10*time.Millisecond)

	// input on a dead line is rejected
	w = doJSON(s, "POST", "/api/session/"+sess.ID+"/input", map[string]string{"line": "pwd"}, "test-key")
	assert.Equal(t, http.StatusGone, w.Code)

	// hangup theatre lands in the buffer
	var out string
	require.Eventually(t, func() bool {
		out += drainOutput(t, s, sess.ID)
		return strings.Contains(out, "NO CARRIER")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessionNotFound(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(s, "POST", "/api/session/nope/input", map[string]string{"line": "pwd"}, "test-key")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(s, "DELETE", "/api/session/nope", nil, "test-key")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	a := createSession(t, s)
	b := createSession(t, s)

	w := doJSON(s, "POST", "/api/session/"+a.ID+"/input", map[string]string{"line": "mkdir only_in_a"}, "test-key")
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(s, "POST", "/api/session/"+a.ID+"/input", map[string]string{"line": "ls"}, "test-key")
	require.Equal(t, http.StatusOK, w.Code)

	var outA string
	require.Eventually(t, func() bool {
		outA += drainOutput(t, s, a.ID)
		return strings.Contains(outA, "only_in_a")
	}, 2*time.Second, 10*time.Millisecond)

	w = doJSON(s, "POST", "/api/session/"+b.ID+"/input", map[string]string{"line": "ls"}, "test-key")
	require.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool {
		out := drainOutput(t, s, b.ID)
		if out == "" {
			return false
		}
		assert.NotContains(t, out, "only_in_a")
		return strings.Contains(out, "usr")
	}, 2*time.Second, 10*time.Millisecond)
}

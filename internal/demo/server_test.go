package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/centraunit/labelwire"
)

// lockedBuffer is a bytes.Buffer safe to write from handler goroutines.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

type ServerTestSuite struct {
	suite.Suite
	out *lockedBuffer
	c   *labelwire.Container
	srv *httptest.Server
}

func (s *ServerTestSuite) SetupTest() {
	s.out = &lockedBuffer{}
	cfg := testConfig()
	cfg.LogLevel = "debug"
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, s.out)
	s.c = labelwire.New(labelwire.WithLogger(logger))
	s.Require().NoError(Register(s.c, cfg, logger))
	s.srv = httptest.NewServer(NewRouter(s.c, logger))
}

func (s *ServerTestSuite) TearDownTest() {
	s.srv.Close()
}

func (s *ServerTestSuite) getStatus() (*http.Response, Status) {
	resp, err := http.Get(s.srv.URL + "/count")
	s.Require().NoError(err)
	defer resp.Body.Close()

	var status Status
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&status))
	return resp, status
}

func (s *ServerTestSuite) TestHealthz() {
	resp, err := http.Get(s.srv.URL + "/healthz")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/json", resp.Header.Get("Content-Type"))
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *ServerTestSuite) TestCountSharesRequestScope() {
	resp, status := s.getStatus()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(resp.Header.Get("X-Request-ID"), status.RequestID)
	s.Equal(int64(0), status.Count)
	s.False(status.Done)
}

func (s *ServerTestSuite) TestEachRequestGetsItsOwnScope() {
	_, first := s.getStatus()
	_, second := s.getStatus()
	s.NotEqual(first.RequestID, second.RequestID)
}

func (s *ServerTestSuite) TestCountReflectsCounter() {
	app, err := labelwire.Resolve[*App](s.c, "app")
	s.Require().NoError(err)
	s.Require().NoError(app.Start(context.Background()))

	_, status := s.getStatus()
	s.Equal(int64(3), status.Count)
	s.True(status.Done)
}

func (s *ServerTestSuite) TestRequestsAreLogged() {
	s.getStatus()
	s.Contains(s.out.String(), "request started")
	s.Contains(s.out.String(), "scope created")
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestScopeMiddleware_Failure(t *testing.T) {
	out := &lockedBuffer{}
	logger := NewLogger("info", "text", out)
	// Nothing registered: the middleware cannot build the request info.
	handler := NewRouter(labelwire.New(), logger)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/count", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, out.String(), "failed to resolve request info")
}

func TestServe_Shutdown(t *testing.T) {
	out := &lockedBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), NewLogger("info", "text", out))
	}()

	cancel()
	require.NoError(t, <-done)
}

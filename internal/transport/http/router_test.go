package httptransport

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vouch/internal/credential/handler"
	"vouch/internal/credential/service"
	"vouch/internal/credential/store"
	"vouch/internal/platform/config"
	"vouch/internal/platform/health"
)

const adminToken = "secret-token"

type RouterSuite struct {
	suite.Suite
	issuer   http.Handler
	verifier http.Handler
}

func (s *RouterSuite) SetupTest() {
	st := store.NewMemory()
	svc := service.New(st, "issuer-test")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := handler.New(svc, logger)
	cfg := config.Server{
		AdminToken:     adminToken,
		RequestTimeout: 5 * time.Second,
	}

	s.issuer = NewRouter(RoleIssuer, h, health.New("vouch-issuer"), nil, cfg, logger)
	s.verifier = NewRouter(RoleVerifier, h, health.New("vouch-verifier"), nil, cfg, logger)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) do(router http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestRoleSeparation() {
	// The issuer does not verify and the verifier does not issue.
	rec := s.do(s.issuer, http.MethodPost, "/verify", `{"id":"x"}`, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(s.verifier, http.MethodPost, "/credentials", `{"name":"Jane"}`, nil)
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
}

func (s *RouterSuite) TestIssueThenVerifyAcrossRouters() {
	// Both routers share one store handle, like two processes sharing
	// physical storage.
	rec := s.do(s.issuer, http.MethodPost, "/credentials", `{"id":"X","name":"Jane"}`, nil)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(s.verifier, http.MethodPost, "/verify", `{"id":"X"}`, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"status":"valid"`)
}

func (s *RouterSuite) TestDiagnosticListRequiresAdminToken() {
	rec := s.do(s.issuer, http.MethodGet, "/credentials", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code, "expected 401 when admin token missing")

	rec = s.do(s.issuer, http.MethodGet, "/credentials", "", map[string]string{"X-Admin-Token": adminToken})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestContentTypeEnforced() {
	req := httptest.NewRequest(http.MethodPost, "/credentials", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.issuer.ServeHTTP(rec, req)
	s.Equal(http.StatusUnsupportedMediaType, rec.Code)
}

func (s *RouterSuite) TestHealthAndMetricsMounted() {
	for _, path := range []string{"/health", "/health/live", "/health/ready", "/metrics"} {
		rec := s.do(s.issuer, http.MethodGet, path, "", nil)
		s.Equal(http.StatusOK, rec.Code, "expected 200 from %s", path)
	}
}

func (s *RouterSuite) TestRequestIDHeader() {
	rec := s.do(s.issuer, http.MethodGet, "/health/live", "", nil)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.do(s.issuer, http.MethodGet, "/health/live", "", map[string]string{"X-Request-ID": "req-1"})
	s.Equal("req-1", rec.Header().Get("X-Request-ID"))
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"vouch/internal/credential/service"
	"vouch/internal/credential/store"
)

type HandlerSuite struct {
	suite.Suite
	store  *store.MemoryStore
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.store = store.NewMemory()
	svc := service.New(s.store, "issuer-test")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger)
	r := chi.NewRouter()
	h.RegisterIssuer(r)
	h.RegisterVerifier(r)
	h.RegisterDiagnostics(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *HandlerSuite) TestIssueGeneratesIDAndRoundTrips() {
	rec := s.post("/credentials", `{"name":"Jane"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	issued := s.decode(rec)
	credentialID, _ := issued["credentialId"].(string)
	s.NotEmpty(credentialID)
	s.Equal("issuer-test", issued["worker"])
	s.NotEmpty(issued["issuedAt"])

	rec = s.post("/verify", fmt.Sprintf(`{"id":%q}`, credentialID))
	s.Require().Equal(http.StatusOK, rec.Code)

	verified := s.decode(rec)
	s.Equal("valid", verified["status"])
	s.Equal("issuer-test", verified["worker"])

	credential, _ := verified["credential"].(map[string]any)
	s.Require().NotNil(credential)
	s.Equal("Jane", credential["name"])
	s.Equal(credentialID, credential["id"])
}

func (s *HandlerSuite) TestIssueDuplicateIDReturnsConflict() {
	rec := s.post("/credentials", `{"id":"X","name":"Jane"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Equal("X", s.decode(rec)["credentialId"])

	rec = s.post("/credentials", `{"id":"X","name":"Jane"}`)
	s.Require().Equal(http.StatusConflict, rec.Code)
	s.Equal("conflict", s.decode(rec)["error"])
}

func (s *HandlerSuite) TestIssueValidation() {
	cases := []struct {
		name string
		body string
	}{
		{"bare string", `"not an object"`},
		{"null", `null`},
		{"array", `[1,2,3]`},
		{"numeric id", `{"id":42}`},
		{"empty id", `{"id":""}`},
		{"malformed json", `{`},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.post("/credentials", tc.body)
			s.Equal(http.StatusBadRequest, rec.Code)
		})
	}

	// No failure path may leave anything in storage.
	ids, err := s.store.ListIDs(context.Background())
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *HandlerSuite) TestVerifyUnknownIDIsInvalidNotError() {
	rec := s.post("/verify", `{"id":"never-issued"}`)
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal("invalid", body["status"])
	s.Equal("not_found", body["reason"])
	s.NotContains(body, "credential")
}

func (s *HandlerSuite) TestVerifyValidation() {
	s.Run("missing id", func() {
		rec := s.post("/verify", `{"name":"Jane"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("non-object body", func() {
		rec := s.post("/verify", `"X"`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestListReturnsCountAndIDs() {
	s.Require().Equal(http.StatusCreated, s.post("/credentials", `{"id":"a"}`).Code)
	s.Require().Equal(http.StatusCreated, s.post("/credentials", `{"id":"b"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal(float64(2), body["count"])
	s.ElementsMatch([]any{"a", "b"}, body["ids"])
}

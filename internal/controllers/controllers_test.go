package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkshort/internal/entities"
	"linkshort/internal/logging"
	"linkshort/internal/middleware"
	"linkshort/internal/problemdetails"
	"linkshort/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLinks struct {
	createIn  service.CreateLinkInput
	createErr error
	listErr   error
	deleteErr error
	deletedID string
}

func (s *stubLinks) Create(_ context.Context, ownerID string, in service.CreateLinkInput) (*entities.ShortLink, error) {
	s.createIn = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &entities.ShortLink{
		ID:          "11111111-1111-1111-1111-111111111111",
		OwnerID:     ownerID,
		ShortCode:   "abc",
		OriginalURL: in.DestinationURL,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (s *stubLinks) List(_ context.Context, ownerID string) ([]*entities.ShortLink, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []*entities.ShortLink{}, nil
}

func (s *stubLinks) Delete(_ context.Context, _, id string) error {
	s.deletedID = id
	return s.deleteErr
}

type stubRedirect struct {
	dest string
	err  error
	meta service.ClickMetadata
}

func (s *stubRedirect) Resolve(_ context.Context, _ string, meta service.ClickMetadata) (string, error) {
	s.meta = meta
	return s.dest, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func serve(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("User-Agent", "controllers-test")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestProblemFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, problemdetails.TypeUnauthorized},
		{"invalid input", &service.Error{Kind: service.KindInvalidInput, Field: service.FieldCode}, http.StatusBadRequest, problemdetails.TypeInvalidInput},
		{"not found", service.ErrNotFound, http.StatusNotFound, problemdetails.TypeNotFound},
		{"expired", service.ErrExpired, http.StatusGone, problemdetails.TypeExpired},
		{"code taken", service.ErrCodeAlreadyExists, http.StatusConflict, problemdetails.TypeCodeAlreadyExists},
		{"code exhausted", service.ErrCodeExhausted, http.StatusServiceUnavailable, problemdetails.TypeCodeExhausted},
		{"storage", &service.Error{Kind: service.KindStorageFailure, Err: errors.New("pq: connection refused")}, http.StatusInternalServerError, problemdetails.TypeStorageFailure},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError, problemdetails.TypeStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := problemFor(tt.err)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, problemdetails.TypeURI(tt.wantType), p.Type)
			assert.NotContains(t, p.Detail, "pq:")
		})
	}
}

func TestProblemFor_InvalidInputCarriesField(t *testing.T) {
	p := problemFor(&service.Error{Kind: service.KindInvalidInput, Field: service.FieldExpiresAt, Err: errors.New("unrecognized date")})
	assert.Equal(t, service.FieldExpiresAt, p.Field)
	assert.Equal(t, "unrecognized date", p.Detail)
}

func TestShortLinksController_Create(t *testing.T) {
	links := &stubLinks{}
	r := gin.New()
	r.POST("/api/shortlinks", withUser("u1"), NewShortLinksController(links, "https://sho.rt").Create)

	rr := serve(t, r, http.MethodPost, "/api/shortlinks", `{"originalUrl":"https://example.com","shortCode":"abc","expiresAt":"2030-01-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "https://sho.rt/r/abc", body["short_url"])
	assert.Equal(t, "https://example.com", body["original_url"])
	assert.NotContains(t, body, "owner_id")

	require.NotNil(t, links.createIn.Code)
	assert.Equal(t, "abc", *links.createIn.Code)
	require.NotNil(t, links.createIn.ExpiresAt)
	assert.Equal(t, "2030-01-01", *links.createIn.ExpiresAt)
	assert.Nil(t, links.createIn.Label)
}

func TestShortLinksController_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"malformed json", `not json`, nil, http.StatusBadRequest},
		{"code exhausted", `{"originalUrl":"https://example.com"}`, service.ErrCodeExhausted, http.StatusServiceUnavailable},
		{"storage failure", `{"originalUrl":"https://example.com"}`, service.ErrStorageFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/api/shortlinks", withUser("u1"), NewShortLinksController(&stubLinks{createErr: tt.err}, "").Create)

			rr := serve(t, r, http.MethodPost, "/api/shortlinks", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, problemdetails.ContentType, rr.Header().Get("Content-Type"))
		})
	}
}

func TestShortLinksController_ListAndDelete(t *testing.T) {
	links := &stubLinks{}
	controller := NewShortLinksController(links, "")
	r := gin.New()
	r.GET("/api/shortlinks", withUser("u1"), controller.List)
	r.DELETE("/api/shortlinks/:id", withUser("u1"), controller.Delete)

	rr := serve(t, r, http.MethodGet, "/api/shortlinks", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = serve(t, r, http.MethodDelete, "/api/shortlinks/some-id", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "some-id", links.deletedID)

	links.listErr = service.ErrStorageFailure
	rr = serve(t, r, http.MethodGet, "/api/shortlinks", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRedirectController(t *testing.T) {
	redirect := &stubRedirect{dest: "https://example.com/x"}
	controller := NewRedirectController(redirect)
	r := gin.New()
	r.GET("/r/:shortCode", controller.Redirect)
	r.GET("/api/resolve/:shortCode", controller.Resolve)

	rr := serve(t, r, http.MethodGet, "/r/abc", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://example.com/x", rr.Header().Get("Location"))
	assert.Equal(t, "controllers-test", redirect.meta.UserAgent)
	assert.NotEmpty(t, redirect.meta.IPAddress)

	rr = serve(t, r, http.MethodGet, "/api/resolve/abc", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"original_url":"https://example.com/x"}`, rr.Body.String())

	redirect.err = service.ErrExpired
	rr = serve(t, r, http.MethodGet, "/r/abc", "")
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Empty(t, rr.Header().Get("Location"))
}

func TestHealthController(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{"ready", nil, http.StatusOK, `{"status":"ready"}`},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthController(stubPinger{err: tt.pingErr}, logging.Nop())
			r := gin.New()
			r.GET("/health", hc.Health)
			r.GET("/readyz", hc.Ready)

			rr := serve(t, r, http.MethodGet, "/health", "")
			assert.Equal(t, http.StatusOK, rr.Code)

			rr = serve(t, r, http.MethodGet, "/readyz", "")
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

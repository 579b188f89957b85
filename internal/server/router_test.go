package server

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

	"linkshort/internal/codegen"
	"linkshort/internal/database"
	"linkshort/internal/identity"
	"linkshort/internal/logging"
	"linkshort/internal/models"
	"linkshort/internal/problemdetails"
	"linkshort/internal/repository"
	"linkshort/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("down") }

type testServer struct {
	router   *gin.Engine
	jwt      *identity.JWTService
	recorder *service.ClickRecorder
	repo     *repository.GormLinkRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", logging.Nop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)

	repo := repository.NewGormLinkRepository(db)
	recorder := service.NewClickRecorder(repo, repository.NewGormClickRepository(db), logging.Nop(),
		service.ClickRecorderOptions{Workers: 1, BufferSize: 16})
	t.Cleanup(func() { recorder.Close(context.Background()) })

	jwtService := identity.NewJWTService(identity.Options{Secret: "router-test", TTL: time.Hour})

	router, err := NewRouter(Deps{
		Links:    service.NewLinkService(repo, codegen.NewGenerator(codegen.DefaultLength), nil, logging.Nop()),
		Redirect: service.NewRedirectService(repo, nil, recorder, logging.Nop()),
		Verifier: jwtService,
		DB:       sqlDB,
		Logger:   logging.Nop(),
		BaseURL:  "https://sho.rt",
	})
	require.NoError(t, err)

	return &testServer{router: router, jwt: jwtService, recorder: recorder, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		token, err := s.jwt.GenerateToken(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "router-test")

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) problemdetails.ProblemDetail {
	t.Helper()
	assert.Equal(t, problemdetails.ContentType, rr.Header().Get("Content-Type"))

	var p problemdetails.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReadyz_Unavailable(t *testing.T) {
	router, err := NewRouter(Deps{DB: failingPinger{}, Logger: logging.Nop(), Verifier: identity.NewJWTService(identity.Options{Secret: "x"})})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestShortLinks_RequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/shortlinks"},
		{http.MethodPost, "/api/shortlinks"},
		{http.MethodDelete, "/api/shortlinks/abc"},
	} {
		rr := s.do(t, tc.method, tc.path, "", "")
		require.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Missing bearer token", decodeProblem(t, rr).Detail)
	}
}

func TestShortLinks_CreateListDelete(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/shortlinks", "u1",
		`{"originalUrl":"https://example.com/docs","shortCode":"docs","label":"  Docs  ","expiresAt":"never"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created models.LinkResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "docs", created.ShortCode)
	assert.Equal(t, "https://sho.rt/r/docs", created.ShortURL)
	require.NotNil(t, created.Label)
	assert.Equal(t, "Docs", *created.Label)
	assert.Nil(t, created.ExpiresAt)
	assert.Zero(t, created.ClickCount)

	rr = s.do(t, http.MethodGet, "/api/shortlinks", "u2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/shortlinks", "u1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []models.LinkResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rr = s.do(t, http.MethodDelete, "/api/shortlinks/"+created.ID, "u2", "")
	assert.Equal(t, http.StatusNoContent, rr.Code, "non-owner delete is a silent no-op")

	rr = s.do(t, http.MethodDelete, "/api/shortlinks/"+created.ID, "u1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(t, http.MethodDelete, "/api/shortlinks/"+created.ID, "u1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/r/docs", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShortLinks_CreateErrors(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/shortlinks", "u1", `{"originalUrl":"https://example.com","shortCode":"promo"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantType   string
		wantField  string
	}{
		{"malformed body", `{`, http.StatusBadRequest, problemdetails.TypeInvalidInput, "body"},
		{"missing url", `{}`, http.StatusBadRequest, problemdetails.TypeInvalidInput, "destinationUrl"},
		{"relative url", `{"originalUrl":"example.com"}`, http.StatusBadRequest, problemdetails.TypeInvalidInput, "destinationUrl"},
		{"bad code", `{"originalUrl":"https://example.com","shortCode":"has space"}`, http.StatusBadRequest, problemdetails.TypeInvalidInput, "code"},
		{"bad expiry", `{"originalUrl":"https://example.com","expiresAt":"tomorrow"}`, http.StatusBadRequest, problemdetails.TypeInvalidInput, "expiresAt"},
		{"taken code", `{"originalUrl":"https://example.com","shortCode":"promo"}`, http.StatusConflict, problemdetails.TypeCodeAlreadyExists, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, "/api/shortlinks", "u1", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			p := decodeProblem(t, rr)
			assert.Equal(t, problemdetails.TypeURI(tt.wantType), p.Type)
			assert.Equal(t, tt.wantField, p.Field)
		})
	}
}

func TestRedirect(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/shortlinks", "u1", `{"originalUrl":"https://example.com/landing?a=1","shortCode":"land"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	rr = s.do(t, http.MethodPost, "/api/shortlinks", "u1", `{"originalUrl":"https://example.com/old","shortCode":"old","expiresAt":"`+past+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do(t, http.MethodGet, "/r/land", "", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://example.com/landing?a=1", rr.Header().Get("Location"))

	rr = s.do(t, http.MethodGet, "/api/resolve/land", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"original_url":"https://example.com/landing?a=1"}`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/r/LAND", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code, "codes are case-sensitive")
	assert.Equal(t, problemdetails.TypeURI(problemdetails.TypeNotFound), decodeProblem(t, rr).Type)

	rr = s.do(t, http.MethodGet, "/r/old", "", "")
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, problemdetails.TypeURI(problemdetails.TypeExpired), decodeProblem(t, rr).Type)

	require.NoError(t, s.recorder.Close(context.Background()))

	link, err := s.repo.FindByShortCode(context.Background(), "land")
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.ClickCount)

	old, err := s.repo.FindByShortCode(context.Background(), "old")
	require.NoError(t, err)
	assert.Zero(t, old.ClickCount)
}

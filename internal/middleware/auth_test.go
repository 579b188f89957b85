package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkshort/internal/identity"
)

type stubVerifier map[string]string

func (s stubVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", identity.ErrInvalidToken
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{"good-token": "user-1"}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
		wantUser   string
	}{
		{"no header", "", http.StatusUnauthorized, "Missing bearer token", ""},
		{"wrong scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, "Missing bearer token", ""},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "Missing bearer token", ""},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, "Invalid token", ""},
		{"valid token", "Bearer good-token", http.StatusOK, "", "user-1"},
		{"lowercase scheme", "bearer good-token", http.StatusOK, "", "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/api/shortlinks", AuthMiddleware(verifier), func(c *gin.Context) {
				userID, _ := UserID(c)
				c.String(http.StatusOK, userID)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/shortlinks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, rr.Body.String())
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body["detail"])
			assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestAuthMiddleware_WithJWTService(t *testing.T) {
	jwtService := identity.NewJWTService(identity.Options{Secret: "test-secret", TTL: 5 * time.Minute})
	token, err := jwtService.GenerateToken("user-42")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", AuthMiddleware(jwtService), func(c *gin.Context) {
		userID, ok := UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, userID)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-42", rr.Body.String())
}

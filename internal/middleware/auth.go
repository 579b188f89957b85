package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkshort/internal/identity"
	"linkshort/internal/problemdetails"
)

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "user_id"

// AuthMiddleware requires a bearer token accepted by verifier and stores the
// resulting user id under UserIDKey
func AuthMiddleware(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Missing bearer token")
			return
		}

		userID, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil || userID == "" {
			unauthorized(c, "Invalid token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the user id set by AuthMiddleware
func UserID(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	return userID, userID != ""
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, detail string) {
	p := problemdetails.New(http.StatusUnauthorized, problemdetails.TypeUnauthorized, "Unauthorized", detail)
	c.Header("WWW-Authenticate", "Bearer")
	c.Header("Content-Type", problemdetails.ContentType)
	c.AbortWithStatusJSON(p.Status, p)
}

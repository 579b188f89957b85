package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkshort/internal/models"
	"linkshort/internal/service"
)

type RedirectController struct {
	redirect service.RedirectService
}

func NewRedirectController(redirect service.RedirectService) *RedirectController {
	return &RedirectController{redirect: redirect}
}

// Redirect handles GET /r/:shortCode
func (rc *RedirectController) Redirect(c *gin.Context) {
	dest, err := rc.resolve(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, dest)
}

// Resolve handles GET /api/resolve/:shortCode for clients that follow the
// redirect themselves
func (rc *RedirectController) Resolve(c *gin.Context) {
	dest, err := rc.resolve(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ResolveResponse{OriginalURL: dest})
}

func (rc *RedirectController) resolve(c *gin.Context) (string, error) {
	return rc.redirect.Resolve(c.Request.Context(), c.Param("shortCode"), service.ClickMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

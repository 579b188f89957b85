package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkshort/internal/middleware"
	"linkshort/internal/models"
	"linkshort/internal/problemdetails"
	"linkshort/internal/service"
)

type ShortLinksController struct {
	links   service.LinkService
	baseURL string
}

func NewShortLinksController(links service.LinkService, baseURL string) *ShortLinksController {
	return &ShortLinksController{
		links:   links,
		baseURL: baseURL,
	}
}

// Create handles POST /api/shortlinks
func (sc *ShortLinksController) Create(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		p := problemdetails.NewInvalidInput("body", "request body must be a JSON object")
		c.Header("Content-Type", problemdetails.ContentType)
		c.AbortWithStatusJSON(p.Status, p)
		return
	}

	userID, _ := middleware.UserID(c)
	link, err := sc.links.Create(c.Request.Context(), userID, service.CreateLinkInput{
		DestinationURL: req.OriginalURL,
		Code:           req.ShortCode,
		Label:          req.Label,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewLinkResponse(link, sc.baseURL))
}

// List handles GET /api/shortlinks
func (sc *ShortLinksController) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	links, err := sc.links.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewLinkResponses(links, sc.baseURL))
}

// Delete handles DELETE /api/shortlinks/:id
func (sc *ShortLinksController) Delete(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	if err := sc.links.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

package models

import (
	"time"

	"github.com/samber/lo"

	"linkshort/internal/entities"
)

// LinkResponse is a short link as shown to its owner
type LinkResponse struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	Label       *string    `json:"label"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClickCount  int64      `json:"click_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ResolveResponse is returned by the JSON resolve endpoint
type ResolveResponse struct {
	OriginalURL string `json:"original_url"`
}

func NewLinkResponse(link *entities.ShortLink, baseURL string) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		ShortURL:    baseURL + "/r/" + link.ShortCode,
		OriginalURL: link.OriginalURL,
		Label:       link.Label,
		ExpiresAt:   link.ExpiresAt,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
	}
}

func NewLinkResponses(links []*entities.ShortLink, baseURL string) []LinkResponse {
	return lo.Map(links, func(link *entities.ShortLink, _ int) LinkResponse {
		return NewLinkResponse(link, baseURL)
	})
}

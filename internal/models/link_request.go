package models

// CreateLinkRequest is the body of POST /api/shortlinks
type CreateLinkRequest struct {
	OriginalURL string  `json:"originalUrl"`
	ShortCode   *string `json:"shortCode,omitempty"`
	Label       *string `json:"label,omitempty"`
	ExpiresAt   *string `json:"expiresAt,omitempty"` // RFC 3339, YYYY-MM-DD[THH:MM[:SS]] read as UTC, or "never"
}

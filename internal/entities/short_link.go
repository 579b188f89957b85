package entities

import "time"

// MaxLabelLength is the maximum number of characters kept in a label
const MaxLabelLength = 80

// ShortLink maps a short code to a destination URL
type ShortLink struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID     string     `json:"-" gorm:"column:owner_id;not null;index:idx_short_links_owner_created,priority:1"`
	ShortCode   string     `json:"short_code" gorm:"column:short_code;uniqueIndex;not null"`
	OriginalURL string     `json:"original_url" gorm:"column:original_url;not null"`
	Label       *string    `json:"label,omitempty" gorm:"column:label;size:80"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	ClickCount  int64      `json:"click_count" gorm:"column:click_count;not null;default:0"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;index:idx_short_links_owner_created,priority:2"`
}

func (ShortLink) TableName() string {
	return "short_links"
}

// IsExpired reports whether the link no longer resolves at now.
// A link whose expiry equals now is already expired.
func (l *ShortLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

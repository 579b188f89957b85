package entities

import "time"

// ClickEvent is one append-only record of a successful resolution
type ClickEvent struct {
	ID        uint64    `json:"-" gorm:"primaryKey;autoIncrement"`
	LinkID    string    `json:"link_id" gorm:"column:short_link_id;not null;index"`
	IPAddress string    `json:"ip_address" gorm:"column:ip_address"`
	UserAgent string    `json:"user_agent" gorm:"column:user_agent"`
	ClickedAt time.Time `json:"clicked_at" gorm:"column:clicked_at;not null"`
}

func (ClickEvent) TableName() string {
	return "clicks"
}

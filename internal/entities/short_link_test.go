package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShortLink_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry", nil, false},
		{"future", &future, false},
		{"past", &past, true},
		{"exactly now", &now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &ShortLink{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, link.IsExpired(now))
		})
	}
}

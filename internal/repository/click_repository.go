package repository

import (
	"context"
	"database/sql"
	"fmt"

	"linkshort/internal/entities"
)

// ClickRepository appends click events
type ClickRepository interface {
	Insert(ctx context.Context, click *entities.ClickEvent) error
}

type clickRepository struct {
	db *sql.DB
}

// NewClickRepository creates a Postgres-backed ClickRepository
func NewClickRepository(db *sql.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Insert(ctx context.Context, click *entities.ClickEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clicks (short_link_id, ip_address, user_agent, clicked_at)
		VALUES ($1, $2, $3, $4)
	`, click.LinkID, nullIfEmpty(click.IPAddress), nullIfEmpty(click.UserAgent), click.ClickedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"linkshort/internal/entities"
)

var (
	// ErrNotFound is returned when no short link matches the query
	ErrNotFound = errors.New("short link not found")

	// ErrDuplicateShortCode is returned when the store rejects a short code
	// because another link already holds it
	ErrDuplicateShortCode = errors.New("short code already exists")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks linkshort/internal/repository LinkRepository,ClickRepository

// LinkRepository defines the interface for short link storage
type LinkRepository interface {
	// Insert persists link and returns the stored row with id, click count
	// and creation time filled in by the store.
	Insert(ctx context.Context, link *entities.ShortLink) (*entities.ShortLink, error)
	FindByShortCode(ctx context.Context, shortCode string) (*entities.ShortLink, error)
	IncrementClickCount(ctx context.Context, id string) error
	// DeleteByIDAndOwner removes the link only if ownerID owns it. It returns
	// the deleted link's short code, or "" when nothing matched.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.ShortLink, error)
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a Postgres-backed LinkRepository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, owner_id, short_code, original_url, label, expires_at, click_count, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*entities.ShortLink, error) {
	var link entities.ShortLink
	err := row.Scan(
		&link.ID,
		&link.OwnerID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.Label,
		&link.ExpiresAt,
		&link.ClickCount,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) Insert(ctx context.Context, link *entities.ShortLink) (*entities.ShortLink, error) {
	var expiresAt any
	if link.ExpiresAt != nil {
		expiresAt = link.ExpiresAt.UTC()
	}

	query := `
		INSERT INTO short_links (owner_id, short_code, original_url, label, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + linkColumns

	created, err := scanLink(r.db.QueryRowContext(ctx, query,
		link.OwnerID, link.ShortCode, link.OriginalURL, link.Label, expiresAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateShortCode
		}
		return nil, fmt.Errorf("failed to insert short link: %w", err)
	}
	return created, nil
}

func (r *linkRepository) FindByShortCode(ctx context.Context, shortCode string) (*entities.ShortLink, error) {
	query := `SELECT ` + linkColumns + ` FROM short_links WHERE short_code = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, shortCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find short link: %w", err)
	}
	return link, nil
}

// IncrementClickCount bumps the counter in a single statement so concurrent
// resolutions never lose an increment.
func (r *linkRepository) IncrementClickCount(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE short_links SET click_count = click_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *linkRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (string, error) {
	// ids are UUIDs; anything else cannot match a row
	if _, err := uuid.Parse(id); err != nil {
		return "", nil
	}

	var shortCode string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM short_links WHERE id = $1 AND owner_id = $2 RETURNING short_code`,
		id, ownerID,
	).Scan(&shortCode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete short link: %w", err)
	}
	return shortCode, nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.ShortLink, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM short_links
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list short links: %w", err)
	}
	defer rows.Close()

	links := make([]*entities.ShortLink, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan short link: %w", err)
		}
		links = append(links, link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating short links: %w", err)
	}
	return links, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"linkshort/internal/entities"
)

// GormLinkRepository stores short links through GORM. It backs the embedded
// SQLite deployment.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewGormLinkRepository creates a GORM-backed LinkRepository
func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

func (r *GormLinkRepository) Insert(ctx context.Context, link *entities.ShortLink) (*entities.ShortLink, error) {
	row := *link
	row.ID = uuid.NewString()
	row.ClickCount = 0
	if row.ExpiresAt != nil {
		utc := row.ExpiresAt.UTC()
		row.ExpiresAt = &utc
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateShortCode
		}
		return nil, fmt.Errorf("failed to insert short link: %w", err)
	}
	return &row, nil
}

func (r *GormLinkRepository) FindByShortCode(ctx context.Context, shortCode string) (*entities.ShortLink, error) {
	var link entities.ShortLink
	err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).Take(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find short link: %w", err)
	}
	return &link, nil
}

func (r *GormLinkRepository) IncrementClickCount(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ShortLink{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment click count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormLinkRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (string, error) {
	var shortCode string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link entities.ShortLink
		err := tx.Where("id = ? AND owner_id = ?", id, ownerID).Take(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Where("short_link_id = ?", link.ID).Delete(&entities.ClickEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&link).Error; err != nil {
			return err
		}
		shortCode = link.ShortCode
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete short link: %w", err)
	}
	return shortCode, nil
}

func (r *GormLinkRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.ShortLink, error) {
	links := make([]*entities.ShortLink, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list short links: %w", err)
	}
	return links, nil
}

// GormClickRepository appends click events through GORM
type GormClickRepository struct {
	db *gorm.DB
}

// NewGormClickRepository creates a GORM-backed ClickRepository
func NewGormClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

func (r *GormClickRepository) Insert(ctx context.Context, click *entities.ClickEvent) error {
	row := *click
	row.ClickedAt = row.ClickedAt.UTC()
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}
	return nil
}

// isDuplicateKey covers both the translated GORM error and the raw SQLite
// message, since translation depends on how the connection was opened.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var (
	_ LinkRepository  = (*GormLinkRepository)(nil)
	_ ClickRepository = (*GormClickRepository)(nil)
)

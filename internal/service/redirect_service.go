package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"linkshort/internal/entities"
	"linkshort/internal/repository"
)

// ClickMetadata describes the requester of a resolution
type ClickMetadata struct {
	IPAddress string
	UserAgent string
}

// RedirectService resolves short codes to destinations
type RedirectService interface {
	Resolve(ctx context.Context, shortCode string, meta ClickMetadata) (string, error)
}

type redirectService struct {
	links  repository.LinkRepository
	cache  *LinkCache
	clicks ClickSink
	logger *slog.Logger
	now    func() time.Time
}

// NewRedirectService creates a RedirectService. linkCache may be nil.
func NewRedirectService(links repository.LinkRepository, linkCache *LinkCache, clicks ClickSink, logger *slog.Logger) RedirectService {
	return &redirectService{
		links:  links,
		cache:  linkCache,
		clicks: clicks,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns the destination for shortCode. Expired links are reported
// and left untouched. Click accounting is queued and never affects the result.
func (s *redirectService) Resolve(ctx context.Context, shortCode string, meta ClickMetadata) (string, error) {
	if shortCode == "" {
		return "", invalidInput(FieldCode, errors.New("short code is required"))
	}

	link, err := s.lookup(ctx, shortCode)
	if err != nil {
		return "", err
	}

	now := s.now()
	if link.IsExpired(now) {
		return "", &Error{Kind: KindExpired, Err: errors.New("short link has expired")}
	}

	s.clicks.Record(entities.ClickEvent{
		LinkID:    link.ID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		ClickedAt: now.UTC(),
	})

	return link.OriginalURL, nil
}

func (s *redirectService) lookup(ctx context.Context, shortCode string) (*entities.ShortLink, error) {
	if link, ok := s.cache.get(ctx, shortCode); ok {
		return link, nil
	}

	link, err := s.links.FindByShortCode(ctx, shortCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &Error{Kind: KindNotFound, Err: err}
	}
	if err != nil {
		return nil, storageFailure(err)
	}

	s.cache.fill(ctx, link)
	return link, nil
}

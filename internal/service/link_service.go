package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"

	"linkshort/internal/codegen"
	"linkshort/internal/entities"
	"linkshort/internal/repository"
)

// maxGenerateAttempts bounds inserts for generated codes
const maxGenerateAttempts = 3

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// expiresAtLayouts are tried in order. Layouts without a zone are read as UTC.
var expiresAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// CreateLinkInput is the caller-supplied part of a new short link
type CreateLinkInput struct {
	DestinationURL string
	Code           *string
	Label          *string
	ExpiresAt      *string
}

// LinkService defines the owner-scoped short link registry
type LinkService interface {
	Create(ctx context.Context, ownerID string, in CreateLinkInput) (*entities.ShortLink, error)
	List(ctx context.Context, ownerID string) ([]*entities.ShortLink, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type linkService struct {
	links     repository.LinkRepository
	generator codegen.Generator
	cache     *LinkCache
	logger    *slog.Logger
}

// NewLinkService creates a LinkService. linkCache may be nil.
func NewLinkService(links repository.LinkRepository, generator codegen.Generator, linkCache *LinkCache, logger *slog.Logger) LinkService {
	return &linkService{
		links:     links,
		generator: generator,
		cache:     linkCache,
		logger:    logger,
	}
}

func (s *linkService) Create(ctx context.Context, ownerID string, in CreateLinkInput) (*entities.ShortLink, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	destination, err := parseDestination(in.DestinationURL)
	if err != nil {
		return nil, invalidInput(FieldDestinationURL, err)
	}

	code := trimmed(in.Code)
	if code != "" && !customCodePattern.MatchString(code) {
		return nil, invalidInput(FieldCode, fmt.Errorf("%q may only contain letters, digits, '-' and '_'", code))
	}

	expiresAt, err := parseExpiresAt(trimmed(in.ExpiresAt))
	if err != nil {
		return nil, invalidInput(FieldExpiresAt, err)
	}

	link := &entities.ShortLink{
		OwnerID:     ownerID,
		OriginalURL: destination,
		Label:       normalizeLabel(in.Label),
		ExpiresAt:   expiresAt,
	}

	var created *entities.ShortLink
	if code != "" {
		created, err = s.insertCustom(ctx, link, code)
	} else {
		created, err = s.insertGenerated(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	s.cache.put(ctx, created)
	return created, nil
}

// insertCustom makes exactly one attempt with the caller's code
func (s *linkService) insertCustom(ctx context.Context, link *entities.ShortLink, code string) (*entities.ShortLink, error) {
	link.ShortCode = code

	created, err := s.links.Insert(ctx, link)
	if errors.Is(err, repository.ErrDuplicateShortCode) {
		return nil, &Error{Kind: KindCodeAlreadyExists, Err: fmt.Errorf("short code %q is already taken", code)}
	}
	if err != nil {
		return nil, storageFailure(err)
	}
	return created, nil
}

// insertGenerated draws a fresh code for every attempt and retries only on
// uniqueness conflicts
func (s *linkService) insertGenerated(ctx context.Context, link *entities.ShortLink) (*entities.ShortLink, error) {
	var created *entities.ShortLink

	backoff := retry.WithMaxRetries(maxGenerateAttempts-1, retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	}))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate := *link
		candidate.ShortCode = s.generator.Generate()

		row, err := s.links.Insert(ctx, &candidate)
		if errors.Is(err, repository.ErrDuplicateShortCode) {
			s.logger.Debug("generated short code collided", "short_code", candidate.ShortCode)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		created = row
		return nil
	})

	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, repository.ErrDuplicateShortCode):
		s.logger.Warn("could not generate a unique short code", "attempts", maxGenerateAttempts)
		return nil, &Error{Kind: KindCodeExhausted, Err: fmt.Errorf("no unique short code after %d attempts", maxGenerateAttempts)}
	default:
		return nil, storageFailure(err)
	}
}

func (s *linkService) List(ctx context.Context, ownerID string) ([]*entities.ShortLink, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageFailure(err)
	}
	return links, nil
}

// Delete is idempotent: a missing link, or one owned by someone else, is not an error
func (s *linkService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return ErrUnauthorized
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidInput(FieldID, errors.New("id is required"))
	}

	shortCode, err := s.links.DeleteByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return storageFailure(err)
	}
	s.cache.evict(ctx, shortCode)
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func parseDestination(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("destination URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("destination URL is not a valid URL: %w", err)
	}
	if !u.IsAbs() {
		return "", errors.New("destination URL must be absolute")
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return "", errors.New("destination URL has no host")
	}
	return raw, nil
}

// parseExpiresAt returns nil for "", "never" and any casing of it
func parseExpiresAt(raw string) (*time.Time, error) {
	if raw == "" || strings.EqualFold(raw, "never") {
		return nil, nil
	}

	for _, layout := range expiresAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%q is not a recognized timestamp", raw)
}

func normalizeLabel(label *string) *string {
	s := trimmed(label)
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) > entities.MaxLabelLength {
		s = string([]rune(s)[:entities.MaxLabelLength])
	}
	return &s
}

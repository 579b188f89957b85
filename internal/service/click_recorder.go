package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"linkshort/internal/entities"
	"linkshort/internal/repository"
)

// ClickSink accepts click events for asynchronous accounting
type ClickSink interface {
	// Record enqueues click and reports whether it was accepted. It never blocks.
	Record(click entities.ClickEvent) bool
}

type ClickRecorderOptions struct {
	Workers      int
	BufferSize   int
	WriteTimeout time.Duration
}

// ClickRecorder applies click side effects on a fixed pool of workers.
// Each click increments the link counter and appends a click event; the two
// writes run concurrently and fail independently.
type ClickRecorder struct {
	links        repository.LinkRepository
	clicks       repository.ClickRepository
	logger       *slog.Logger
	writeTimeout time.Duration

	jobs chan entities.ClickEvent
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewClickRecorder starts opts.Workers workers. Call Close to drain them.
func NewClickRecorder(links repository.LinkRepository, clicks repository.ClickRepository, logger *slog.Logger, opts ClickRecorderOptions) *ClickRecorder {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize < 0 {
		opts.BufferSize = 0
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	r := &ClickRecorder{
		links:        links,
		clicks:       clicks,
		logger:       logger,
		writeTimeout: opts.WriteTimeout,
		jobs:         make(chan entities.ClickEvent, opts.BufferSize),
	}

	r.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go r.worker()
	}
	logger.Info("click recorder started", "workers", opts.Workers, "buffer_size", opts.BufferSize)
	return r
}

func (r *ClickRecorder) Record(click entities.ClickEvent) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("click recorder closed, dropping click", "link_id", click.LinkID)
		return false
	}

	select {
	case r.jobs <- click:
		return true
	default:
		r.logger.Warn("click buffer full, dropping click", "link_id", click.LinkID)
		return false
	}
}

func (r *ClickRecorder) worker() {
	defer r.wg.Done()
	for click := range r.jobs {
		r.apply(click)
	}
}

func (r *ClickRecorder) apply(click entities.ClickEvent) {
	var g errgroup.Group

	g.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()
		if err := r.links.IncrementClickCount(ctx, click.LinkID); err != nil {
			r.logger.Error("failed to increment click count", "link_id", click.LinkID, "error", err)
			return fmt.Errorf("increment click count: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()
		if err := r.clicks.Insert(ctx, &click); err != nil {
			r.logger.Error("failed to record click event", "link_id", click.LinkID, "error", err)
			return fmt.Errorf("record click event: %w", err)
		}
		return nil
	})

	// both failures are already logged
	_ = g.Wait()
}

// Close stops accepting clicks and waits for queued ones to be applied, or
// for ctx to end.
func (r *ClickRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("click recorder drain: %w", ctx.Err())
	}
}

var _ ClickSink = (*ClickRecorder)(nil)

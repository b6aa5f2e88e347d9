package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FrameRenderer renders (and caches) the chart frame of one day. Implemented by
// the render package; declared here to avoid an import cycle.
type FrameRenderer interface {
	FrameSVG(ctx context.Context, day int) ([]byte, error)
}

// FrameWarmer pre-renders frames so the first play-through does not pay the
// render cost on every request.
type FrameWarmer struct {
	renderer    FrameRenderer
	logger      *zap.Logger
	concurrency int
}

// NewFrameWarmer creates a FrameWarmer rendering at most concurrency frames at
// once (4 when concurrency <= 0).
func NewFrameWarmer(renderer FrameRenderer, logger *zap.Logger, concurrency int) *FrameWarmer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &FrameWarmer{renderer: renderer, logger: logger, concurrency: concurrency}
}

// Warm renders every day and returns the joined errors of failed days.
func (w *FrameWarmer) Warm(ctx context.Context, days []int) error {
	start := time.Now()
	if w.logger != nil {
		w.logger.Info("warming frame cache", zap.Int("frames", len(days)))
	}
	sem := make(chan struct{}, w.concurrency)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, day := range days {
		day := day
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				errs = append(errs, fmt.Errorf("warm day %d: %w", day, ctx.Err()))
				mu.Unlock()
				return
			}
			defer func() { <-sem }()
			if _, err := w.renderer.FrameSVG(ctx, day); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("warm day %d: %w", day, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if w.logger != nil {
		w.logger.Info("frame cache warming complete",
			zap.Int("frames", len(days)),
			zap.Int("errors", len(errs)),
			zap.Duration("duration", time.Since(start)))
	}
	return errors.Join(errs...)
}

package app

import (
	"context"
	"log"
	"time"
)

const (
	defaultPollInterval = 60 * time.Second
	maxBackoff          = 10 * time.Minute
)

// Refresher re-derives state from a fresh remote snapshot.
type Refresher interface {
	Refresh() error
}

// StartPoller launches a background goroutine that refreshes the session at a
// fixed cadence, so remote edits made from other clients converge without
// user action. Consecutive failures back the cadence off exponentially up to
// maxBackoff; a success resets it. It returns immediately.
func StartPoller(ctx context.Context, target Refresher, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if err := target.Refresh(); err != nil {
				failures++
				log.Printf("background refresh failed: %v", err)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

package budget

import (
	"context"
	"time"
)

// WaiterLogger receives countdown updates while waiting out a rate limit
type WaiterLogger interface {
	LogRateLimitCountdown(remaining, total time.Duration)
}

// RateLimitWaiter handles waiting for rate limit resets
type RateLimitWaiter struct {
	maxWait      time.Duration // Longest wait accepted before giving up
	announceInt  time.Duration // Countdown update interval
	safetyBuffer time.Duration // Extra wait after reset
	logger       WaiterLogger  // Can be nil
}

// NewRateLimitWaiter creates a waiter with the given configuration
func NewRateLimitWaiter(maxWait, announceInterval, safetyBuffer time.Duration, logger WaiterLogger) *RateLimitWaiter {
	if announceInterval <= 0 {
		announceInterval = time.Second
	}
	return &RateLimitWaiter{
		maxWait:      maxWait,
		announceInt:  announceInterval,
		safetyBuffer: safetyBuffer,
		logger:       logger,
	}
}

// ShouldWait returns true if we should wait for reset, false if wait is too long.
// If info is nil, returns false.
func (w *RateLimitWaiter) ShouldWait(info *RateLimitInfo) bool {
	if info == nil {
		return false
	}
	return info.TimeUntilReset() <= w.maxWait
}

// WaitForReset blocks until the rate limit resets plus the safety buffer.
// Returns nil on a completed wait, the context error if cancelled.
func (w *RateLimitWaiter) WaitForReset(ctx context.Context, info *RateLimitInfo) error {
	if info == nil {
		return nil
	}

	totalWait := w.TimeUntilResume(info)
	if totalWait <= 0 {
		return ctx.Err()
	}
	endTime := time.Now().Add(totalWait)

	timer := time.NewTimer(totalWait)
	defer timer.Stop()
	ticker := time.NewTicker(w.announceInt)
	defer ticker.Stop()

	if w.logger != nil {
		w.logger.LogRateLimitCountdown(totalWait, totalWait)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case now := <-ticker.C:
			remaining := endTime.Sub(now)
			if remaining <= 0 {
				return nil
			}
			if w.logger != nil {
				w.logger.LogRateLimitCountdown(remaining, totalWait)
			}
		}
	}
}

// TimeUntilResume returns the total time to wait including safety buffer
func (w *RateLimitWaiter) TimeUntilResume(info *RateLimitInfo) time.Duration {
	if info == nil {
		return 0
	}
	if info.IsExpired() {
		return w.safetyBuffer
	}
	return info.TimeUntilReset() + w.safetyBuffer
}

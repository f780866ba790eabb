package ratelimit

import (
	"context"
	"time"
)

// Pacer blocks between successive page requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Delay sleeps a fixed duration on every Wait.
type Delay struct {
	delay time.Duration
}

func NewFixedDelay(d time.Duration) *Delay {
	return &Delay{delay: d}
}

// Wait returns early with the context's error when ctx is cancelled.
func (d *Delay) Wait(ctx context.Context) error {
	if d.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

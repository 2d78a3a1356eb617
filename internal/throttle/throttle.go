// Package throttle implements an adaptive per-origin request delay.
// The delay starts at a floor, doubles whenever an origin pushes back
// (429, 404, or a timeout), and resets to the floor after one
// success. It is a slow-moving politeness control, independent of the
// consecutive-error breaker that aborts a failing download phase.
package throttle

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/greg-randall/job-finder/internal/browser"
)

// Adaptive delay defaults.
const (
	// DefaultFloor is the starting delay per origin.
	DefaultFloor = 1 * time.Second
	// DefaultCeiling caps the doubled delay.
	DefaultCeiling = 5 * time.Minute
	// backoffFactor is applied on every recorded failure.
	backoffFactor = 2
)

// Delay tracks the adaptive delay for each origin.
type Delay struct {
	mu      sync.Mutex
	floor   time.Duration
	ceiling time.Duration
	current map[string]time.Duration
}

// New creates an adaptive delay with the given floor and ceiling.
// Non-positive values fall back to the defaults.
func New(floor, ceiling time.Duration) *Delay {
	if floor <= 0 {
		floor = DefaultFloor
	}
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if ceiling < floor {
		ceiling = floor
	}
	return &Delay{
		floor:   floor,
		ceiling: ceiling,
		current: make(map[string]time.Duration),
	}
}

// Current returns the active delay for an origin.
func (d *Delay) Current(origin string) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.current[origin]; ok {
		return cur
	}
	return d.floor
}

// Wait sleeps for the origin's current delay, returning early with
// the context error on cancellation.
func (d *Delay) Wait(ctx context.Context, origin string) error {
	delay := d.Current(origin)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// RecordFailure doubles the origin's delay, up to the ceiling.
func (d *Delay) RecordFailure(origin string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.current[origin]
	if !ok {
		cur = d.floor
	}
	cur *= backoffFactor
	if cur > d.ceiling {
		cur = d.ceiling
	}
	d.current[origin] = cur
}

// RecordSuccess resets the origin's delay to the floor.
func (d *Delay) RecordSuccess(origin string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current[origin] = d.floor
}

// Record classifies err and updates the origin's delay: a nil error
// resets, a throttleable error doubles, anything else leaves the
// delay untouched.
func (d *Delay) Record(origin string, err error) {
	if err == nil {
		d.RecordSuccess(origin)
		return
	}
	if Throttleable(err) {
		d.RecordFailure(origin)
	}
}

// Throttleable reports whether an error signals origin pushback: a
// 429, a 404, or a timeout.
func Throttleable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *browser.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode == http.StatusNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded")
}

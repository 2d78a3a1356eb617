package throttle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/greg-randall/job-finder/internal/browser"
	"github.com/greg-randall/job-finder/internal/throttle"
)

func TestDelayDoublesAndCaps(t *testing.T) {
	t.Parallel()

	d := throttle.New(time.Second, 4*time.Second)
	const origin = "board.example"

	assert.Equal(t, time.Second, d.Current(origin))

	d.RecordFailure(origin)
	assert.Equal(t, 2*time.Second, d.Current(origin))

	d.RecordFailure(origin)
	assert.Equal(t, 4*time.Second, d.Current(origin))

	// Capped at the ceiling.
	d.RecordFailure(origin)
	assert.Equal(t, 4*time.Second, d.Current(origin))
}

func TestDelayResetsOnSuccess(t *testing.T) {
	t.Parallel()

	d := throttle.New(time.Second, time.Minute)
	const origin = "board.example"

	d.RecordFailure(origin)
	d.RecordFailure(origin)
	assert.Equal(t, 4*time.Second, d.Current(origin))

	d.RecordSuccess(origin)
	assert.Equal(t, time.Second, d.Current(origin))
}

func TestDelayOriginsAreIndependent(t *testing.T) {
	t.Parallel()

	d := throttle.New(time.Second, time.Minute)

	d.RecordFailure("slow.example")
	assert.Equal(t, 2*time.Second, d.Current("slow.example"))
	assert.Equal(t, time.Second, d.Current("healthy.example"))
}

func TestRecordClassifies(t *testing.T) {
	t.Parallel()

	d := throttle.New(time.Second, time.Minute)
	const origin = "board.example"

	// A throttleable error doubles.
	d.Record(origin, &browser.HTTPStatusError{URL: "u", StatusCode: 429})
	assert.Equal(t, 2*time.Second, d.Current(origin))

	// A non-throttleable error leaves the delay untouched.
	d.Record(origin, errors.New("boom"))
	assert.Equal(t, 2*time.Second, d.Current(origin))

	// Success resets.
	d.Record(origin, nil)
	assert.Equal(t, time.Second, d.Current(origin))
}

func TestWaitHonorsContext(t *testing.T) {
	t.Parallel()

	d := throttle.New(time.Minute, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Wait(ctx, "board.example")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThrottleable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", &browser.HTTPStatusError{StatusCode: 429}, true},
		{"http 404", &browser.HTTPStatusError{StatusCode: 404}, true},
		{"http 500", &browser.HTTPStatusError{StatusCode: 500}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"timeout text", errors.New("net/http: request timeout"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, throttle.Throttleable(tt.err))
		})
	}
}

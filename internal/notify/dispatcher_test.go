package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okJob(channel, recipient string, counter *atomic.Int32) Job {
	return Job{
		Channel:   channel,
		Recipient: recipient,
		Send: func(ctx context.Context) error {
			counter.Add(1)
			return nil
		},
	}
}

func TestDispatchAllSucceed(t *testing.T) {
	d := NewDispatcher(time.Second)
	var calls atomic.Int32

	report := d.Dispatch(context.Background(),
		okJob("sms", "+233241234567", &calls),
		okJob("email", "ama@example.com", &calls),
	)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, report.Sent())
	assert.Equal(t, 0, report.Failed())
}

func TestDispatchIsolatesFailures(t *testing.T) {
	d := NewDispatcher(time.Second)
	var calls atomic.Int32

	report := d.Dispatch(context.Background(),
		okJob("sms", "+233241234567", &calls),
		Job{Channel: "email", Recipient: "bad@example.com", Send: func(ctx context.Context) error {
			return errors.New("smtp refused")
		}},
		okJob("sms", "+233501234567", &calls),
		okJob("email", "admin@example.com", &calls),
	)

	assert.Equal(t, int32(3), calls.Load(), "healthy jobs must still run")
	assert.Equal(t, 3, report.Sent())
	assert.Equal(t, 1, report.Failed())

	require.Len(t, report.Deliveries, 4)
	assert.False(t, report.Deliveries[1].OK)
	assert.Contains(t, report.Deliveries[1].Error, "smtp refused")
	assert.Equal(t, "bad@example.com", report.Deliveries[1].Recipient)
}

func TestDispatchTimesOutStalledJob(t *testing.T) {
	d := NewDispatcher(50 * time.Millisecond)
	var calls atomic.Int32

	start := time.Now()
	report := d.Dispatch(context.Background(),
		Job{Channel: "sms", Recipient: "+233241234567", Send: func(ctx context.Context) error {
			select {
			case <-time.After(5 * time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}},
		okJob("email", "ama@example.com", &calls),
	)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "batch must not wait out the stalled sender")
	assert.Equal(t, 1, report.Sent())
	assert.Equal(t, 1, report.Failed())
	assert.False(t, report.Deliveries[0].OK)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDispatchRecoversPanickingSender(t *testing.T) {
	d := NewDispatcher(time.Second)
	var calls atomic.Int32

	report := d.Dispatch(context.Background(),
		Job{Channel: "sms", Recipient: "+233241234567", Send: func(ctx context.Context) error {
			panic("template blew up")
		}},
		okJob("email", "ama@example.com", &calls),
	)

	assert.Equal(t, 1, report.Sent())
	assert.Equal(t, 1, report.Failed())
	assert.Contains(t, report.Deliveries[0].Error, "template blew up")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDispatchNoJobs(t *testing.T) {
	d := NewDispatcher(time.Second)
	report := d.Dispatch(context.Background())
	assert.Empty(t, report.Deliveries)
	assert.Equal(t, 0, report.Sent())
	assert.Equal(t, 0, report.Failed())
}

package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Job is one recipient/channel send. Jobs are isolated from each other: a
// failing or panicking job never prevents the rest of the batch.
type Job struct {
	Channel   string
	Recipient string
	Send      func(ctx context.Context) error
}

// Delivery is the outcome of one job.
type Delivery struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// Report aggregates per-recipient outcomes of one fan-out.
type Report struct {
	Deliveries []Delivery `json:"deliveries"`
}

func (r Report) Sent() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.OK {
			n++
		}
	}
	return n
}

func (r Report) Failed() int {
	return len(r.Deliveries) - r.Sent()
}

// Dispatcher fans jobs out concurrently and waits for all of them. Each job
// gets its own timeout, so one stalled provider call cannot hold the whole
// batch past that job's deadline.
type Dispatcher struct {
	Timeout time.Duration
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{Timeout: timeout}
}

// Dispatch runs every job concurrently and returns once all have finished or
// timed out. Failures are logged and reported, never propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs ...Job) Report {
	report := Report{Deliveries: make([]Delivery, len(jobs))}

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			report.Deliveries[i] = d.run(ctx, job)
		}(i, job)
	}
	wg.Wait()

	for _, delivery := range report.Deliveries {
		if !delivery.OK {
			log.Printf("Notification delivery failed: channel=%s recipient=%s error=%s",
				delivery.Channel, delivery.Recipient, delivery.Error)
		}
	}
	return report
}

func (d *Dispatcher) run(ctx context.Context, job Job) Delivery {
	delivery := Delivery{Channel: job.Channel, Recipient: job.Recipient}

	jobCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sender panicked: %v", r)
			}
		}()
		done <- job.Send(jobCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			delivery.Error = err.Error()
			return delivery
		}
		delivery.OK = true
		return delivery
	case <-jobCtx.Done():
		delivery.Error = jobCtx.Err().Error()
		return delivery
	}
}

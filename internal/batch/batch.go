// Package batch runs conversion jobs across a fixed worker pool with
// cooperative cancellation and a single ordered progress consumer.
package batch

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"nefconv/internal/encode"
	"nefconv/internal/transform"
)

// Target is one output destination for a job.
type Target struct {
	Path   string
	Format encode.Format
}

// Job is one unit of work: one input file mapped to one or more output
// targets. Immutable once handed to the pool.
type Job struct {
	Input   string
	Outputs []Target

	Ratio      float64
	Brightness transform.Brightness
	Rotation   string
	Enhance    bool
	Preview    bool
}

// Outcome classifies the terminal message of a job.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeSkipped
	OutcomeFailed
	OutcomeDropped
)

// Message is the single terminal progress report of one job. Completed and
// Total are stamped by the consumer in arrival order; ordering across jobs
// is otherwise not guaranteed.
type Message struct {
	Input     string
	Outcome   Outcome
	Detail    string
	Elapsed   time.Duration
	Remaining time.Duration
	Completed int
	Total     int
}

// Summary aggregates a finished batch.
type Summary struct {
	Done        int
	Skipped     int
	Failed      int
	Dropped     int
	Elapsed     time.Duration
	Interrupted bool
}

// Convert runs one job to completion and returns a human-readable success
// detail. A returned error carrying a SkipReason marks the job skipped
// rather than failed.
type Convert func(job Job) (detail string, err error)

// skipper lets converters classify an input as skipped, not failed.
type skipper interface {
	SkipReason() string
}

// Runner is a fixed-size worker pool. Stop is polled between jobs only: a
// job that has started always runs to completion or failure; cancellation is
// cooperative, never preemptive.
type Runner struct {
	Workers int
	Stop    *atomic.Bool
	Log     zerolog.Logger
}

// Run dispatches every job, forwards each worker's terminal message to
// report in arrival order, and returns once all dispatched jobs have
// produced exactly one message and the channel is drained.
func (r *Runner) Run(jobs []Job, convert Convert, report func(Message)) Summary {
	total := len(jobs)
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}

	log := r.Log.With().Str("component", "batch").Logger()

	jobsCh := make(chan Job)
	// each job emits exactly one message, so this buffer never blocks a
	// producer (the accepted no-backpressure simplification)
	messages := make(chan Message, total)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(jobsCh, messages, convert)
		}()
	}
	log.Debug().Int("workers", workers).Int("jobs", total).Msg("workers started")

	go func() {
		for _, job := range jobs {
			jobsCh <- job
		}
		close(jobsCh)
		wg.Wait()
		close(messages)
	}()

	start := time.Now()
	var sum Summary
	completed := 0
	for msg := range messages {
		completed++
		msg.Completed = completed
		msg.Total = total

		switch msg.Outcome {
		case OutcomeDone:
			sum.Done++
		case OutcomeSkipped:
			sum.Skipped++
		case OutcomeFailed:
			sum.Failed++
		case OutcomeDropped:
			sum.Dropped++
		}

		// cumulative average over successful conversions only, recomputed
		// after every completion; skips and drops finish in microseconds
		// and would drag the estimate down
		if msg.Outcome == OutcomeDone && total > completed {
			avg := time.Since(start) / time.Duration(sum.Done)
			msg.Remaining = avg * time.Duration(total-completed)
		}

		if report != nil {
			report(msg)
		}
	}

	sum.Elapsed = time.Since(start)
	sum.Interrupted = r.stopped()
	return sum
}

func (r *Runner) worker(jobsCh <-chan Job, out chan<- Message, convert Convert) {
	for job := range jobsCh {
		if r.stopped() {
			out <- Message{Input: job.Input, Outcome: OutcomeDropped, Detail: "interrupted before start"}
			continue
		}

		t0 := time.Now()
		detail, err := convert(job)
		elapsed := time.Since(t0)

		msg := Message{Input: job.Input, Elapsed: elapsed}
		var skip skipper
		switch {
		case err == nil:
			msg.Outcome = OutcomeDone
			msg.Detail = detail
		case errors.As(err, &skip):
			msg.Outcome = OutcomeSkipped
			msg.Detail = skip.SkipReason()
		default:
			msg.Outcome = OutcomeFailed
			msg.Detail = err.Error()
		}
		out <- msg
	}
}

func (r *Runner) stopped() bool {
	return r.Stop != nil && r.Stop.Load()
}

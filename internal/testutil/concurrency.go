package testutil

import (
	"context"
	"time"

	"github.com/specialistvlad/tickgrid/internal/stage"
)

// SleepJob returns a job that records its window under label and sleeps for d.
func SleepJob(r *Recorder, label string, d time.Duration) stage.Job {
	return stage.JobFunc(func(ctx context.Context) error {
		end := r.Begin(label)
		defer end()
		time.Sleep(d)
		return nil
	})
}

// FailJob returns a job that records its window under label and returns err.
func FailJob(r *Recorder, label string, err error) stage.Job {
	return stage.JobFunc(func(ctx context.Context) error {
		end := r.Begin(label)
		defer end()
		return err
	})
}

// PanicJob returns a job that records its start under label and panics with v.
func PanicJob(r *Recorder, label string, v any) stage.Job {
	return stage.JobFunc(func(ctx context.Context) error {
		end := r.Begin(label)
		defer end()
		panic(v)
	})
}

// Overlaps reports whether two execution windows intersect.
func Overlaps(a, b ExecutionRecord) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

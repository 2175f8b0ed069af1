package posts

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Worker is the scheduler loop: every Interval it claims a batch of due
// posts and drives each through the pipeline, oldest due first. Claim errors
// never crash the loop; a failing post never aborts its batch.
type Worker struct {
	ID       string
	Store    JobStore
	Pipeline *Pipeline
	Interval time.Duration
	Batch    int
}

func NewWorker(store JobStore, pipeline *Pipeline, interval time.Duration, batch int) *Worker {
	return &Worker{
		ID:       "scheduler-" + uuid.NewString()[:8],
		Store:    store,
		Pipeline: pipeline,
		Interval: interval,
		Batch:    batch,
	}
}

// Run blocks until ctx is cancelled. Shutdown is cooperative: no new batch
// is claimed after cancellation, but posts already claimed finish first so
// none are abandoned in posting.
func (w *Worker) Run(ctx context.Context) {
	log.Printf("[%s] started (poll=%s batch=%d)", w.ID, w.Interval, w.Batch)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] stopped", w.ID)
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	batch, err := w.Store.ClaimDue(ctx, w.Batch)
	if err != nil {
		// store unreachable: sleep through the next tick and retry
		log.Printf("[%s] claim error: %v", w.ID, err)
		return
	}
	if len(batch) == 0 {
		return
	}

	// Claimed posts must reach a terminal state even if shutdown begins
	// mid-batch; the publisher's own timeout bounds how long that takes.
	jobCtx := context.WithoutCancel(ctx)

	for i := range batch {
		post := batch[i]
		urn, err := w.Pipeline.Process(jobCtx, post)
		if err != nil {
			log.Printf("[%s] post %d failed: %v", w.ID, post.ID, err)
			continue
		}
		log.Printf("[%s] posted id=%d urn=%s", w.ID, post.ID, urn)
	}
}

package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"postpilot/internal/linkedin"
)

var (
	// ErrConflict means another worker holds the post right now.
	ErrConflict = errors.New("post is already being processed")
	// ErrTerminal means the post already reached failed and cannot be
	// published again through this row.
	ErrTerminal = errors.New("post already reached a terminal state")
)

// JobStore is the slice of Store the pipeline and worker need. Tests inject
// fakes; production wires *Store.
type JobStore interface {
	ClaimDue(ctx context.Context, limit int) ([]ScheduledPost, error)
	TransitionFrom(ctx context.Context, id uint64, from, to string, fields map[string]any) (bool, error)
}

// Publisher is the one-shot "publish text as member X" operation.
type Publisher interface {
	Publish(ctx context.Context, cred linkedin.Credential, text, visibility string) (string, error)
}

// Pipeline drives a claimed post through resolve -> publish -> terminal
// transition. It is shared by the scheduler loop and the publish-now handler
// so both paths obey the same state machine.
type Pipeline struct {
	Store    JobStore
	Resolver linkedin.Resolver
	Client   Publisher

	// Bounded retry for transient publisher errors within a single attempt.
	// The post is never re-queued once it left queued.
	MaxPublishTries int
	RetryBase       time.Duration
}

func NewPipeline(store JobStore, resolver linkedin.Resolver, client Publisher) *Pipeline {
	return &Pipeline{
		Store:           store,
		Resolver:        resolver,
		Client:          client,
		MaxPublishTries: 3,
		RetryBase:       2 * time.Second,
	}
}

// Process takes a post already claimed into posting and leaves it posted or
// failed. The returned urn is set on success. Store errors are returned
// without a failed-mark: the row's state is unknown and must not be guessed;
// the next poll cycle retries nothing because the row is no longer queued,
// so operators see it in posting with a stale updated_at.
func (p *Pipeline) Process(ctx context.Context, post ScheduledPost) (string, error) {
	urn, pubErr := p.attempt(ctx, post)
	if pubErr == nil {
		ok, err := p.Store.TransitionFrom(ctx, post.ID, StatusPosting, StatusPosted, map[string]any{
			"remote_urn": urn,
			"last_error": nil,
		})
		if err != nil {
			return "", fmt.Errorf("mark posted: %w", err)
		}
		if !ok {
			// conditional guard tripped: someone else moved the row
			log.Printf("posts: post %d changed under us after publish, urn=%s", post.ID, urn)
		}
		return urn, nil
	}

	ok, err := p.Store.TransitionFrom(ctx, post.ID, StatusPosting, StatusFailed, map[string]any{
		"last_error": pubErr.Error(),
	})
	if err != nil {
		return "", fmt.Errorf("mark failed after %q: %w", pubErr, err)
	}
	if !ok {
		log.Printf("posts: post %d changed under us while failing: %v", post.ID, pubErr)
	}
	return "", pubErr
}

// PublishNow claims a still-queued post and runs it through the same state
// machine synchronously. Calling it on an already-posted row returns the
// stored urn without touching the publisher.
func (p *Pipeline) PublishNow(ctx context.Context, post ScheduledPost) (string, error) {
	switch post.Status {
	case StatusPosted:
		if post.RemoteURN != nil {
			return *post.RemoteURN, nil
		}
		return "", nil
	case StatusFailed:
		return "", ErrTerminal
	case StatusPosting:
		return "", ErrConflict
	}

	ok, err := p.Store.TransitionFrom(ctx, post.ID, StatusQueued, StatusPosting, nil)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrConflict
	}
	return p.Process(ctx, post)
}

// attempt is panic-safe: any fault while resolving or publishing comes back
// as an error so Process always writes a terminal status.
func (p *Pipeline) attempt(ctx context.Context, post ScheduledPost) (urn string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publish attempt panicked: %v", r)
		}
	}()

	cred, err := p.Resolver.Resolve(ctx, post.UserID)
	if err != nil {
		return "", fmt.Errorf("resolve credential for user %d: %w", post.UserID, err)
	}
	return p.publishWithRetry(ctx, cred, post)
}

func (p *Pipeline) publishWithRetry(ctx context.Context, cred linkedin.Credential, post ScheduledPost) (string, error) {
	tries := p.MaxPublishTries
	if tries < 1 {
		tries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		urn, err := p.Client.Publish(ctx, cred, post.Text, post.Visibility)
		if err == nil {
			return urn, nil
		}
		lastErr = err

		var transient *linkedin.TransientError
		if !errors.As(err, &transient) || attempt == tries {
			break
		}

		delay := p.RetryBase << (attempt - 1)
		log.Printf("posts: post %d transient publish error (try %d/%d), retrying in %s: %v",
			post.ID, attempt, tries, delay, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("publish post %d: %w", post.ID, ctx.Err())
		}
	}
	return "", lastErr
}

package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpilot/internal/linkedin"
)

func runWorker(t *testing.T, w *Worker, runFor time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	time.Sleep(runFor)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestWorkerProcessesDueBatchInOrder(t *testing.T) {
	now := time.Now()
	batch := []ScheduledPost{
		{ID: 1, UserID: 7, Text: "first", Status: StatusPosting, ScheduledAt: now.Add(-3 * time.Second)},
		{ID: 2, UserID: 7, Text: "second", Status: StatusPosting, ScheduledAt: now.Add(-2 * time.Second)},
		{ID: 3, UserID: 7, Text: "third", Status: StatusPosting, ScheduledAt: now.Add(-time.Second)},
	}

	var claims int
	store := &fakeStore{}
	store.claimFunc = func(ctx context.Context, limit int) ([]ScheduledPost, error) {
		claims++
		if claims == 1 {
			return batch, nil
		}
		return nil, nil
	}

	var published []string
	pub := &fakePublisher{}
	pub.publishFunc = func(ctx context.Context, cred linkedin.Credential, text, visibility string) (string, error) {
		published = append(published, text)
		return "urn:li:share:" + text, nil
	}

	w := NewWorker(store, newTestPipeline(store, &fakeResolver{}, pub), 5*time.Millisecond, 10)
	runWorker(t, w, 30*time.Millisecond)

	assert.Equal(t, []string{"first", "second", "third"}, published)

	trs := store.recorded()
	require.Len(t, trs, 3)
	for _, tr := range trs {
		assert.Equal(t, StatusPosted, tr.to)
	}
}

func TestWorkerIsolatesPerPostFailures(t *testing.T) {
	now := time.Now()
	batch := []ScheduledPost{
		{ID: 1, UserID: 1, Text: "doomed", Status: StatusPosting, ScheduledAt: now.Add(-2 * time.Second)},
		{ID: 2, UserID: 2, Text: "fine", Status: StatusPosting, ScheduledAt: now.Add(-time.Second)},
	}

	var claims int
	store := &fakeStore{}
	store.claimFunc = func(ctx context.Context, limit int) ([]ScheduledPost, error) {
		claims++
		if claims == 1 {
			return batch, nil
		}
		return nil, nil
	}

	resolver := &fakeResolver{
		resolveFunc: func(ctx context.Context, userID uint64) (linkedin.Credential, error) {
			if userID == 1 {
				return linkedin.Credential{}, linkedin.ErrNotConnected
			}
			return linkedin.Credential{AccessToken: "tok", MemberID: "m2"}, nil
		},
	}
	pub := &fakePublisher{}

	w := NewWorker(store, newTestPipeline(store, resolver, pub), 5*time.Millisecond, 10)
	runWorker(t, w, 30*time.Millisecond)

	// one failed, one posted; the failure did not abort the batch
	byID := map[uint64]string{}
	for _, tr := range store.recorded() {
		byID[tr.id] = tr.to
	}
	assert.Equal(t, StatusFailed, byID[1])
	assert.Equal(t, StatusPosted, byID[2])
	assert.Equal(t, 1, pub.callCount())
}

func TestWorkerSurvivesClaimErrors(t *testing.T) {
	now := time.Now()
	var claims int
	store := &fakeStore{}
	store.claimFunc = func(ctx context.Context, limit int) ([]ScheduledPost, error) {
		claims++
		if claims == 1 {
			return nil, errors.New("store unreachable")
		}
		if claims == 2 {
			return []ScheduledPost{
				{ID: 5, UserID: 7, Text: "late but fine", Status: StatusPosting, ScheduledAt: now},
			}, nil
		}
		return nil, nil
	}
	pub := &fakePublisher{}

	w := NewWorker(store, newTestPipeline(store, &fakeResolver{}, pub), 5*time.Millisecond, 10)
	runWorker(t, w, 40*time.Millisecond)

	// the claim error was logged and the next cycle still ran
	assert.GreaterOrEqual(t, claims, 2)
	assert.Equal(t, 1, pub.callCount())

	trs := store.recorded()
	require.Len(t, trs, 1)
	assert.Equal(t, StatusPosted, trs[0].to)
}

func TestWorkerFinishesClaimedBatchOnShutdown(t *testing.T) {
	now := time.Now()
	claimed := make(chan struct{})
	var claims int
	store := &fakeStore{}
	store.claimFunc = func(ctx context.Context, limit int) ([]ScheduledPost, error) {
		claims++
		if claims == 1 {
			close(claimed)
			return []ScheduledPost{
				{ID: 6, UserID: 7, Text: "in flight", Status: StatusPosting, ScheduledAt: now},
			}, nil
		}
		return nil, nil
	}

	pub := &fakePublisher{}
	pub.publishFunc = func(ctx context.Context, cred linkedin.Credential, text, visibility string) (string, error) {
		// shutdown begins while this post is in flight; the detached job
		// context must keep the publish alive
		time.Sleep(20 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "urn:li:share:6", nil
	}

	w := NewWorker(store, newTestPipeline(store, &fakeResolver{}, pub), time.Hour, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	<-claimed
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	trs := store.recorded()
	require.Len(t, trs, 1)
	assert.Equal(t, StatusPosted, trs[0].to, "in-hand post must finish, not be abandoned")
}

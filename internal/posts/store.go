package posts

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("post not found")

// Store is the sole source of truth for post state. All status changes go
// through conditional updates so the scheduler loop and publish-now handlers
// can run as separate processes without double-publishing.
type Store struct {
	DB *gorm.DB
}

func (s *Store) Enqueue(ctx context.Context, p *ScheduledPost) error {
	p.Status = StatusQueued
	if p.Visibility == "" {
		p.Visibility = "PUBLIC"
	}
	if p.Provider == "" {
		p.Provider = "linkedin"
	}
	if p.ScheduledAt.IsZero() {
		p.ScheduledAt = time.Now()
	}
	return s.DB.WithContext(ctx).Create(p).Error
}

// ClaimDue atomically selects up to limit due queued posts and marks them
// posting in a single statement. FOR UPDATE SKIP LOCKED makes concurrent
// claimers skip rows another claimer already selected, so no two loop
// instances ever hold the same post.
func (s *Store) ClaimDue(ctx context.Context, limit int) ([]ScheduledPost, error) {
	var claimed []ScheduledPost
	err := s.DB.WithContext(ctx).Raw(`
with due as (
  select id
  from scheduled_posts
  where status = 'queued' and scheduled_at <= now()
  order by scheduled_at asc
  for update skip locked
  limit ?
)
update scheduled_posts
set status = 'posting', updated_at = now()
where id in (select id from due)
returning *;
`, limit).Scan(&claimed).Error
	if err != nil {
		return nil, err
	}

	// update ... returning does not preserve the cte's order
	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].ScheduledAt.Before(claimed[j].ScheduledAt)
	})
	return claimed, nil
}

// TransitionFrom moves a post from one status to another only if it still
// holds the expected status. Returns false when another process already moved
// it; the caller must then leave the post alone.
func (s *Store) TransitionFrom(ctx context.Context, id uint64, from, to string, fields map[string]any) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}
	res := s.DB.WithContext(ctx).
		Model(&ScheduledPost{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) GetForUser(ctx context.Context, id, userID uint64) (*ScheduledPost, error) {
	var p ScheduledPost
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListForUser(ctx context.Context, userID uint64) ([]ScheduledPost, error) {
	var out []ScheduledPost
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_at desc").
		Find(&out).Error
	return out, err
}

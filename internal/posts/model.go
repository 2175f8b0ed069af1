package posts

import "time"

// Post lifecycle. queued -> posting -> posted | failed.
// posted and failed are terminal; a post never moves backward, and a failed
// post is never re-queued automatically (the owner reschedules by creating a
// new post).
const (
	StatusQueued  = "queued"
	StatusPosting = "posting"
	StatusPosted  = "posted"
	StatusFailed  = "failed"
)

// ScheduledPost is one request to publish a piece of text on behalf of a
// user at or after ScheduledAt. Text and ScheduledAt are immutable once the
// row is queued; edits create a new post.
type ScheduledPost struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Text       string `gorm:"type:text;not null"`
	Visibility string `gorm:"type:text;not null;default:'PUBLIC'"`
	Provider   string `gorm:"type:text;not null;default:'linkedin'"`

	ScheduledAt time.Time `gorm:"index;not null"`
	Status      string    `gorm:"index;not null;default:'queued'"`

	// RemoteURN is set only on the transition to posted.
	RemoteURN *string `gorm:"type:text"`
	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

package linkedin

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	// ErrNotConnected means no credential was ever stored for the user.
	ErrNotConnected = errors.New("linkedin: account not connected")
	// ErrExpired means a credential exists but its token has expired.
	// Only re-authenticating through the external connector clears it.
	ErrExpired = errors.New("linkedin: access token expired")
)

// Credential is the time-bounded authorization needed to publish on behalf
// of a member. It is read-only for this service; the OAuth connector owns
// the rows it is built from.
type Credential struct {
	AccessToken string
	MemberID    string
	ExpiresAt   *time.Time
}

// ExpiredAt reports whether the credential is unusable at the given instant.
// A nil expiry never expires (LinkedIn tokens without a stored deadline).
func (c Credential) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Resolver yields the current publishing credential for a user.
type Resolver interface {
	Resolve(ctx context.Context, userID uint64) (Credential, error)
}

// Token is the stored OAuth access token, written by the external connector.
type Token struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"uniqueIndex;not null"`

	AccessToken string         `gorm:"type:text;not null"`
	Scopes      pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	ExpiresAt   *time.Time     `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Token) TableName() string { return "linkedin_tokens" }

// Profile holds the member identity the connector captured at connect time.
// MemberID is the `sub` of the OIDC userinfo response and forms the author urn.
type Profile struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"uniqueIndex;not null"`

	MemberID string `gorm:"type:text;not null"`
	Name     string `gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Profile) TableName() string { return "linkedin_profiles" }

package linkedin

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// StoreResolver resolves credentials from the connector's tables.
// Expiry is checked at resolve time, not at queue time: a post queued while
// the token was valid can still fail later, and that surfaces as ErrExpired.
type StoreResolver struct {
	DB *gorm.DB
}

func (r *StoreResolver) Resolve(ctx context.Context, userID uint64) (Credential, error) {
	var tok Token
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Credential{}, ErrNotConnected
		}
		return Credential{}, err
	}

	var prof Profile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&prof).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Credential{}, ErrNotConnected
		}
		return Credential{}, err
	}
	if prof.MemberID == "" {
		return Credential{}, ErrNotConnected
	}

	cred := Credential{
		AccessToken: tok.AccessToken,
		MemberID:    prof.MemberID,
		ExpiresAt:   tok.ExpiresAt,
	}
	if cred.ExpiredAt(time.Now()) {
		return Credential{}, ErrExpired
	}
	return cred, nil
}

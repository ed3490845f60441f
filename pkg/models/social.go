package models

import (
	"time"

	"github.com/google/uuid"
)

// Supported publish platforms.
const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
)

// SocialAccount is one external platform credential. At most one active row
// is expected per platform; reconnecting deletes then inserts.
type SocialAccount struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	Platform     string     `db:"platform"      json:"platform"`
	AccessToken  string     `db:"access_token"  json:"-"`
	RefreshToken *string    `db:"refresh_token" json:"-"`
	AccountID    *string    `db:"account_id"    json:"account_id,omitempty"`
	AccountName  *string    `db:"account_name"  json:"account_name,omitempty"`
	ExpiresAt    *time.Time `db:"expires_at"    json:"expires_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

// TokenExpired reports whether the stored access token needs a refresh.
// A missing expiry is treated as expired; the platform client decides
// whether a refresh is actually possible.
func (a *SocialAccount) TokenExpired(now time.Time) bool {
	return a.ExpiresAt == nil || !a.ExpiresAt.After(now)
}

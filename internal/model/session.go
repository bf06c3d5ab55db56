package model

import "time"

// SubjectKind tells which identity table a token subject lives in.
type SubjectKind string

const (
    SubjectUser      SubjectKind = "user"
    SubjectShopOwner SubjectKind = "shop_owner"
)

// Session models a row in the `sessions` table.  Every issued bearer token
// has exactly one row keyed by the token's jti claim.
type Session struct {
    ID          string // jti
    SubjectKind SubjectKind
    SubjectID   string
    ExpiresAt   time.Time
    RevokedAt   *time.Time
    CreatedAt   time.Time
}

// Active reports whether the session is neither revoked nor expired at now.
func (s Session) Active(now time.Time) bool {
    return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

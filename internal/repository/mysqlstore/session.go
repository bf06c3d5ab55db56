package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

// SessionRepo persists issued bearer tokens by jti in the 'sessions' table.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, subject_kind, subject_id, expires_at, created_at) VALUES (?,?,?,?,?)",
		s.ID, string(s.SubjectKind), s.SubjectID, s.ExpiresAt.UTC(), s.CreatedAt)
	return err
}

// Get returns the session with the given jti whether or not it is active.
func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var (
		s         model.Session
		kind      string
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, subject_kind, subject_id, expires_at, revoked_at, created_at FROM sessions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &kind, &s.SubjectID, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	s.SubjectKind = model.SubjectKind(kind)
	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}
	return s, nil
}

// Revoke marks a session as revoked.
func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=UTC_TIMESTAMP() WHERE id=? AND revoked_at IS NULL",
		id)
	return err
}

// RevokeAllForSubject revokes every active session of one identity.
func (r *SessionRepo) RevokeAllForSubject(ctx context.Context, kind model.SubjectKind, subjectID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=UTC_TIMESTAMP() WHERE subject_kind=? AND subject_id=? AND revoked_at IS NULL",
		string(kind), subjectID)
	return err
}

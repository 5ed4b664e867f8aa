package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SessionRepo provides access to the session, session_attribute, and
// auth_cookie tables: the storage behind account lookup by email and
// cookie-based identity resolution.
type SessionRepo struct {
	q Querier
}

// NewSessionRepo creates a new SessionRepo over a database connection or
// transaction.
func NewSessionRepo(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

// UsernameFromEmail returns the session id (username) bound to the given
// email address, or "" when the email is unknown.
func (r *SessionRepo) UsernameFromEmail(ctx context.Context, email string) (string, error) {
	query := `
		SELECT sid
		FROM session_attribute
		WHERE name = 'email'
			AND authenticated = 1
			AND value = ?
	`
	var sid string
	err := r.q.QueryRowContext(ctx, query, email).Scan(&sid)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up email: %w", err)
	}
	return sid, nil
}

// EmailBoundElsewhere reports whether the email is already associated
// with a session id other than username.
func (r *SessionRepo) EmailBoundElsewhere(ctx context.Context, username, email string) (bool, error) {
	query := `
		SELECT sid
		FROM session_attribute
		WHERE sid <> ?
			AND authenticated = 1
			AND name = 'email'
			AND value = ?
	`
	var sid string
	err := r.q.QueryRowContext(ctx, query, username, email).Scan(&sid)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check email binding: %w", err)
	}
	return true, nil
}

// InsertSession creates an authenticated session row for a username.
func (r *SessionRepo) InsertSession(ctx context.Context, username string, lastVisit int64) error {
	query := `INSERT INTO session (sid, authenticated, last_visit) VALUES (?, 1, ?)`
	if _, err := r.q.ExecContext(ctx, query, username, lastVisit); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// InsertAttribute creates an authenticated session attribute.
func (r *SessionRepo) InsertAttribute(ctx context.Context, username, name, value string) error {
	query := `INSERT INTO session_attribute (sid, authenticated, name, value) VALUES (?, 1, ?, ?)`
	if _, err := r.q.ExecContext(ctx, query, username, name, value); err != nil {
		return fmt.Errorf("failed to insert session attribute: %w", err)
	}
	return nil
}

// CookieForUser returns the stored auth cookie value for a username, or
// "" when none has been issued yet.
func (r *SessionRepo) CookieForUser(ctx context.Context, username string) (string, error) {
	query := `SELECT cookie FROM auth_cookie WHERE name = ?`
	var cookie string
	err := r.q.QueryRowContext(ctx, query, username).Scan(&cookie)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up cookie: %w", err)
	}
	return cookie, nil
}

// InsertCookie stores a new auth cookie value for a username.
func (r *SessionRepo) InsertCookie(ctx context.Context, cookie, username string, now int64) error {
	query := `INSERT INTO auth_cookie (cookie, name, ipnr, time) VALUES (?, ?, '', ?)`
	if _, err := r.q.ExecContext(ctx, query, cookie, username, now); err != nil {
		return fmt.Errorf("failed to insert cookie: %w", err)
	}
	return nil
}

// UsernameFromCookie resolves an auth cookie value to a username, or ""
// when the cookie is unknown.
func (r *SessionRepo) UsernameFromCookie(ctx context.Context, cookie string) (string, error) {
	query := `SELECT name FROM auth_cookie WHERE cookie = ?`
	var name string
	err := r.q.QueryRowContext(ctx, query, cookie).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve cookie: %w", err)
	}
	return name, nil
}

// IsConstraintViolation reports whether err is a SQLite uniqueness or
// other constraint violation. Exposed for callers that need to translate
// raw insert failures into domain errors.
func IsConstraintViolation(err error) bool {
	return isConstraintViolation(err)
}

package service

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/frackdev/frack/internal/db"
	ferrors "github.com/frackdev/frack/internal/errors"
)

// AuthService manages user accounts and authentication cookies over the
// session tables. Accounts are keyed by username with the email held as
// a session attribute; one email maps to at most one username.
type AuthService struct {
	db  *sql.DB
	now func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(database *sql.DB) *AuthService {
	return &AuthService{db: database, now: time.Now}
}

// UsernameFromEmail resolves an email address to its username.
func (s *AuthService) UsernameFromEmail(ctx context.Context, email string) (string, error) {
	username, err := db.NewSessionRepo(s.db).UsernameFromEmail(ctx, email)
	if err != nil {
		return "", ferrors.WrapInternal(err, "failed to look up email %s", email)
	}
	if username == "" {
		return "", ferrors.NotFound("no username for email %s", email)
	}
	return username, nil
}

// CreateUser creates an account bound to an email address. An empty
// username defaults to the email itself. Creating a username that
// already exists, or binding an email already bound to a different
// username, is a Collision.
func (s *AuthService) CreateUser(ctx context.Context, email, username string) (string, error) {
	if email == "" {
		return "", ferrors.Validation("email is required")
	}
	if username == "" {
		username = email
	}

	now := s.now().Unix()
	err := db.InTx(ctx, s.db, func(tx *sql.Tx) error {
		sessions := db.NewSessionRepo(tx)
		bound, err := sessions.EmailBoundElsewhere(ctx, username, email)
		if err != nil {
			return err
		}
		if bound {
			return ferrors.Collision("email %s is already in use", email)
		}
		if err := sessions.InsertSession(ctx, username, now); err != nil {
			if db.IsConstraintViolation(err) {
				return ferrors.Collision("username %s is already in use", username)
			}
			return err
		}
		return sessions.InsertAttribute(ctx, username, "email", email)
	})
	if err != nil {
		return "", internalUnless(err, "failed to create user %s", username)
	}
	return username, nil
}

// CookieFromUsername returns the user's auth cookie token, minting and
// persisting a new one if none exists yet.
func (s *AuthService) CookieFromUsername(ctx context.Context, username string) (string, error) {
	sessions := db.NewSessionRepo(s.db)
	cookie, err := sessions.CookieForUser(ctx, username)
	if err != nil {
		return "", ferrors.WrapInternal(err, "failed to look up cookie for %s", username)
	}
	if cookie != "" {
		return cookie, nil
	}

	cookie, err = newCookieToken()
	if err != nil {
		return "", ferrors.WrapInternal(err, "failed to mint cookie for %s", username)
	}
	if err := sessions.InsertCookie(ctx, cookie, username, s.now().Unix()); err != nil {
		return "", ferrors.WrapInternal(err, "failed to store cookie for %s", username)
	}
	return cookie, nil
}

// UsernameFromCookie resolves an auth cookie token to a username. An
// unknown token resolves to the empty string with no error; callers
// treat that as anonymous.
func (s *AuthService) UsernameFromCookie(ctx context.Context, cookie string) (string, error) {
	username, err := db.NewSessionRepo(s.db).UsernameFromCookie(ctx, cookie)
	if err != nil {
		return "", ferrors.WrapInternal(err, "failed to resolve cookie")
	}
	return username, nil
}

// Login resolves an email to an account, creating the account on first
// use, and returns the username with its auth cookie token.
func (s *AuthService) Login(ctx context.Context, email string) (username, cookie string, err error) {
	if email == "" {
		return "", "", ferrors.Validation("email is required")
	}

	username, err = db.NewSessionRepo(s.db).UsernameFromEmail(ctx, email)
	if err != nil {
		return "", "", ferrors.WrapInternal(err, "failed to look up email %s", email)
	}
	if username == "" {
		if username, err = s.CreateUser(ctx, email, ""); err != nil {
			return "", "", err
		}
	}

	cookie, err = s.CookieFromUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	return username, cookie, nil
}

// newCookieToken produces a token in the same shape Trac uses: the hex
// SHA-1 of 16 random bytes.
func newCookieToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	sum := sha1.Sum(buf)
	return hex.EncodeToString(sum[:]), nil
}

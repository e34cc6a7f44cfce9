// Package store persists owner-portal sessions in the local SQLite database.
// The record-store access and refresh tokens inside each session are encrypted
// at rest with a key derived from the configured session secret.
package store

import (
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gloworganic/site/internal/model"
)

// sessionTTL bounds how long a portal session lives regardless of upstream
// token refreshes.
const sessionTTL = 7 * 24 * time.Hour

type SessionStore struct {
	db   *sql.DB
	aead cipher.AEAD
}

// NewSessionStore creates a session store. The secret encrypts tokens at
// rest; when empty, a random per-process secret is used, which invalidates
// all sessions on restart.
func NewSessionStore(db *sql.DB, secret string) (*SessionStore, error) {
	if secret == "" {
		b := make([]byte, keySize)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		secret = hex.EncodeToString(b)
	}

	salt, err := loadOrCreateSalt(db)
	if err != nil {
		return nil, err
	}
	aead, err := deriveAEAD(secret, salt)
	if err != nil {
		return nil, err
	}
	return &SessionStore{db: db, aead: aead}, nil
}

func loadOrCreateSalt(db *sql.DB) ([]byte, error) {
	var salt []byte
	err := db.QueryRow(`SELECT salt FROM crypto_meta WHERE id = 1`).Scan(&salt)
	if err == sql.ErrNoRows {
		salt, err = generateSalt()
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(`INSERT INTO crypto_meta (id, salt) VALUES (1, ?)`, salt); err != nil {
			return nil, fmt.Errorf("store salt: %w", err)
		}
		return salt, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load salt: %w", err)
	}
	return salt, nil
}

// Create stores a new session and returns it with its cookie token.
func (s *SessionStore) Create(email, accessToken, refreshToken string, tokenExpiry time.Time) (*model.Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	accessEnc, err := seal(s.aead, accessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt access token: %w", err)
	}
	refreshEnc, err := seal(s.aead, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt refresh token: %w", err)
	}

	expiresAt := time.Now().Add(sessionTTL).UTC()
	result, err := s.db.Exec(
		`INSERT INTO sessions (token, email, access_token_enc, refresh_token_enc, token_expires_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		token, email, accessEnc, refreshEnc, tokenExpiry.UTC(), expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &model.Session{
		ID:           id,
		Token:        token,
		Email:        email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenExpiry:  tokenExpiry,
		ExpiresAt:    expiresAt,
	}, nil
}

// GetByToken returns the live session behind a cookie token, or nil when the
// token is unknown or the session has expired.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, token, email, access_token_enc, refresh_token_enc, token_expires_at, expires_at, created_at
		 FROM sessions WHERE token = ? AND expires_at > ?`,
		token, time.Now().UTC(),
	)

	var sess model.Session
	var accessEnc, refreshEnc []byte
	err := row.Scan(&sess.ID, &sess.Token, &sess.Email, &accessEnc, &refreshEnc,
		&sess.TokenExpiry, &sess.ExpiresAt, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if sess.AccessToken, err = open(s.aead, accessEnc); err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	if sess.RefreshToken, err = open(s.aead, refreshEnc); err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}
	return &sess, nil
}

// UpdateTokens replaces a session's record-store tokens after a refresh.
func (s *SessionStore) UpdateTokens(id int64, accessToken, refreshToken string, tokenExpiry time.Time) error {
	accessEnc, err := seal(s.aead, accessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refreshEnc, err := seal(s.aead, refreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE sessions SET access_token_enc = ?, refresh_token_enc = ?, token_expires_at = ? WHERE id = ?`,
		accessEnc, refreshEnc, tokenExpiry.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update session tokens: %w", err)
	}
	return nil
}

// Delete removes a session by its cookie token.
func (s *SessionStore) Delete(token string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes expired sessions and returns the number deleted.
func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

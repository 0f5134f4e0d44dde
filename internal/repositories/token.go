package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/shared"
)

// TokenRepository persists OAuth tokens with access and refresh tokens
// encrypted at rest. The unique (user_id, provider) constraint guarantees at
// most one row per pair; Upsert mutates in place on refresh.
type TokenRepository struct {
	db  *sql.DB
	box *shared.SecretBox
}

func NewTokenRepository(db *sql.DB, box *shared.SecretBox) *TokenRepository {
	return &TokenRepository{db: db, box: box}
}

// Upsert inserts the token or, when a row for (user, provider) exists,
// overwrites its credentials and expiry.
func (r *TokenRepository) Upsert(token *models.Token) error {
	if err := token.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	access, err := r.box.Seal(token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	var refresh sql.NullString
	if token.RefreshToken != "" {
		sealed, err := r.box.Seal(token.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		refresh = sql.NullString{String: sealed, Valid: true}
	}

	var expires sql.NullTime
	if !token.ExpiresAt.IsZero() {
		expires = sql.NullTime{Time: token.ExpiresAt, Valid: true}
	}

	now := time.Now()
	if token.ID == "" {
		token.ID = shared.GenerateID()
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	query := `
		INSERT INTO provider_tokens (id, user_id, provider, access_token, refresh_token, expires_at, scopes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scopes = excluded.scopes,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query, token.ID, token.UserID, token.Provider, access, refresh, expires,
		strings.Join(token.Scopes, " "), token.CreatedAt, token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}

	return nil
}

// Get retrieves and decrypts the token for a (user, provider) pair. A
// missing row yields [shared.ErrNotConnected].
func (r *TokenRepository) Get(userID, provider string) (*models.Token, error) {
	query := `
		SELECT id, user_id, provider, access_token, refresh_token, expires_at, scopes, created_at, updated_at
		FROM provider_tokens
		WHERE user_id = ? AND provider = ?
	`

	var (
		token   models.Token
		access  string
		refresh sql.NullString
		expires sql.NullTime
		scopes  string
	)

	err := r.db.QueryRow(query, userID, provider).Scan(&token.ID, &token.UserID, &token.Provider,
		&access, &refresh, &expires, &scopes, &token.CreatedAt, &token.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s for user %s", shared.ErrNotConnected, provider, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	token.AccessToken, err = r.box.Open(access)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	if refresh.Valid {
		token.RefreshToken, err = r.box.Open(refresh.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
		}
	}

	if expires.Valid {
		token.ExpiresAt = expires.Time
	}
	if scopes != "" {
		token.Scopes = strings.Fields(scopes)
	}

	return &token, nil
}

// Delete removes the token row for a (user, provider) pair, disconnecting
// the provider for that user.
func (r *TokenRepository) Delete(userID, provider string) error {
	result, err := r.db.Exec(`DELETE FROM provider_tokens WHERE user_id = ? AND provider = ?`, userID, provider)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return requireAffected(result, "token", userID+"/"+provider)
}

// UserIDs returns the ids of all users holding a token for the provider, in
// insertion order.
func (r *TokenRepository) UserIDs(provider string) ([]string, error) {
	rows, err := r.db.Query(`SELECT user_id FROM provider_tokens WHERE provider = ? ORDER BY created_at ASC`, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to query token holders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan token holder: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

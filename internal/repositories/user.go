package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/shared"
)

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated ID and sequence. The role
// defaults to member when unset.
func (r *UserRepository) Create(user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	user.ID = shared.GenerateID()
	user.Sequence = sequence
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, sequence, email, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, user.ID, user.Sequence, user.Email, user.Name, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users.
func (r *UserRepository) Get(id string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, name, role, created_at, updated_at, deleted_at
		FROM users
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, name, role, created_at, updated_at, deleted_at
		FROM users
		WHERE email = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, email))
}

// Update modifies an existing user.
func (r *UserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	user.UpdatedAt = now

	query := `
		UPDATE users
		SET email = ?, name = ?, role = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, user.Email, user.Name, user.Role, now, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return requireAffected(result, "user", user.ID)
}

// Delete soft-deletes a user by ID.
func (r *UserRepository) Delete(id string) error {
	query := `
		UPDATE users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return requireAffected(result, "user", id)
}

// List retrieves users matching the given criteria, excluding soft-deleted
// users. Supported criteria: "email", "role".
func (r *UserRepository) List(criteria map[string]any) ([]*models.User, error) {
	query := `
		SELECT id, sequence, email, name, role, created_at, updated_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}
	if role, ok := criteria["role"].(string); ok && role != "" {
		query += " AND role = ?"
		args = append(args, role)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// Admins returns all non-deleted administrator accounts in sequence order.
func (r *UserRepository) Admins() ([]*models.User, error) {
	return r.List(map[string]any{"role": models.RoleAdmin})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user      models.User
		deletedAt sql.NullTime
	)

	err := row.Scan(&user.ID, &user.Sequence, &user.Email, &user.Name, &user.Role,
		&user.CreatedAt, &user.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	return &user, nil
}

func requireAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, entity, id)
	}
	return nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/shared"
)

// WishRepository manages the track queue. Positions are 1-based and kept
// contiguous: appends take the next free position, removals compact the
// queue, and moves shift the affected range.
type WishRepository struct {
	db *sql.DB
}

func NewWishRepository(db *sql.DB) *WishRepository {
	return &WishRepository{db: db}
}

// Add appends a wish at the end of the queue. A wish for the same
// (provider, track id) pair yields [shared.ErrDuplicateWish].
func (r *WishRepository) Add(wish *models.Wish) error {
	if err := wish.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var exists int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM wishes WHERE provider = ? AND track_id = ?`,
		wish.Provider, wish.TrackID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s/%s", shared.ErrDuplicateWish, wish.Provider, wish.TrackID)
	}

	sequence, err := NextSequence(r.db, "wishes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	var maxPosition sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(position) FROM wishes`).Scan(&maxPosition); err != nil {
		return fmt.Errorf("failed to determine queue tail: %w", err)
	}

	now := time.Now()
	wish.ID = shared.GenerateID()
	wish.Sequence = sequence
	wish.Position = int(maxPosition.Int64) + 1
	wish.CreatedAt = now
	wish.UpdatedAt = now

	query := `
		INSERT INTO wishes (id, sequence, provider, track_id, title, artist, album, image_url, url, duration_ms, requested_by, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, wish.ID, wish.Sequence, wish.Provider, wish.TrackID, wish.Title,
		wish.Artist, wish.Album, wish.ImageURL, wish.URL, wish.DurationMS, wish.RequestedBy,
		wish.Position, wish.CreatedAt, wish.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert wish: %w", err)
	}

	return nil
}

// Get retrieves a wish by ID.
func (r *WishRepository) Get(id string) (*models.Wish, error) {
	wish, err := scanWish(r.db.QueryRow(wishSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: wish %s", shared.ErrNotFound, id)
	}
	return wish, err
}

// List returns the whole queue in position order.
func (r *WishRepository) List() ([]*models.Wish, error) {
	rows, err := r.db.Query(wishSelect + ` ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishes: %w", err)
	}
	defer rows.Close()

	var wishes []*models.Wish
	for rows.Next() {
		wish, err := scanWish(rows)
		if err != nil {
			return nil, err
		}
		wishes = append(wishes, wish)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return wishes, nil
}

// Remove deletes a wish and compacts the positions behind it.
func (r *WishRepository) Remove(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRow(`SELECT position FROM wishes WHERE id = ?`, id).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: wish %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to query wish position: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM wishes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete wish: %w", err)
	}

	if _, err := tx.Exec(`UPDATE wishes SET position = position - 1 WHERE position > ?`, position); err != nil {
		return fmt.Errorf("failed to compact queue: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}

	return nil
}

// Move places a wish at the target position (1-based, clamped to the queue
// bounds) and shifts everything between old and new position by one.
func (r *WishRepository) Move(id string, target int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT position FROM wishes WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: wish %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to query wish position: %w", err)
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM wishes`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count wishes: %w", err)
	}

	if target < 1 {
		target = 1
	}
	if target > count {
		target = count
	}
	if target == current {
		return tx.Commit()
	}

	if target < current {
		_, err = tx.Exec(`UPDATE wishes SET position = position + 1 WHERE position >= ? AND position < ?`, target, current)
	} else {
		_, err = tx.Exec(`UPDATE wishes SET position = position - 1 WHERE position > ? AND position <= ?`, current, target)
	}
	if err != nil {
		return fmt.Errorf("failed to shift queue: %w", err)
	}

	if _, err := tx.Exec(`UPDATE wishes SET position = ?, updated_at = ? WHERE id = ?`, target, time.Now(), id); err != nil {
		return fmt.Errorf("failed to move wish: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}

	return nil
}

const wishSelect = `
	SELECT id, sequence, provider, track_id, title, artist, album, image_url, url, duration_ms, requested_by, position, created_at, updated_at
	FROM wishes`

func scanWish(row rowScanner) (*models.Wish, error) {
	var wish models.Wish
	err := row.Scan(&wish.ID, &wish.Sequence, &wish.Provider, &wish.TrackID, &wish.Title,
		&wish.Artist, &wish.Album, &wish.ImageURL, &wish.URL, &wish.DurationMS,
		&wish.RequestedBy, &wish.Position, &wish.CreatedAt, &wish.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan wish: %w", err)
	}
	return &wish, nil
}

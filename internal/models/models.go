package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/teamhub/wunschbox/internal/shared"
)

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific entity types.
type Repository[T any] interface {
	Create(entity T) error
	Get(id string) (T, error)
	Update(entity T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is a team member account. Admins may lend their provider connections
// to anonymous searches.
type User struct {
	ID        string
	Sequence  int
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("%w: email is required", shared.ErrInvalidInput)
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("%w: email %q is malformed", shared.ErrInvalidInput, u.Email)
	}
	if u.Role != RoleMember && u.Role != RoleAdmin {
		return fmt.Errorf("%w: role %q", shared.ErrInvalidInput, u.Role)
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Token holds OAuth credentials for one (user, provider) pair. AccessToken
// and RefreshToken are plaintext in memory; the repository encrypts them at
// rest. A zero ExpiresAt means the provider issued no expiry.
type Token struct {
	ID           string
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scopes       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Token) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("%w: token user id is required", shared.ErrInvalidInput)
	}
	if t.Provider == "" {
		return fmt.Errorf("%w: token provider is required", shared.ErrInvalidInput)
	}
	if t.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", shared.ErrInvalidInput)
	}
	return nil
}

// Expired reports whether the token's expiry has passed. Tokens without an
// expiry never expire.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// ExpiresWithin reports whether the token expires inside the given window.
func (t *Token) ExpiresWithin(now time.Time, window time.Duration) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now.Add(window))
}

// Wish is a queued track request. Position is 1-based and contiguous within
// the queue; the wish repository maintains that invariant on every mutation.
type Wish struct {
	ID          string
	Sequence    int
	Provider    string
	TrackID     string
	Title       string
	Artist      string
	Album       string
	ImageURL    string
	URL         string
	DurationMS  int
	RequestedBy string
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (w *Wish) Validate() error {
	if w.Provider == "" || w.TrackID == "" {
		return fmt.Errorf("%w: wish needs a provider and track id", shared.ErrInvalidInput)
	}
	if w.Title == "" {
		return fmt.Errorf("%w: wish title is required", shared.ErrInvalidInput)
	}
	return nil
}

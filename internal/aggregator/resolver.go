package aggregator

import (
	"context"
	"fmt"

	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/shared"
)

// SystemCredentialResolver locates a user whose provider connection may be
// borrowed for searches issued without an explicit user identity.
type SystemCredentialResolver interface {
	// ResolveUserID returns the id of a user with a working connection for
	// the provider, or an error wrapping [shared.ErrNotConnected] when no
	// such user exists.
	ResolveUserID(ctx context.Context, provider string) (string, error)
}

// connectionChecker is the slice of the token manager the resolver needs.
type connectionChecker interface {
	IsConnected(ctx context.Context, userID, provider string) bool
}

// AdminResolver implements [SystemCredentialResolver] by scanning
// administrator accounts for a connected token, in account order.
type AdminResolver struct {
	users       *repositories.UserRepository
	connections connectionChecker
}

func NewAdminResolver(users *repositories.UserRepository, connections connectionChecker) *AdminResolver {
	return &AdminResolver{users: users, connections: connections}
}

func (r *AdminResolver) ResolveUserID(ctx context.Context, provider string) (string, error) {
	admins, err := r.users.Admins()
	if err != nil {
		return "", fmt.Errorf("failed to list admins: %w", err)
	}

	for _, admin := range admins {
		if r.connections.IsConnected(ctx, admin.ID, provider) {
			return admin.ID, nil
		}
	}

	return "", fmt.Errorf("%w: no admin connected to %s", shared.ErrNotConnected, provider)
}

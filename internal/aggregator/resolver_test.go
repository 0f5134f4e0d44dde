package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/repositories"
	"github.com/teamhub/wunschbox/internal/shared"
	th "github.com/teamhub/wunschbox/internal/testing"
)

type fakeConnections struct {
	connected map[string]bool
}

func (f fakeConnections) IsConnected(ctx context.Context, userID, provider string) bool {
	return f.connected[userID+"/"+provider]
}

func TestAdminResolver(t *testing.T) {
	db := th.OpenTestDB(t)
	users := repositories.NewUserRepository(db)

	member := &models.User{Email: "member@example.com", Name: "M"}
	adminA := &models.User{Email: "a@example.com", Name: "A", Role: models.RoleAdmin}
	adminB := &models.User{Email: "b@example.com", Name: "B", Role: models.RoleAdmin}
	for _, u := range []*models.User{member, adminA, adminB} {
		if err := users.Create(u); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	ctx := context.Background()

	t.Run("First Connected Admin Wins", func(t *testing.T) {
		resolver := NewAdminResolver(users, fakeConnections{connected: map[string]bool{
			adminB.ID + "/spotify": true,
		}})

		id, err := resolver.ResolveUserID(ctx, "spotify")
		if err != nil {
			t.Fatalf("ResolveUserID failed: %v", err)
		}
		if id != adminB.ID {
			t.Errorf("expected admin B, got %q", id)
		}
	})

	t.Run("Members Never Considered", func(t *testing.T) {
		resolver := NewAdminResolver(users, fakeConnections{connected: map[string]bool{
			member.ID + "/spotify": true,
		}})

		if _, err := resolver.ResolveUserID(ctx, "spotify"); !errors.Is(err, shared.ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})

	t.Run("No Connected Admin", func(t *testing.T) {
		resolver := NewAdminResolver(users, fakeConnections{})
		if _, err := resolver.ResolveUserID(ctx, "spotify"); !errors.Is(err, shared.ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})
}

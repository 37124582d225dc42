package adapters

import (
	"context"

	"callcenter_backend/internal/leads/reporting"
	"callcenter_backend/internal/users"

	"github.com/google/uuid"
)

// UserDirectoryAdapter exposes the users repository to the leads context:
// running counters, agent existence checks, and the agent roster.
type UserDirectoryAdapter struct {
	repo *users.Repository
}

func NewUserDirectoryAdapter(repo *users.Repository) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{repo: repo}
}

func (a *UserDirectoryAdapter) IncrementStat(ctx context.Context, userID uuid.UUID, disposition string) error {
	return a.repo.IncrementStat(ctx, userID, disposition)
}

func (a *UserDirectoryAdapter) DecrementStat(ctx context.Context, userID uuid.UUID, disposition string) error {
	return a.repo.DecrementStat(ctx, userID, disposition)
}

func (a *UserDirectoryAdapter) UserStats(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	return a.repo.UserStats(ctx, userID)
}

func (a *UserDirectoryAdapter) AgentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return a.repo.AgentExists(ctx, id)
}

func (a *UserDirectoryAdapter) ListAgents(ctx context.Context) ([]reporting.AgentRef, error) {
	agents, err := a.repo.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]reporting.AgentRef, 0, len(agents))
	for _, agent := range agents {
		refs = append(refs, reporting.AgentRef{ID: agent.ID, Username: agent.Username})
	}
	return refs, nil
}

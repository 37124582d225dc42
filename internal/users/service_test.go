package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/events"
	"callcenter_backend/platform/logger"
)

type fakeAccountStore struct {
	users   map[uuid.UUID]*User
	deleted []uuid.UUID
}

func (f *fakeAccountStore) Create(_ context.Context, params CreateParams) (User, error) {
	user := User{
		ID:            uuid.New(),
		Username:      params.Username,
		Email:         params.Email,
		Role:          params.Role,
		RCExtensionID: params.RCExtensionID,
		CreatedAt:     time.Now(),
	}
	f.users[user.ID] = &user
	return user, nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	if user, ok := f.users[id]; ok {
		return *user, nil
	}
	return User{}, ErrNotFound
}

func (f *fakeAccountStore) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, user := range f.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountStore) List(context.Context) ([]User, error) {
	out := make([]User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeAccountStore) ListAgents(ctx context.Context) ([]User, error) {
	all, _ := f.List(ctx)
	agents := make([]User, 0)
	for _, user := range all {
		if user.Role == "agent" {
			agents = append(agents, user)
		}
	}
	return agents, nil
}

func (f *fakeAccountStore) Update(_ context.Context, id uuid.UUID, params UpdateParams) (User, error) {
	user, ok := f.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.RCExtensionID != nil {
		user.RCExtensionID = params.RCExtensionID
	}
	return *user, nil
}

func (f *fakeAccountStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return ErrNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAccountStore) ResetStats(context.Context, uuid.UUID) error { return nil }
func (f *fakeAccountStore) GetProgress(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}
func (f *fakeAccountStore) SetProgress(context.Context, uuid.UUID, int) error { return nil }

type fakeLeadPool struct {
	unassigned map[uuid.UUID]int64
	completed  int64
	assigned   int64
}

func (f *fakeLeadPool) UnassignAgent(_ context.Context, agentID uuid.UUID) (int64, error) {
	released := f.unassigned[agentID]
	return released, nil
}

func (f *fakeLeadPool) CompletedCount(context.Context, uuid.UUID) (int64, error) {
	return f.completed, nil
}

func (f *fakeLeadPool) AssignedCount(context.Context, uuid.UUID) (int64, error) {
	return f.assigned, nil
}

func newTestService(t *testing.T) (*Service, *fakeAccountStore) {
	t.Helper()
	store := &fakeAccountStore{users: make(map[uuid.UUID]*User)}
	bus := events.NewInMemoryBus(logger.New("test"))
	return NewService(store, &fakeLeadPool{unassigned: map[uuid.UUID]int64{}}, bus, logger.New("test")), store
}

func seedUser(t *testing.T, store *fakeAccountStore, username, role string) uuid.UUID {
	t.Helper()
	user := User{ID: uuid.New(), Username: username, Role: role, CreatedAt: time.Now()}
	store.users[user.ID] = &user
	return user.ID
}

func strPtr(s string) *string { return &s }

func TestUpdatePrimaryAdminUsernameImmutable(t *testing.T) {
	svc, store := newTestService(t)
	adminID := seedUser(t, store, PrimaryAdminUsername, "admin")

	_, err := svc.Update(context.Background(), adminID, UpdateUserRequest{Username: strPtr("root")})
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("renaming the primary admin: got %v, want forbidden", err)
	}
	if store.users[adminID].Username != PrimaryAdminUsername {
		t.Error("primary admin username must not change")
	}

	// Other fields on the primary admin stay editable.
	if _, err := svc.Update(context.Background(), adminID, UpdateUserRequest{Email: strPtr("ops@example.com")}); err != nil {
		t.Fatalf("editing primary admin email: %v", err)
	}
}

func TestUpdateUsernameUniqueness(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "pat", "agent")
	samID := seedUser(t, store, "sam", "agent")

	_, err := svc.Update(context.Background(), samID, UpdateUserRequest{Username: strPtr("pat")})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("duplicate username: got %v, want conflict", err)
	}

	// Re-submitting the current username is not a rename.
	if _, err := svc.Update(context.Background(), samID, UpdateUserRequest{Username: strPtr("sam")}); err != nil {
		t.Fatalf("unchanged username rejected: %v", err)
	}

	updated, err := svc.Update(context.Background(), samID, UpdateUserRequest{Username: strPtr("samuel")})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Username != "samuel" {
		t.Errorf("username = %q, want samuel", updated.Username)
	}
}

func TestUpdateRoleChecked(t *testing.T) {
	svc, store := newTestService(t)
	patID := seedUser(t, store, "pat", "agent")

	_, err := svc.Update(context.Background(), patID, UpdateUserRequest{Role: strPtr("superuser")})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("unknown role: got %v, want validation error", err)
	}

	updated, err := svc.Update(context.Background(), patID, UpdateUserRequest{Role: strPtr("admin")})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if updated.Role != "admin" {
		t.Errorf("role = %q, want admin", updated.Role)
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), uuid.New(), UpdateUserRequest{Email: strPtr("x@example.com")})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("unknown user: got %v, want not found", err)
	}
}

func TestDeleteAdminForbidden(t *testing.T) {
	svc, store := newTestService(t)
	adminID := seedUser(t, store, "boss", "admin")

	err := svc.Delete(context.Background(), adminID)
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("deleting an admin: got %v, want forbidden", err)
	}
	if _, ok := store.users[adminID]; !ok {
		t.Error("admin account must survive the delete attempt")
	}
}

func TestDeleteAgent(t *testing.T) {
	svc, store := newTestService(t)
	agentID := seedUser(t, store, "pat", "agent")

	if err := svc.Delete(context.Background(), agentID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != agentID {
		t.Errorf("deleted = %v, want [%s]", store.deleted, agentID)
	}
}

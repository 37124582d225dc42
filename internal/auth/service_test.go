package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

type fakeAccountStore struct {
	accounts map[uuid.UUID]*Account
}

func (f *fakeAccountStore) GetByUsername(_ context.Context, username string) (Account, error) {
	for _, account := range f.accounts {
		if account.Username == username {
			return *account, nil
		}
	}
	return Account{}, ErrUserNotFound
}

func (f *fakeAccountStore) GetByID(_ context.Context, id uuid.UUID) (Account, error) {
	if account, ok := f.accounts[id]; ok {
		return *account, nil
	}
	return Account{}, ErrUserNotFound
}

func (f *fakeAccountStore) SetSessionID(_ context.Context, userID uuid.UUID, sessionID string, _ time.Time) error {
	f.accounts[userID].SessionID = &sessionID
	return nil
}

func (f *fakeAccountStore) ClearSessionID(_ context.Context, userID uuid.UUID) error {
	f.accounts[userID].SessionID = nil
	return nil
}

type fixedAuthConfig struct{}

func (fixedAuthConfig) GetJWTSecret() string             { return "test-secret" }
func (fixedAuthConfig) GetAccessTokenTTL() time.Duration { return time.Hour }

func newTestService(t *testing.T) (*Service, *fakeAccountStore, uuid.UUID) {
	t.Helper()
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	userID := uuid.New()
	store := &fakeAccountStore{accounts: map[uuid.UUID]*Account{
		userID: {ID: userID, Username: "pat", PasswordHash: hash, Role: "agent"},
	}}
	return NewService(store, fixedAuthConfig{}, logger.New("test")), store, userID
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "pat", "wrong"); apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Errorf("wrong password: got %v, want unauthorized", err)
	}
	if _, err := svc.Login(ctx, "nobody", "hunter2"); apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Errorf("unknown user: got %v, want unauthorized", err)
	}
}

func TestLoginMintsSessionToken(t *testing.T) {
	svc, store, userID := newTestService(t)

	result, err := svc.Login(context.Background(), "pat", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if store.accounts[userID].SessionID == nil {
		t.Fatal("login must store a session ID")
	}

	parsed, err := jwt.Parse(result.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != userID.String() {
		t.Errorf("sub = %v, want %s", claims["sub"], userID)
	}
	if claims["sid"] != *store.accounts[userID].SessionID {
		t.Error("token session ID must match the stored one")
	}
	if claims["role"] != "agent" {
		t.Errorf("role = %v, want agent", claims["role"])
	}
}

func TestLoginRotatesSession(t *testing.T) {
	svc, store, userID := newTestService(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "pat", "hunter2")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	firstSession := *store.accounts[userID].SessionID

	if _, err := svc.Login(ctx, "pat", "hunter2"); err != nil {
		t.Fatalf("second login: %v", err)
	}
	if *store.accounts[userID].SessionID == firstSession {
		t.Fatal("second login must rotate the session ID")
	}

	// The first token's session no longer validates.
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(first.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}); err != nil {
		t.Fatalf("parse first token: %v", err)
	}
	err = svc.ValidateSession(ctx, userID, claims["sid"].(string))
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Errorf("stale session validated: %v", err)
	}
}

func TestValidateSession(t *testing.T) {
	svc, store, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "pat", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	current := *store.accounts[userID].SessionID

	if err := svc.ValidateSession(ctx, userID, current); err != nil {
		t.Errorf("current session rejected: %v", err)
	}
	if err := svc.ValidateSession(ctx, userID, ""); apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Errorf("empty session accepted: %v", err)
	}

	if err := svc.Logout(ctx, userID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.ValidateSession(ctx, userID, current); apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Errorf("session accepted after logout: %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	if err := svc.VerifyPassword(ctx, userID, "hunter2"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.VerifyPassword(ctx, userID, "wrong"); apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Errorf("wrong password: got %v, want unauthorized", err)
	}
}

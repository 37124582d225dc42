package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/config"
	"callcenter_backend/platform/logger"
)

// AccountStore is the persistence slice the auth service needs.
type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	SetSessionID(ctx context.Context, userID uuid.UUID, sessionID string, at time.Time) error
	ClearSessionID(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	accounts AccountStore
	cfg      config.AuthServiceConfig
	log      *logger.Logger
	now      func() time.Time
}

func NewService(accounts AccountStore, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{accounts: accounts, cfg: cfg, log: log, now: time.Now}
}

// LoginResult carries the minted token and the account it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   Account
}

// Login checks credentials and rotates the account's session ID, so any
// token from an earlier login stops passing the session guard the moment
// this one is issued.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if err == ErrUserNotFound {
			s.log.AuthEvent("login", username, false, "unknown user")
			return LoginResult{}, apperr.Unauthorized("invalid credentials")
		}
		return LoginResult{}, apperr.Storage("auth.login", err)
	}
	if !CheckPassword(account.PasswordHash, password) {
		s.log.AuthEvent("login", username, false, "bad password")
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	sessionID := uuid.NewString()
	now := s.now()
	if err := s.accounts.SetSessionID(ctx, account.ID, sessionID, now); err != nil {
		return LoginResult{}, apperr.Storage("auth.session", err)
	}
	account.SessionID = &sessionID

	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())
	token, err := s.mintToken(account, sessionID, now, expiresAt)
	if err != nil {
		return LoginResult{}, apperr.Internal("mint token", err)
	}

	s.log.AuthEvent("login", username, true, "")
	return LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *Service) mintToken(account Account, sessionID string, now, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  account.ID.String(),
		"role": account.Role,
		"sid":  sessionID,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTSecret()))
}

// Logout clears the account's session so the current token stops working.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.accounts.ClearSessionID(ctx, userID); err != nil {
		return apperr.Storage("auth.logout", err)
	}
	return nil
}

// ValidateSession reports whether the token's session ID is still the
// account's active one. A later login from another device rotates it and
// cuts this one off.
func (s *Service) ValidateSession(ctx context.Context, userID uuid.UUID, sessionID string) error {
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if err == ErrUserNotFound {
			return apperr.Unauthorized("account no longer exists")
		}
		return apperr.Storage("auth.validate", err)
	}
	if account.SessionID == nil || *account.SessionID != sessionID || sessionID == "" {
		return apperr.Unauthorized("session superseded by a newer login")
	}
	return nil
}

// VerifyPassword re-checks the acting user's password. Destructive admin
// operations call this even though the request already carries a valid token.
func (s *Service) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error {
	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if err == ErrUserNotFound {
			return apperr.Unauthorized("account no longer exists")
		}
		return apperr.Storage("auth.verify", err)
	}
	if !CheckPassword(account.PasswordHash, password) {
		s.log.AuthEvent("password_verify", account.Username, false, "bad password")
		return apperr.Unauthorized("invalid password")
	}
	return nil
}

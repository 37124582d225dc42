package users

import (
	"context"

	"github.com/google/uuid"

	"callcenter_backend/internal/auth"
	"callcenter_backend/internal/events"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

// PrimaryAdminUsername is the bootstrap account; its username never changes
// so operators can always get back in.
const PrimaryAdminUsername = "admin"

// LeadPool is the slice of the lead repository the user lifecycle touches.
type LeadPool interface {
	UnassignAgent(ctx context.Context, agentID uuid.UUID) (int64, error)
	CompletedCount(ctx context.Context, agentID uuid.UUID) (int64, error)
	AssignedCount(ctx context.Context, agentID uuid.UUID) (int64, error)
}

// AccountStore is the persistence slice behind the user lifecycle.
type AccountStore interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]User, error)
	ListAgents(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResetStats(ctx context.Context, userID uuid.UUID) error
	GetProgress(ctx context.Context, userID uuid.UUID) (int, error)
	SetProgress(ctx context.Context, userID uuid.UUID, index int) error
}

type Service struct {
	repo  AccountStore
	leads LeadPool
	bus   events.Bus
	log   *logger.Logger
}

func NewService(repo AccountStore, leads LeadPool, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leads, bus: bus, log: log}
}

// Create registers a new account. The plain password is hashed before
// storage and travels only on the event bus so the notification module can
// mail the credentials.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	if req.Role != "agent" && req.Role != "admin" {
		return UserResponse{}, apperr.Validation("role must be agent or admin")
	}

	taken, err := s.repo.UsernameTaken(ctx, req.Username)
	if err != nil {
		return UserResponse{}, apperr.Storage("users.create", err)
	}
	if taken {
		return UserResponse{}, apperr.Conflict("username already in use")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return UserResponse{}, apperr.Internal("hash password", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Username:      req.Username,
		PasswordHash:  hash,
		Email:         req.Email,
		Role:          req.Role,
		RCExtensionID: req.RCExtensionID,
	})
	if err != nil {
		return UserResponse{}, apperr.Storage("users.create", err)
	}

	s.log.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	s.bus.Publish(ctx, events.UserCreated{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Password:  req.Password,
	})
	return ToUserResponse(user), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return UserResponse{}, apperr.NotFound("user")
		}
		return UserResponse{}, apperr.Storage("users.get", err)
	}
	return ToUserResponse(user), nil
}

func (s *Service) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Storage("users.list", err)
	}
	return ToUserResponses(users), nil
}

func (s *Service) ListAgents(ctx context.Context) ([]UserResponse, error) {
	agents, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, apperr.Storage("users.agents", err)
	}
	return ToUserResponses(agents), nil
}

// Update edits an account. A new password is hashed here; a new username is
// checked for uniqueness, and the primary admin keeps its username.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (UserResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return UserResponse{}, apperr.NotFound("user")
		}
		return UserResponse{}, apperr.Storage("users.update", err)
	}

	if req.Role != nil && *req.Role != "agent" && *req.Role != "admin" {
		return UserResponse{}, apperr.Validation("role must be agent or admin")
	}
	if req.Username != nil && *req.Username != current.Username {
		if current.Username == PrimaryAdminUsername {
			return UserResponse{}, apperr.Forbidden("the primary admin's username cannot be changed")
		}
		taken, err := s.repo.UsernameTaken(ctx, *req.Username)
		if err != nil {
			return UserResponse{}, apperr.Storage("users.update", err)
		}
		if taken {
			return UserResponse{}, apperr.Conflict("username already in use")
		}
	}

	params := UpdateParams{
		Username:      req.Username,
		Role:          req.Role,
		Email:         req.Email,
		RCExtensionID: req.RCExtensionID,
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return UserResponse{}, apperr.Internal("hash password", err)
		}
		params.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if err == ErrNotFound {
			return UserResponse{}, apperr.NotFound("user")
		}
		return UserResponse{}, apperr.Storage("users.update", err)
	}
	return ToUserResponse(user), nil
}

// Delete removes an account, first returning its leads to the unassigned
// pool so no lead is orphaned with a dangling owner. Admin accounts cannot
// be deleted through the API.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return apperr.NotFound("user")
		}
		return apperr.Storage("users.delete", err)
	}
	if user.Role == "admin" {
		return apperr.Forbidden("admin accounts cannot be deleted")
	}

	released, err := s.leads.UnassignAgent(ctx, id)
	if err != nil {
		return apperr.Storage("users.delete", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == ErrNotFound {
			return apperr.NotFound("user")
		}
		return apperr.Storage("users.delete", err)
	}
	s.log.Info("user deleted", "user_id", id, "leads_released", released)
	return nil
}

// ResetStats zeroes an agent's running counters.
func (s *Service) ResetStats(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.ResetStats(ctx, id); err != nil {
		return apperr.Storage("users.reset", err)
	}
	return nil
}

// Progress reports the agent's position in their assigned list. The index
// can never lag behind the number of leads already dispositioned, even if
// the stored value was lost or the agent worked from another device.
func (s *Service) Progress(ctx context.Context, agentID uuid.UUID) (ProgressResponse, error) {
	stored, err := s.repo.GetProgress(ctx, agentID)
	if err != nil {
		if err == ErrNotFound {
			return ProgressResponse{}, apperr.NotFound("user")
		}
		return ProgressResponse{}, apperr.Storage("users.progress", err)
	}
	completed, err := s.leads.CompletedCount(ctx, agentID)
	if err != nil {
		return ProgressResponse{}, apperr.Storage("users.progress", err)
	}
	total, err := s.leads.AssignedCount(ctx, agentID)
	if err != nil {
		return ProgressResponse{}, apperr.Storage("users.progress", err)
	}

	index := stored
	if int(completed) > index {
		index = int(completed)
	}
	if index > int(total) {
		index = int(total)
	}
	return ProgressResponse{CurrentIndex: index, Total: int(total)}, nil
}

// SetProgress stores the agent's position; it only ever moves forward.
func (s *Service) SetProgress(ctx context.Context, agentID uuid.UUID, index int) error {
	if index < 0 {
		return apperr.Validation("index must not be negative")
	}
	if err := s.repo.SetProgress(ctx, agentID, index); err != nil {
		return apperr.Storage("users.progress", err)
	}
	return nil
}

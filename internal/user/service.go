package user

import (
	"log/slog"

	errors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/roles"
)

type RepositoryAPI interface {
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	GetAll() ([]*User, error)
	Create(u *User) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) GetByUsername(username string) (*User, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		s.logger.Error("failed to get user", "username", username, "error", err)
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

// CreateUser creates a new account on behalf of actor. The requested
// role must be in the actor's creatable set; the check runs before any
// write so a denied request leaves no trace.
func (s *Service) CreateUser(actor *User, dto CreateUserDTO) (*User, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	role, err := roles.ParseUserRole(dto.Role)
	if err != nil {
		return nil, errors.NewInvalidRoleError(dto.Role)
	}

	if !actor.CanCreateRole(role) {
		s.logger.Warn("user creation denied",
			"actor_id", actor.ID,
			"actor_role", actor.EffectiveRole(),
			"requested_role", role)
		return nil, errors.ErrPermissionDenied
	}

	existing, err := s.repo.GetByUsername(dto.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewDuplicateUserError("username", dto.Username)
	}

	actorID := actor.ID
	u := &User{
		Username:    dto.Username,
		Email:       dto.Email,
		Role:        role,
		IsActive:    true,
		CreatedByID: &actorID,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "username", dto.Username, "error", err)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", role, "created_by", actor.ID)
	return u, nil
}

func (s *Service) GetAll() ([]*User, error) {
	return s.repo.GetAll()
}

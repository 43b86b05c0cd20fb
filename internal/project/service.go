package project

import (
	"log/slog"

	errors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/dataset"
	"github.com/rsecloud/research-management/internal/roles"
	"github.com/rsecloud/research-management/internal/user"
)

type RepositoryAPI interface {
	GetByID(id int64) (*Project, error)
	GetAll() ([]*Project, error)
	// GetForUser returns projects where userID is the creator or a participant.
	GetForUser(userID int64) ([]*Project, error)
	// GetEditableForUser returns projects where userID is the creator or a
	// participant holding one of editorRoles.
	GetEditableForUser(userID int64, editorRoles []roles.ProjectRole) ([]*Project, error)
	Create(p *Project) error
	GetParticipant(projectID, userID int64) (*Participant, error)
	ListParticipants(projectID int64) ([]*Participant, error)
	// CreateParticipant resolves or creates the target user by username and
	// inserts the participant row in a single transaction. Either both
	// writes commit or neither does.
	CreateParticipant(projectID int64, username, email string, role roles.ProjectRole, creatorID int64) (*Participant, error)
	AttachDataset(projectID, datasetID int64) error
	ListDatasets(projectID int64) ([]*dataset.Dataset, error)
}

// DatasetAPI is the slice of the dataset service the project service
// needs for attachment checks.
type DatasetAPI interface {
	GetByID(id int64) (*dataset.Dataset, error)
}

type Service struct {
	repo     RepositoryAPI
	datasets DatasetAPI
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, datasets DatasetAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		datasets: datasets,
		logger:   logger,
	}
}

// EffectiveRole resolves the role actor holds on p. Global elevation and
// ownership short-circuit the participant table: a system controller's
// authority cannot be revoked by omission from the participant list.
// The bool is false when the actor has no relation to the project.
func (s *Service) EffectiveRole(actor *user.User, p *Project) (roles.ProjectRole, bool, error) {
	if actor.IsSuperuser {
		return roles.ProjectRoleAdmin, true, nil
	}
	if actor.EffectiveRole() == roles.UserRoleSystemController {
		return roles.ProjectRoleAdmin, true, nil
	}
	if p.IsCreator(actor.ID) {
		return roles.ProjectRoleAdmin, true, nil
	}

	participant, err := s.repo.GetParticipant(p.ID, actor.ID)
	if err != nil {
		return "", false, err
	}
	if participant == nil {
		return "", false, nil
	}
	return participant.Role, true, nil
}

func (s *Service) CreateProject(actor *user.User, dto CreateProjectDTO) (*Project, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if !actor.CanCreateProjects() {
		s.logger.Warn("project creation denied", "actor_id", actor.ID, "actor_role", actor.EffectiveRole())
		return nil, errors.ErrPermissionDenied
	}

	p := &Project{
		Name:        dto.Name,
		Description: dto.Description,
		CreatorID:   actor.ID,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create project", "name", dto.Name, "error", err)
		return nil, err
	}

	s.logger.Info("project created", "project_id", p.ID, "creator_id", actor.ID)
	return p, nil
}

func (s *Service) GetProject(actor *user.User, projectID int64) (*Project, error) {
	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.ErrProjectNotFound
	}

	_, ok, err := s.EffectiveRole(actor, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		// hide existence of projects the actor has no relation to
		return nil, errors.ErrProjectNotFound
	}
	return p, nil
}

// VisibleProjects filters per-query against storage; results reflect
// participant changes immediately.
func (s *Service) VisibleProjects(actor *user.User) ([]*Project, error) {
	if roles.CanViewAllProjects(actor.EffectiveRole()) {
		return s.repo.GetAll()
	}
	return s.repo.GetForUser(actor.ID)
}

func (s *Service) EditableProjects(actor *user.User) ([]*Project, error) {
	if roles.CanEditAllProjects(actor.EffectiveRole()) {
		return s.repo.GetAll()
	}
	return s.repo.GetEditableForUser(actor.ID, []roles.ProjectRole{
		roles.ProjectRoleAdmin,
		roles.ProjectRoleInvestigator,
	})
}

// AddParticipant adds username to the project with the requested role.
// The permission check runs before any write, so a denied request never
// creates a user or participant row.
func (s *Service) AddParticipant(actor *user.User, projectID int64, dto AddParticipantDTO) (*Participant, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	role, err := roles.ParseProjectRole(dto.Role)
	if err != nil {
		return nil, errors.NewInvalidRoleError(dto.Role)
	}

	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.ErrProjectNotFound
	}

	actorRole, ok, err := s.EffectiveRole(actor, p)
	if err != nil {
		return nil, err
	}
	if !ok || !roles.CanAssignRole(actorRole, role) {
		s.logger.Warn("participant addition denied",
			"actor_id", actor.ID,
			"project_id", projectID,
			"requested_role", role)
		return nil, errors.ErrPermissionDenied
	}

	participant, err := s.repo.CreateParticipant(projectID, dto.Username, dto.Email, role, actor.ID)
	if err != nil {
		if appErr, isApp := errors.IsAppError(err); isApp && appErr.Code == errors.ErrCodeDuplicateParticipant {
			return nil, err
		}
		s.logger.Error("failed to add participant",
			"project_id", projectID,
			"username", dto.Username,
			"error", err)
		return nil, err
	}

	s.logger.Info("participant added",
		"project_id", projectID,
		"user_id", participant.UserID,
		"role", role,
		"created_by", actor.ID)
	return participant, nil
}

func (s *Service) ListParticipants(actor *user.User, projectID int64) ([]*Participant, error) {
	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.ErrProjectNotFound
	}

	actorRole, ok, err := s.EffectiveRole(actor, p)
	if err != nil {
		return nil, err
	}
	if !ok || !roles.CanListParticipants(actorRole) {
		return nil, errors.ErrPermissionDenied
	}

	return s.repo.ListParticipants(projectID)
}

// AttachDataset links an existing dataset to the project. Requires edit
// authority on the project.
func (s *Service) AttachDataset(actor *user.User, projectID, datasetID int64) error {
	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.ErrProjectNotFound
	}

	actorRole, ok, err := s.EffectiveRole(actor, p)
	if err != nil {
		return err
	}
	if !ok || (actorRole != roles.ProjectRoleAdmin && actorRole != roles.ProjectRoleInvestigator) {
		return errors.ErrPermissionDenied
	}

	if _, err := s.datasets.GetByID(datasetID); err != nil {
		return err
	}

	if err := s.repo.AttachDataset(projectID, datasetID); err != nil {
		s.logger.Error("failed to attach dataset", "project_id", projectID, "dataset_id", datasetID, "error", err)
		return err
	}

	s.logger.Info("dataset attached", "project_id", projectID, "dataset_id", datasetID, "by", actor.ID)
	return nil
}

// ListDatasets returns the datasets attached to a project the actor can see.
func (s *Service) ListDatasets(actor *user.User, projectID int64) ([]*dataset.Dataset, error) {
	if _, err := s.GetProject(actor, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListDatasets(projectID)
}

package dataset

import (
	"log/slog"

	errors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/roles"
	"github.com/rsecloud/research-management/internal/user"
)

type RepositoryAPI interface {
	GetAll() ([]*Dataset, error)
	GetByID(id int64) (*Dataset, error)
	Create(d *Dataset) error
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

func (s *Service) GetAll() ([]*Dataset, error) {
	return s.repo.GetAll()
}

func (s *Service) GetByID(id int64) (*Dataset, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.ErrDatasetNotFound
	}
	return d, nil
}

// CreateDataset registers a dataset. Only data provider representatives
// and the elevated platform roles may register data; an omitted tier
// defaults to the most sensitive classification.
func (s *Service) CreateDataset(actor *user.User, dto CreateDatasetDTO) (*Dataset, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	actorRole := actor.EffectiveRole()
	if actorRole != roles.UserRoleSuperuser &&
		actorRole != roles.UserRoleSystemController &&
		actorRole != roles.UserRoleDataProviderRep {
		s.logger.Warn("dataset creation denied", "actor_id", actor.ID, "actor_role", actorRole)
		return nil, errors.ErrPermissionDenied
	}

	tier := DefaultTier
	if dto.Tier != nil {
		if !ValidTier(*dto.Tier) {
			return nil, errors.NewInvalidTierError(*dto.Tier)
		}
		tier = *dto.Tier
	}

	d := &Dataset{
		Name:        dto.Name,
		Description: dto.Description,
		Tier:        tier,
	}

	if err := s.repo.Create(d); err != nil {
		s.logger.Error("failed to create dataset", "name", dto.Name, "error", err)
		return nil, err
	}

	s.logger.Info("dataset created", "dataset_id", d.ID, "tier", d.Tier, "created_by", actor.ID)
	return d, nil
}

package postgres

import (
	stderrors "errors"

	apperrors "github.com/rsecloud/research-management/internal"
	datasetDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/dataset"
	projectDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/project"
	userDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/user"
	"github.com/rsecloud/research-management/internal/dataset"
	"github.com/rsecloud/research-management/internal/project"
	"github.com/rsecloud/research-management/internal/roles"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.RepositoryAPI {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(id int64) (*project.Project, error) {
	var m projectDatamodel.Project
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return project.FromDataModel(&m), nil
}

func (r *ProjectRepository) GetAll() ([]*project.Project, error) {
	var models []projectDatamodel.Project
	if err := r.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return fromDataModels(models), nil
}

func (r *ProjectRepository) GetForUser(userID int64) ([]*project.Project, error) {
	var models []projectDatamodel.Project
	err := r.db.
		Distinct("projects.*").
		Joins("LEFT JOIN participants ON participants.project_id = projects.id").
		Where("projects.creator_id = ? OR participants.user_id = ?", userID, userID).
		Order("projects.name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(models), nil
}

func (r *ProjectRepository) GetEditableForUser(userID int64, editorRoles []roles.ProjectRole) ([]*project.Project, error) {
	roleNames := make([]string, 0, len(editorRoles))
	for _, role := range editorRoles {
		roleNames = append(roleNames, string(role))
	}

	var models []projectDatamodel.Project
	err := r.db.
		Distinct("projects.*").
		Joins("LEFT JOIN participants ON participants.project_id = projects.id AND participants.user_id = ?", userID).
		Where("projects.creator_id = ? OR participants.role IN ?", userID, roleNames).
		Order("projects.name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(models), nil
}

func (r *ProjectRepository) Create(p *project.Project) error {
	m := project.ToDataModel(p)
	if err := r.db.Create(m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ProjectRepository) GetParticipant(projectID, userID int64) (*project.Participant, error) {
	var m projectDatamodel.Participant
	err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return project.ParticipantFromDataModel(&m), nil
}

func (r *ProjectRepository) ListParticipants(projectID int64) ([]*project.Participant, error) {
	type participantRow struct {
		projectDatamodel.Participant
		Username string
	}

	var rows []participantRow
	err := r.db.
		Model(&projectDatamodel.Participant{}).
		Select("participants.*, users.username AS username").
		Joins("JOIN users ON users.id = participants.user_id").
		Where("participants.project_id = ?", projectID).
		Order("users.username ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	participants := make([]*project.Participant, 0, len(rows))
	for i := range rows {
		p := project.ParticipantFromDataModel(&rows[i].Participant)
		p.Username = rows[i].Username
		participants = append(participants, p)
	}
	return participants, nil
}

// CreateParticipant resolves or creates the user and inserts the
// participant row inside one transaction. The unique index on
// (user_id, project_id) is the arbiter under concurrency: of two racing
// inserts exactly one commits, the other surfaces as a duplicate.
func (r *ProjectRepository) CreateParticipant(projectID int64, username, email string, role roles.ProjectRole, creatorID int64) (*project.Participant, error) {
	var created *project.Participant

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var u userDatamodel.User
		err := tx.Where("username = ?", username).First(&u).Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			u = userDatamodel.User{
				Username:    username,
				Email:       email,
				Role:        string(roles.UserRoleNone),
				IsActive:    true,
				CreatedByID: &creatorID,
			}
			if err := tx.Create(&u).Error; err != nil {
				if stderrors.Is(err, gorm.ErrDuplicatedKey) {
					return apperrors.NewDuplicateUserError("email", email)
				}
				return err
			}
		}

		var existing int64
		if err := tx.Model(&projectDatamodel.Participant{}).
			Where("project_id = ? AND user_id = ?", projectID, u.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.NewDuplicateParticipantError(username)
		}

		m := projectDatamodel.Participant{
			UserID:      u.ID,
			ProjectID:   projectID,
			Role:        string(role),
			CreatedByID: &creatorID,
		}
		if err := tx.Create(&m).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.NewDuplicateParticipantError(username)
			}
			return err
		}

		created = project.ParticipantFromDataModel(&m)
		created.Username = username
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *ProjectRepository) AttachDataset(projectID, datasetID int64) error {
	return r.db.
		Model(&projectDatamodel.Project{ID: projectID}).
		Association("Datasets").
		Append(&datasetDatamodel.Dataset{ID: datasetID})
}

func (r *ProjectRepository) ListDatasets(projectID int64) ([]*dataset.Dataset, error) {
	var models []datasetDatamodel.Dataset
	err := r.db.
		Model(&projectDatamodel.Project{ID: projectID}).
		Association("Datasets").
		Find(&models)
	if err != nil {
		return nil, err
	}
	datasets := make([]*dataset.Dataset, 0, len(models))
	for i := range models {
		datasets = append(datasets, dataset.FromDataModel(&models[i]))
	}
	return datasets, nil
}

func fromDataModels(models []projectDatamodel.Project) []*project.Project {
	projects := make([]*project.Project, 0, len(models))
	for i := range models {
		projects = append(projects, project.FromDataModel(&models[i]))
	}
	return projects
}

package project

import (
	"time"

	projectDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/project"
	"github.com/rsecloud/research-management/internal/roles"
)

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   int64     `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsCreator reports whether userID created this project. The creator is
// set once at creation and never changes.
func (p *Project) IsCreator(userID int64) bool {
	return p.CreatorID == userID
}

type Participant struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	Username    string            `json:"username,omitempty"`
	ProjectID   int64             `json:"project_id"`
	Role        roles.ProjectRole `json:"role"`
	CreatedByID *int64            `json:"created_by_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(m *projectDatamodel.Project) *Project {
	return &Project{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatorID:   m.CreatorID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ParticipantFromDataModel(m *projectDatamodel.Participant) *Participant {
	return &Participant{
		ID:          m.ID,
		UserID:      m.UserID,
		ProjectID:   m.ProjectID,
		Role:        roles.ProjectRole(m.Role),
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
	}
}

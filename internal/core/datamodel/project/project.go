package project

import (
	"time"

	datasetDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/dataset"
)

type Project struct {
	ID          int64                      `gorm:"primaryKey"`
	Name        string                     `gorm:"column:name;not null"`
	Description string                     `gorm:"column:description"`
	CreatorID   int64                      `gorm:"column:creator_id;not null;index"`
	CreatedAt   time.Time                  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time                  `gorm:"column:updated_at;default:now()"`
	Datasets    []datasetDatamodel.Dataset `gorm:"many2many:project_datasets"`
}

func (Project) TableName() string {
	return "projects"
}

// Participant links a user to a project with a role. The (user, project)
// pair is backed by a unique index so concurrent inserts of the same
// pair serialize to exactly one success.
type Participant struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null;uniqueIndex:idx_participant_user_project"`
	ProjectID   int64     `gorm:"column:project_id;not null;uniqueIndex:idx_participant_user_project"`
	Role        string    `gorm:"column:role;not null"`
	CreatedByID *int64    `gorm:"column:created_by_id"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (Participant) TableName() string {
	return "participants"
}

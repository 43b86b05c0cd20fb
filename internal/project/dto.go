package project

import (
	errors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/core/common/validation"
)

type CreateProjectDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d CreateProjectDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MinLength(2).MaxLength(200)
	v.Field("description", d.Description).MaxLength(2000)
	return v.Validate()
}

type AddParticipantDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (d AddParticipantDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(2).MaxLength(150).Username()
	v.Field("role", d.Role).Required()
	return v.Validate()
}

type ProjectResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorID   int64  `json:"creator_id"`
	CreatedAt   string `json:"created_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type ParticipantResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type ParticipantsResponse struct {
	Participants []ParticipantResponse `json:"participants"`
}

func (p *Project) ToResponse() ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (p *Participant) ToResponse() ParticipantResponse {
	return ParticipantResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Username:  p.Username,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

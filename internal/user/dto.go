package user

import (
	errors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/core/common/validation"
)

type CreateUserDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (d CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(2).MaxLength(150).Username()
	v.Field("email", d.Email).Required().MaxLength(254)
	v.Field("role", d.Role).Required()
	return v.Validate()
}

type UserResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   string `json:"created_at"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// CurrentUserResponse extends the user payload with the capabilities
// the caller holds, so clients can build their UI without re-deriving
// the role tables.
type CurrentUserResponse struct {
	UserResponse
	CreatableRoles    []string `json:"creatable_roles"`
	CanCreateUsers    bool     `json:"can_create_users"`
	CanCreateProjects bool     `json:"can_create_projects"`
}

func (u *User) ToCurrentUserResponse() CurrentUserResponse {
	creatable := u.CreatableRoles()
	names := make([]string, 0, len(creatable))
	for _, r := range creatable {
		names = append(names, string(r))
	}
	return CurrentUserResponse{
		UserResponse:      u.ToResponse(),
		CreatableRoles:    names,
		CanCreateUsers:    u.CanCreateUsers(),
		CanCreateProjects: u.CanCreateProjects(),
	}
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.EffectiveRole()),
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

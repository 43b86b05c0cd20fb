package user

import (
	"time"

	userDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/user"
	"github.com/rsecloud/research-management/internal/roles"
)

type User struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Role        roles.UserRole `json:"role"`
	IsSuperuser bool           `json:"is_superuser"`
	IsActive    bool           `json:"is_active"`
	CreatedByID *int64         `json:"created_by_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// EffectiveRole is the role used for every authorization decision. A
// superuser's stored role field is ignored.
func (u *User) EffectiveRole() roles.UserRole {
	if u.IsSuperuser {
		return roles.UserRoleSuperuser
	}
	return u.Role
}

func (u *User) CanCreateUsers() bool {
	return roles.CanCreateUsers(u.EffectiveRole())
}

func (u *User) CanCreateProjects() bool {
	return roles.CanCreateProjects(u.EffectiveRole())
}

// CreatableRoles lists the account roles this user may grant.
func (u *User) CreatableRoles() []roles.UserRole {
	return roles.CreatableUserRoles(u.EffectiveRole())
}

func (u *User) CanCreateRole(target roles.UserRole) bool {
	for _, r := range u.CreatableRoles() {
		if r == target {
			return true
		}
	}
	return false
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedByID: u.CreatedByID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromDataModel(m *userDatamodel.User) *User {
	role := roles.UserRole(m.Role)
	if _, err := roles.ParseUserRole(m.Role); err != nil {
		// rows written before role validation existed fall back to none
		role = roles.UserRoleNone
	}
	return &User{
		ID:          m.ID,
		Username:    m.Username,
		Email:       m.Email,
		Role:        role,
		IsSuperuser: m.IsSuperuser,
		IsActive:    m.IsActive,
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

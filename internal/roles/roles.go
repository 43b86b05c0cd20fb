package roles

import (
	"fmt"
)

// UserRole is a platform-wide role attached to a user account.
type UserRole string

const (
	UserRoleSuperuser        UserRole = "superuser"
	UserRoleSystemController UserRole = "system_controller"
	UserRoleResearchCoord    UserRole = "research_coordinator"
	UserRoleDataProviderRep  UserRole = "data_provider_representative"
	UserRoleNone             UserRole = "none"
)

// ProjectRole is a role a user holds on a single project.
type ProjectRole string

const (
	ProjectRoleAdmin        ProjectRole = "project_admin"
	ProjectRoleReferee      ProjectRole = "referee"
	ProjectRoleInvestigator ProjectRole = "investigator"
	ProjectRoleResearcher   ProjectRole = "researcher"
)

// creatableUserRoles maps a user role to the roles it may grant when
// creating accounts. Built once; never mutated after init.
var creatableUserRoles = map[UserRole][]UserRole{
	UserRoleSuperuser: {
		UserRoleSystemController,
		UserRoleResearchCoord,
		UserRoleDataProviderRep,
	},
	UserRoleSystemController: {
		UserRoleResearchCoord,
		UserRoleDataProviderRep,
	},
	UserRoleResearchCoord:   {},
	UserRoleDataProviderRep: {},
	UserRoleNone:            {},
}

// creatableProjectRoles is a strict two-level hierarchy: admins create
// investigators and researchers, investigators create researchers only.
// A role never appears in its own creatable set.
var creatableProjectRoles = map[ProjectRole][]ProjectRole{
	ProjectRoleAdmin:        {ProjectRoleInvestigator, ProjectRoleResearcher},
	ProjectRoleInvestigator: {ProjectRoleResearcher},
	ProjectRoleReferee:      {},
	ProjectRoleResearcher:   {},
}

var projectCreators = map[UserRole]bool{
	UserRoleSuperuser:        true,
	UserRoleSystemController: true,
	UserRoleResearchCoord:    true,
}

// ParseUserRole validates a raw role value. Unknown values are rejected
// here so queries never have to handle them.
func ParseUserRole(raw string) (UserRole, error) {
	r := UserRole(raw)
	if _, ok := creatableUserRoles[r]; !ok {
		return "", fmt.Errorf("invalid user role: %q", raw)
	}
	return r, nil
}

// ParseProjectRole validates a raw project role value.
func ParseProjectRole(raw string) (ProjectRole, error) {
	r := ProjectRole(raw)
	if _, ok := creatableProjectRoles[r]; !ok {
		return "", fmt.Errorf("invalid project role: %q", raw)
	}
	return r, nil
}

// CreatableUserRoles returns the roles this role may grant when creating
// a new user account.
func CreatableUserRoles(r UserRole) []UserRole {
	set := creatableUserRoles[r]
	out := make([]UserRole, len(set))
	copy(out, set)
	return out
}

// CreatableProjectRoles returns the project roles this role may assign
// when adding a participant.
func CreatableProjectRoles(r ProjectRole) []ProjectRole {
	set := creatableProjectRoles[r]
	out := make([]ProjectRole, len(set))
	copy(out, set)
	return out
}

// CanCreateUsers reports whether the role may create user accounts.
func CanCreateUsers(r UserRole) bool {
	return len(creatableUserRoles[r]) > 0
}

// CanCreateProjects reports whether the role may create projects.
func CanCreateProjects(r UserRole) bool {
	return projectCreators[r]
}

// CanAddParticipant reports whether the project role may add participants.
func CanAddParticipant(r ProjectRole) bool {
	return len(creatableProjectRoles[r]) > 0
}

// CanListParticipants reports whether the project role may list all
// participants of the project.
func CanListParticipants(r ProjectRole) bool {
	return r == ProjectRoleAdmin
}

// CanAssignRole reports whether role r may assign target to a new
// participant.
func CanAssignRole(r ProjectRole, target ProjectRole) bool {
	for _, allowed := range creatableProjectRoles[r] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanViewAllProjects reports whether the user role sees every project
// regardless of participation.
func CanViewAllProjects(r UserRole) bool {
	return r == UserRoleSuperuser || r == UserRoleSystemController
}

// CanEditAllProjects reports whether the user role may edit every project.
func CanEditAllProjects(r UserRole) bool {
	return r == UserRoleSuperuser || r == UserRoleSystemController
}

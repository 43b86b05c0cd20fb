package auth

import (
	"log/slog"
	"net/http"

	"github.com/rsecloud/research-management/internal/user"
)

// RoleAuthorization gates routes on the acting user's global role.
// Service-layer checks remain authoritative; this keeps obviously
// unauthorized requests out of the handlers.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{
		logger: logger,
	}
}

func (ra *RoleAuthorization) require(check func(u *user.User) bool, denial string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !check(u) {
				ra.logger.WarnContext(r.Context(), denial,
					"user_id", u.ID,
					"role", u.EffectiveRole())
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUserCreation admits only roles with a non-empty creatable set.
func (ra *RoleAuthorization) RequireUserCreation() func(http.Handler) http.Handler {
	return ra.require(func(u *user.User) bool {
		return u.CanCreateUsers()
	}, "access denied: cannot create users")
}

// RequireProjectCreation admits only roles allowed to create projects.
func (ra *RoleAuthorization) RequireProjectCreation() func(http.Handler) http.Handler {
	return ra.require(func(u *user.User) bool {
		return u.CanCreateProjects()
	}, "access denied: cannot create projects")
}

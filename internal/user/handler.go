package user

import (
	"encoding/json"
	"net/http"

	errors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/transport"
)

type ServiceAPI interface {
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	CreateUser(actor *User, dto CreateUserDTO) (*User, error)
	GetAll() ([]*User, error)
}

// CurrentUserResolver loads the acting user from the request context.
type CurrentUserResolver func(r *http.Request) (*User, bool)

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	CurrentUser CurrentUserResolver
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, currentUser CurrentUserResolver) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		CurrentUser: currentUser,
	}
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, u.ToCurrentUserResponse())
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateUser(actor, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created.ToResponse())
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// only roles that can create users get the account listing
	if !actor.CanCreateUsers() {
		h.WriteAppError(w, errors.ErrPermissionDenied)
		return
	}

	users, err := h.Service.GetAll()
	if err != nil {
		h.Logger.Error("ListUsers: failed to list users", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	resp := UsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, u.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

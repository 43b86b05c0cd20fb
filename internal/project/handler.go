package project

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/rsecloud/research-management/internal/dataset"
	"github.com/rsecloud/research-management/internal/transport"
	"github.com/rsecloud/research-management/internal/user"
)

type ServiceAPI interface {
	CreateProject(actor *user.User, dto CreateProjectDTO) (*Project, error)
	GetProject(actor *user.User, projectID int64) (*Project, error)
	VisibleProjects(actor *user.User) ([]*Project, error)
	EditableProjects(actor *user.User) ([]*Project, error)
	AddParticipant(actor *user.User, projectID int64, dto AddParticipantDTO) (*Participant, error)
	ListParticipants(actor *user.User, projectID int64) ([]*Participant, error)
	AttachDataset(actor *user.User, projectID, datasetID int64) error
	ListDatasets(actor *user.User, projectID int64) ([]*dataset.Dataset, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	CurrentUser user.CurrentUserResolver
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, currentUser user.CurrentUserResolver) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		CurrentUser: currentUser,
	}
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.CreateProject(actor, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p.ToResponse())
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, err := h.projectID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	p, err := h.Service.GetProject(actor, projectID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

// ListProjects returns the projects visible to the actor. Pass
// ?editable=true for the subset the actor may modify.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var (
		projects []*Project
		err      error
	)
	if r.URL.Query().Get("editable") == "true" {
		projects, err = h.Service.EditableProjects(actor)
	} else {
		projects, err = h.Service.VisibleProjects(actor)
	}
	if err != nil {
		h.Logger.Error("ListProjects: failed to list projects", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	resp := ProjectsResponse{Projects: make([]ProjectResponse, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, p.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, err := h.projectID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var dto AddParticipantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	participant, err := h.Service.AddParticipant(actor, projectID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, participant.ToResponse())
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, err := h.projectID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	participants, err := h.Service.ListParticipants(actor, projectID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp := ParticipantsResponse{Participants: make([]ParticipantResponse, 0, len(participants))}
	for _, p := range participants {
		resp.Participants = append(resp.Participants, p.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AttachDataset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, err := h.projectID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	datasetID, err := strconv.ParseInt(chi.URLParam(r, "datasetID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	if err := h.Service.AttachDataset(actor, projectID, datasetID); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, err := h.projectID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	datasets, err := h.Service.ListDatasets(actor, projectID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp := dataset.DatasetsResponse{Datasets: make([]dataset.DatasetResponse, 0, len(datasets))}
	for _, d := range datasets {
		resp.Datasets = append(resp.Datasets, d.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) projectID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

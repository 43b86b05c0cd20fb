package dataset

import (
	"encoding/json"
	"net/http"

	"github.com/rsecloud/research-management/internal/transport"
	"github.com/rsecloud/research-management/internal/user"
)

type ServiceAPI interface {
	GetAll() ([]*Dataset, error)
	GetByID(id int64) (*Dataset, error)
	CreateDataset(actor *user.User, dto CreateDatasetDTO) (*Dataset, error)
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

func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.Service.GetAll()
	if err != nil {
		h.Logger.Error("ListDatasets: failed to list datasets", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}

	resp := DatasetsResponse{Datasets: make([]DatasetResponse, 0, len(datasets))}
	for _, d := range datasets {
		resp.Datasets = append(resp.Datasets, d.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.CurrentUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDatasetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.CreateDataset(actor, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, d.ToResponse())
}

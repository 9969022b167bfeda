package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minitex/ipregister/internal/api/request"
	"github.com/minitex/ipregister/internal/api/response"
	"github.com/minitex/ipregister/internal/core"
	"github.com/minitex/ipregister/internal/model"
	"github.com/minitex/ipregister/internal/platform"
)

type Registrar struct {
	svc *core.RegistrarService
}

func NewRegistrar(svc *core.RegistrarService) *Registrar {
	return &Registrar{svc: svc}
}

// List returns all registrars, or only the enabled ones with ?enabled=true.
func (h *Registrar) List(w http.ResponseWriter, r *http.Request) {
	enabledOnly := r.URL.Query().Get("enabled") == "true"

	registrars, err := h.svc.List(r.Context(), enabledOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, registrars)
}

func (h *Registrar) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRegistrar
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := time.Now()
	registrar := &model.IpRegistrar{
		ID:          platform.NewID(),
		Label:       req.Label,
		Description: req.Description,
		Email:       req.Email,
		Enabled:     enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.svc.Create(r.Context(), registrar); err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, registrar)
}

func (h *Registrar) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	registrar, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, registrar)
}

func (h *Registrar) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateRegistrar
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	registrar := &model.IpRegistrar{
		ID:          id,
		Label:       req.Label,
		Description: req.Description,
		Email:       req.Email,
		Enabled:     req.Enabled,
	}
	if err := h.svc.Update(r.Context(), registrar); err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, registrar)
}

func (h *Registrar) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

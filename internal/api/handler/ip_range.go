package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/minitex/ipregister/internal/api/middleware"
	"github.com/minitex/ipregister/internal/api/request"
	"github.com/minitex/ipregister/internal/api/response"
	"github.com/minitex/ipregister/internal/core"
	"github.com/minitex/ipregister/internal/model"
)

type IpRange struct {
	svc        *core.RangeService
	registrars *core.RegistrarService
}

func NewIpRange(svc *core.RangeService, registrars *core.RegistrarService) *IpRange {
	return &IpRange{svc: svc, registrars: registrars}
}

// dashboardRow is one range on the organization dashboard, with the labels of
// the registrars it is on file with.
type dashboardRow struct {
	model.IpRange
	RegistrarLabels []string `json:"registrar_labels"`
}

// ListByOrganization returns the organization's ranges ordered by their
// binary start endpoint, each annotated with registrar labels.
func (h *IpRange) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := request.RequireID(chi.URLParam(r, "orgID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranges, err := h.svc.ListByOrganization(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	registrars, err := h.registrars.List(r.Context(), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	labels := make(map[string]string, len(registrars))
	for _, registrar := range registrars {
		labels[registrar.ID] = registrar.Label
	}

	rows := make([]dashboardRow, 0, len(ranges))
	for _, rng := range ranges {
		row := dashboardRow{IpRange: rng}
		for _, registrarID := range rng.RegistrarIDs {
			if label, ok := labels[registrarID]; ok {
				row.RegistrarLabels = append(row.RegistrarLabels, label)
			}
		}
		rows = append(rows, row)
	}
	response.WriteJSON(w, http.StatusOK, rows)
}

func (h *IpRange) Create(w http.ResponseWriter, r *http.Request) {
	orgID, err := request.RequireID(chi.URLParam(r, "orgID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateIpRange
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := mw.GetActor(r.Context())
	rng, err := h.svc.Create(r.Context(), orgID, req.Expression, actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, rng)
}

func (h *IpRange) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rng, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, rng)
}

func (h *IpRange) Delete(w http.ResponseWriter, r *http.Request) {
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

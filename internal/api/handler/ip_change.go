package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/minitex/ipregister/internal/api/middleware"
	"github.com/minitex/ipregister/internal/api/request"
	"github.com/minitex/ipregister/internal/api/response"
	"github.com/minitex/ipregister/internal/core"
)

type IpChange struct {
	svc *core.ChangeService
}

func NewIpChange(svc *core.ChangeService) *IpChange {
	return &IpChange{svc: svc}
}

func (h *IpChange) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := request.RequireID(chi.URLParam(r, "orgID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	changes, err := h.svc.ListByOrganization(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, changes)
}

func (h *IpChange) Create(w http.ResponseWriter, r *http.Request) {
	orgID, err := request.RequireID(chi.URLParam(r, "orgID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateIpChange
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := mw.GetActor(r.Context())
	change, err := h.svc.CreateDraft(r.Context(), orgID, actor, req.RegistrarIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, change)
}

func (h *IpChange) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	change, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, change)
}

// Save stores one submission of the change edit form. Suppressing the
// notification is reserved for operators.
func (h *IpChange) Save(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.SaveIpChange
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := mw.GetActor(r.Context())
	if req.SuppressNotification && !actor.Operator {
		response.WriteError(w, http.StatusForbidden, "only operators may suppress the notification")
		return
	}

	change, err := h.svc.SaveDraft(r.Context(), id, core.DraftUpdate{
		ConfirmRangeIDs:      req.ConfirmRangeIDs,
		RemoveRangeIDs:       req.RemoveRangeIDs,
		NewExpressions:       req.NewExpressions,
		RegistrarIDs:         req.RegistrarIDs,
		SuppressNotification: req.SuppressNotification,
		Comment:              req.Comment,
	}, actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, change)
}

// ActionTable returns one row per existing range of the change's
// organization with its selected action.
func (h *IpChange) ActionTable(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	change, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rows, err := h.svc.BuildActionTable(r.Context(), change)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, rows)
}

// Preview returns the exact notification that completing the change would
// send, without sending it.
func (h *IpChange) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	change, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	msg, err := h.svc.Compose(r.Context(), change)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, msg)
}

func (h *IpChange) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := mw.GetActor(r.Context())
	change, err := h.svc.Complete(r.Context(), id, actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, change)
}

func (h *IpChange) Abandon(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Abandon(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

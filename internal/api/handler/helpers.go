package handler

import (
	"errors"
	"net/http"

	"github.com/minitex/ipregister/internal/api/response"
	"github.com/minitex/ipregister/internal/core"
	"github.com/minitex/ipregister/internal/iprange"
)

// writeServiceError maps core errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var parseErr *iprange.ParseError
	switch {
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrAlreadyCompleted):
		response.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrRegistrarInUse):
		response.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrNoActions):
		response.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrRegistrarNotSelectable):
		response.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrDispatchFailed):
		response.WriteError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &parseErr):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

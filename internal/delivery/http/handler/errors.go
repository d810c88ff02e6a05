package handler

import (
	"net/http"

	"go-clinic-workflow/pkg/apperror"
	"go-clinic-workflow/pkg/response"
)

// writeError maps a usecase failure to its HTTP status. Errors without a
// kind are answered with fallback and a 500.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		response.NotFound(w, err.Error())
	case apperror.KindInvalidInput:
		response.BadRequest(w, err.Error())
	case apperror.KindConflict:
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors handlers wrap domain failures in.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("data not available")
	ErrUpstream    = errors.New("upstream service failed")
)

// RespondError maps errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "No encontrado", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Datos inválidos", err.Error())
	case errors.Is(err, ErrUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Datos no disponibles", err.Error())
	case errors.Is(err, ErrUpstream):
		Problem(w, http.StatusBadGateway, "Servicio externo", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Error interno", "")
	}
}

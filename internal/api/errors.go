package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"vidconv/internal/model"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeFailure writes {success:false, error} with a status derived from err.
func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), failure{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	var conflict *model.OutputConflictError
	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrInputValidation),
		errors.Is(err, model.ErrFormatValidation),
		errors.Is(err, model.ErrNoValidInputs):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrOutputPath):
		return http.StatusConflict
	case errors.Is(err, model.ErrEngine),
		errors.Is(err, model.ErrOutputVerification),
		errors.Is(err, model.ErrProbe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"LearnLoopAPI/internal/apperrors"
)

// maxBodyBytes bounds request bodies from untrusted clients.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondAppError maps the failure taxonomy to HTTP statuses. Nothing else
// may leak to the transport layer.
func respondAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsError(err)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch appErr.Kind {
	case apperrors.KindInvalidPayload:
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: appErr.Message, Details: appErr.Fields})
	case apperrors.KindUnauthorized:
		respondError(w, http.StatusUnauthorized, appErr.Message)
	case apperrors.KindRateLimited:
		respondError(w, http.StatusTooManyRequests, appErr.Message)
	case apperrors.KindUpstreamUnavailable:
		respondError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.InvalidJSON()
	}
	return body, nil
}

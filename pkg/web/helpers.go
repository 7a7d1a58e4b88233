package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Envelope wraps every JSON response of the REST API.
type Envelope struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Data       any       `json:"data"`
	Timestamp  time.Time `json:"timestamp"`
	StatusCode int       `json:"statusCode"`
}

// now is replaced in tests.
var now = time.Now

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload Envelope) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondSuccess writes data inside a successful envelope.
func RespondSuccess(w http.ResponseWriter, logger *slog.Logger, status int, message string, data any) {
	respondJSON(w, logger, status, newEnvelope(true, status, message, data))
}

// RespondError writes an unsuccessful envelope without data.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, newEnvelope(false, status, message, nil))
}

// RespondErrorData writes an unsuccessful envelope carrying details, e.g. field errors.
func RespondErrorData(w http.ResponseWriter, logger *slog.Logger, status int, message string, data any) {
	respondJSON(w, logger, status, newEnvelope(false, status, message, data))
}

func newEnvelope(success bool, status int, message string, data any) Envelope {
	return Envelope{
		Success:    success,
		Message:    message,
		Data:       data,
		Timestamp:  now().UTC(),
		StatusCode: status,
	}
}

// ParseID extracts and validates the positive numeric ID from the request path. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	pathValueID := r.PathValue("id")
	id, err := strconv.ParseInt(pathValueID, 10, 64)
	if err != nil || id <= 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return 0, false
	}
	return id, true
}

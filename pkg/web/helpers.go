// Package web contains shared HTTP plumbing: response helpers and the
// middleware chain used by the router.
package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

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

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// ParseID extracts the {id} path value. Returns the ID and a boolean
// indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		RespondError(w, logger, http.StatusBadRequest, "Missing ID in request path")
		return "", false
	}
	return id, true
}

// ParseIndex extracts the {index} path value as a non-negative integer.
// Returns the index and a boolean indicating success.
func ParseIndex(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int, bool) {
	pathValue := r.PathValue("index")
	index, err := strconv.Atoi(pathValue)
	if err != nil || index < 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid index: %s", pathValue))
		return 0, false
	}
	return index, true
}

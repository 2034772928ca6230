package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseID extracts the int32 product identifier from the "id" path segment.
// Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int32, bool) {
	return ParsePathInt32(w, r, logger, "id")
}

// ParsePathInt32 extracts an int32 from the named path segment, responding 400 on failure.
func ParsePathInt32(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (int32, bool) {
	raw := r.PathValue(key)
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", key, raw))
		return 0, false
	}
	return int32(value), true
}

// ParseQueryInt32 extracts a required int32 of at least minimum from the named query parameter,
// responding 400 when it is absent, malformed or too small.
func ParseQueryInt32(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string, minimum int32) (int32, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("%s query parameter is required", key))
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || int32(value) < minimum {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", key, raw))
		return 0, false
	}
	return int32(value), true
}

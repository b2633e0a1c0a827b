package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	body := map[string]string{"error": msg}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

// detail strips the sentinel prefix so the caller sees only the underlying
// client failure, matching the upstream gateway's details field.
func detail(err error, sentinel error) string {
	if err == nil {
		return ""
	}
	if sentinel != nil {
		return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	}
	return err.Error()
}

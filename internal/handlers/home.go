package handlers

import "net/http"

// Health reports liveness only; it is public.
func Health(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

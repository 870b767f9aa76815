package handlers

import (
	"net/http"

	"github.com/zat/initiative/internal/query"
)

// GET /admin/api/dashboard
func Dashboard(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, query.DashboardFor(e.Holder.Snapshot()))
	}
}

// GET /admin/api/capacity lists every group with its fill level, full
// groups first.
func Capacity(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		full := []query.GroupStatus{}
		rest := []query.GroupStatus{}
		for _, g := range st.Groups {
			gs := query.GroupStatusFor(st, g)
			if gs.IsFull {
				full = append(full, gs)
			} else {
				rest = append(rest, gs)
			}
		}
		writeJSON(w, http.StatusOK, append(full, rest...))
	}
}

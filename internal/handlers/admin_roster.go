package handlers

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/zat/initiative/internal/export"
	"github.com/zat/initiative/internal/query"
	"github.com/zat/initiative/internal/store"
)

func (e *Env) writeCSV(w http.ResponseWriter, r *http.Request, t export.Table, logical string) {
	// buffer so a failed write can still answer 500
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, t); err != nil {
		e.writeError(w, r, err)
		return
	}
	name := export.Filename(logical, e.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+name+`"; filename*=UTF-8''`+url.PathEscape(name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GET /admin/api/export/students.csv takes the student list filters.
func ExportStudentsCSV(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		e.writeCSV(w, r, export.StudentsTable(st, filterStudents(st, r)), "students")
	}
}

// GET /admin/api/export/groups/{id}.csv
func ExportGroupCSV(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		id := chi.URLParam(r, "id")
		if _, ok := query.GroupByID(st, id); !ok {
			e.writeError(w, r, store.ErrNotFound)
			return
		}
		t, name := export.GroupAttendanceTable(st, id)
		e.writeCSV(w, r, t, name)
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
	"github.com/zat/initiative/internal/store"
)

type studentRow struct {
	models.Student
	CourseName     string `json:"courseName,omitempty"`
	GroupName      string `json:"groupName,omitempty"`
	AttendanceRate int    `json:"attendanceRate"`
}

func makeStudentRow(st models.AppState, s models.Student) studentRow {
	row := studentRow{Student: s, AttendanceRate: query.AttendanceRate(st, s.ID)}
	if c, ok := query.CourseByID(st, models.Deref(s.CourseID)); ok {
		row.CourseName = c.Name
	}
	if g, ok := query.GroupByID(st, models.Deref(s.GroupID)); ok {
		row.GroupName = g.Name
	}
	return row
}

// filterStudents applies ?q= ?courseId= ?groupId= ?unassigned=1 ?isNew=.
// The CSV export uses the same filters.
func filterStudents(st models.AppState, r *http.Request) []models.Student {
	q := r.URL.Query()
	list := query.SearchStudents(st, q.Get("q"))
	cid, gid := q.Get("courseId"), q.Get("groupId")
	unassigned, _ := strconv.ParseBool(q.Get("unassigned"))
	isNew, newErr := strconv.ParseBool(q.Get("isNew"))

	out := make([]models.Student, 0, len(list))
	for _, s := range list {
		switch {
		case cid != "" && models.Deref(s.CourseID) != cid:
		case gid != "" && models.Deref(s.GroupID) != gid:
		case unassigned && !query.IsUnassigned(s):
		case newErr == nil && s.IsNew != isNew:
		default:
			out = append(out, s)
		}
	}
	return out
}

// GET /admin/api/students
func ListStudents(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		list := filterStudents(st, r)
		out := make([]studentRow, 0, len(list))
		for _, s := range list {
			out = append(out, makeStudentRow(st, s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /admin/api/students/{id}
func GetStudent(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		id := chi.URLParam(r, "id")
		s, ok := query.StudentByID(st, id)
		if !ok {
			e.writeError(w, r, store.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"student":    makeStudentRow(st, s),
			"summary":    query.StudentAttendanceSummary(st, id),
			"attendance": query.AttendanceByStudent(st, id),
		})
	}
}

// POST /admin/api/students
func CreateStudent(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.StudentInput
		if err := decodeJSON(r, &in); err != nil {
			e.writeError(w, r, err)
			return
		}
		next, err := e.apply(func(st models.AppState) (models.AppState, error) { return e.Store.AddStudent(st, in) })
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		s := next.Students[len(next.Students)-1]
		writeJSON(w, http.StatusCreated, mutation{
			Data:    makeStudentRow(next, s),
			Flash:   MakeFlash("student_added", ""),
			Warning: capacityWarning(next, s.GroupID),
		})
	}
}

// PATCH /admin/api/students/{id}
func UpdateStudent(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var p models.StudentPatch
		if err := decodeJSON(r, &p); err != nil {
			e.writeError(w, r, err)
			return
		}
		next, err := e.apply(func(st models.AppState) (models.AppState, error) { return e.Store.UpdateStudent(st, id, p) })
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		s, _ := query.StudentByID(next, id)
		writeJSON(w, http.StatusOK, mutation{
			Data:    makeStudentRow(next, s),
			Flash:   MakeFlash("student_updated", ""),
			Warning: capacityWarning(next, s.GroupID),
		})
	}
}

// DELETE /admin/api/students/{id}
func DeleteStudent(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		e.mutate(w, r, http.StatusOK, "student_deleted",
			func(st models.AppState) (models.AppState, error) { return e.Store.DeleteStudent(st, id) }, nil)
	}
}

// POST /admin/api/students/{id}/move  {"groupId": "..."}
func MoveStudent(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in struct {
			GroupID string `json:"groupId"`
		}
		if err := decodeJSON(r, &in); err != nil {
			e.writeError(w, r, err)
			return
		}
		next, err := e.apply(func(st models.AppState) (models.AppState, error) {
			return e.Store.MoveStudentToGroup(st, id, in.GroupID)
		})
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		s, _ := query.StudentByID(next, id)
		writeJSON(w, http.StatusOK, mutation{
			Data:    makeStudentRow(next, s),
			Flash:   MakeFlash("student_moved", ""),
			Warning: capacityWarning(next, s.GroupID),
		})
	}
}

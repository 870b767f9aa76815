package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
	"github.com/zat/initiative/internal/store"
)

type sessionRow struct {
	models.Session
	GroupName       string `json:"groupName"`
	CheckinURL      string `json:"checkinUrl"`
	QRImage         string `json:"qrImage"`
	AttendanceCount int    `json:"attendanceCount"`
	StudentCount    int    `json:"studentCount"`
}

func (e *Env) makeSessionRow(r *http.Request, st models.AppState, s models.Session) sessionRow {
	row := sessionRow{
		Session:         s,
		CheckinURL:      e.CheckinURL(r, s.QRToken),
		QRImage:         "/qr/" + s.QRToken + ".png",
		AttendanceCount: len(query.AttendanceBySession(st, s.ID)),
		StudentCount:    query.GroupStudentCount(st, s.GroupID),
	}
	if g, ok := query.GroupByID(st, s.GroupID); ok {
		row.GroupName = g.Name
	}
	return row
}

// GET /admin/api/sessions?groupId=
func ListSessions(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		list := st.Sessions
		if gid := r.URL.Query().Get("groupId"); gid != "" {
			list = query.SessionsByGroup(st, gid)
		}
		out := make([]sessionRow, 0, len(list))
		for _, s := range list {
			out = append(out, e.makeSessionRow(r, st, s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type attendee struct {
	Student  models.Student `json:"student"`
	Attended bool           `json:"attended"`
	At       string         `json:"attendedAt,omitempty"`
}

// GET /admin/api/sessions/{id} lists the group's students with a present
// mark, plus anyone who attended and has since left the group.
func GetSession(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		id := chi.URLParam(r, "id")
		s, ok := query.SessionByID(st, id)
		if !ok {
			e.writeError(w, r, store.ErrNotFound)
			return
		}
		at := map[string]string{}
		for _, a := range query.AttendanceBySession(st, id) {
			at[a.StudentID] = a.AttendedAt
		}
		roster := []attendee{}
		seen := map[string]bool{}
		for _, stu := range query.StudentsByGroup(st, s.GroupID) {
			t, ok := at[stu.ID]
			roster = append(roster, attendee{Student: stu, Attended: ok, At: t})
			seen[stu.ID] = true
		}
		for sid, t := range at {
			if seen[sid] {
				continue
			}
			if stu, ok := query.StudentByID(st, sid); ok {
				roster = append(roster, attendee{Student: stu, Attended: true, At: t})
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session":  e.makeSessionRow(r, st, s),
			"students": roster,
		})
	}
}

// POST /admin/api/sessions
func CreateSession(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.SessionInput
		if err := decodeJSON(r, &in); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.mutate(w, r, http.StatusCreated, "session_added",
			func(st models.AppState) (models.AppState, error) { return e.Store.AddSession(st, in) },
			func(st models.AppState) any { return e.makeSessionRow(r, st, st.Sessions[len(st.Sessions)-1]) })
	}
}

// PATCH /admin/api/sessions/{id}
func UpdateSession(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var p models.SessionPatch
		if err := decodeJSON(r, &p); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.mutate(w, r, http.StatusOK, "saved",
			func(st models.AppState) (models.AppState, error) { return e.Store.UpdateSession(st, id, p) },
			func(st models.AppState) any { s, _ := query.SessionByID(st, id); return e.makeSessionRow(r, st, s) })
	}
}

// DELETE /admin/api/sessions/{id}
func DeleteSession(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		e.mutate(w, r, http.StatusOK, "deleted",
			func(st models.AppState) (models.AppState, error) { return e.Store.DeleteSession(st, id) }, nil)
	}
}

// POST /admin/api/sessions/{id}/attendance  {"studentId": "..."}
// Marking someone already present is a no-op.
func MarkAttendance(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in struct {
			StudentID string `json:"studentId"`
		}
		if err := decodeJSON(r, &in); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.mutate(w, r, http.StatusOK, "attendance_set",
			func(st models.AppState) (models.AppState, error) { return e.Store.MarkAttendance(st, in.StudentID, id) },
			func(st models.AppState) any { return query.AttendanceBySession(st, id) })
	}
}

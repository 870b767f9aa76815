package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
	"github.com/zat/initiative/internal/store"
)

// mutation is the body returned by every admin write.
type mutation struct {
	Data  any    `json:"data,omitempty"`
	Flash *Flash `json:"flash,omitempty"`
	// Warning is set when the write left a group over its capacity.
	Warning *Flash `json:"warning,omitempty"`
}

// mutate runs fn through the holder and answers with pick(next) on success.
func (e *Env) mutate(w http.ResponseWriter, r *http.Request, code int, flash string,
	fn func(models.AppState) (models.AppState, error), pick func(models.AppState) any) {
	next, err := e.apply(fn)
	if err != nil {
		e.writeError(w, r, err)
		return
	}
	out := mutation{Flash: MakeFlash(flash, "")}
	if pick != nil {
		out.Data = pick(next)
	}
	writeJSON(w, code, out)
}

func capacityWarning(st models.AppState, groupID *string) *Flash {
	if groupID == nil || !store.OverCapacity(st, *groupID) {
		return nil
	}
	return MakeFlash("over_capacity", "")
}

// GET /admin/api/courses
func ListCourses(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		out := make([]query.CourseWithStats, 0, len(st.Courses))
		for _, c := range st.Courses {
			out = append(out, query.CourseWithStats{Course: c, CourseStats: query.CourseStatsFor(st, c.ID)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /admin/api/courses/{id}
func GetCourse(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		id := chi.URLParam(r, "id")
		c, ok := query.CourseByID(st, id)
		if !ok {
			e.writeError(w, r, store.ErrNotFound)
			return
		}
		groups := query.GroupsByCourse(st, id)
		statuses := make([]query.GroupStatus, 0, len(groups))
		for _, g := range groups {
			statuses = append(statuses, query.GroupStatusFor(st, g))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"course": c,
			"stats":  query.CourseStatsFor(st, id),
			"groups": statuses,
		})
	}
}

// POST /admin/api/courses
func CreateCourse(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.CourseInput
		if err := decodeJSON(r, &in); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.mutate(w, r, http.StatusCreated, "course_added",
			func(st models.AppState) (models.AppState, error) { return e.Store.AddCourse(st, in) },
			func(st models.AppState) any { return st.Courses[len(st.Courses)-1] })
	}
}

// PATCH /admin/api/courses/{id}
func UpdateCourse(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var p models.CoursePatch
		if err := decodeJSON(r, &p); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.mutate(w, r, http.StatusOK, "course_updated",
			func(st models.AppState) (models.AppState, error) { return e.Store.UpdateCourse(st, id, p) },
			func(st models.AppState) any { c, _ := query.CourseByID(st, id); return c })
	}
}

// DELETE /admin/api/courses/{id} removes the course with its groups and
// their sessions; its students become unassigned.
func DeleteCourse(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		e.mutate(w, r, http.StatusOK, "course_deleted",
			func(st models.AppState) (models.AppState, error) { return e.Store.DeleteCourse(st, id) }, nil)
	}
}

// GET /admin/api/groups?courseId=
func ListGroups(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		groups := st.Groups
		if cid := r.URL.Query().Get("courseId"); cid != "" {
			groups = query.GroupsByCourse(st, cid)
		}
		out := make([]query.GroupStatus, 0, len(groups))
		for _, g := range groups {
			out = append(out, query.GroupStatusFor(st, g))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /admin/api/groups/{id}
func GetGroup(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := e.Holder.Snapshot()
		id := chi.URLParam(r, "id")
		g, ok := query.GroupByID(st, id)
		if !ok {
			e.writeError(w, r, store.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   query.GroupStatusFor(st, g),
			"students": query.StudentsByGroup(st, id),
			"sessions": query.SessionsByGroup(st, id),
		})
	}
}

// POST /admin/api/groups
func CreateGroup(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.GroupInput
		if err := decodeJSON(r, &in); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.mutate(w, r, http.StatusCreated, "group_added",
			func(st models.AppState) (models.AppState, error) { return e.Store.AddGroup(st, in) },
			func(st models.AppState) any { return st.Groups[len(st.Groups)-1] })
	}
}

// PATCH /admin/api/groups/{id}
func UpdateGroup(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var p models.GroupPatch
		if err := decodeJSON(r, &p); err != nil {
			e.writeError(w, r, err)
			return
		}
		next, err := e.apply(func(st models.AppState) (models.AppState, error) { return e.Store.UpdateGroup(st, id, p) })
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		g, _ := query.GroupByID(next, id)
		writeJSON(w, http.StatusOK, mutation{
			Data:    g,
			Flash:   MakeFlash("group_updated", ""),
			Warning: capacityWarning(next, &id),
		})
	}
}

// DELETE /admin/api/groups/{id}
func DeleteGroup(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		e.mutate(w, r, http.StatusOK, "group_deleted",
			func(st models.AppState) (models.AppState, error) { return e.Store.DeleteGroup(st, id) }, nil)
	}
}

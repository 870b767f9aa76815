// Package query holds read-only lookups and joins over an AppState. Every
// function is a linear scan; data sets are tens to hundreds of records.
package query

import (
	"sort"
	"strings"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/services"
)

func CourseByID(st models.AppState, id string) (models.Course, bool) {
	for _, c := range st.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

func GroupByID(st models.AppState, id string) (models.Group, bool) {
	for _, g := range st.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.Group{}, false
}

func StudentByID(st models.AppState, id string) (models.Student, bool) {
	for _, s := range st.Students {
		if s.ID == id {
			return s, true
		}
	}
	return models.Student{}, false
}

func SessionByID(st models.AppState, id string) (models.Session, bool) {
	for _, s := range st.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Session{}, false
}

func AttendanceByID(st models.AppState, id string) (models.Attendance, bool) {
	for _, a := range st.Attendance {
		if a.ID == id {
			return a, true
		}
	}
	return models.Attendance{}, false
}

// StudentByPhone matches on the normalized number, so formatting differences
// between the stored and the typed value do not matter.
func StudentByPhone(st models.AppState, phone string) (models.Student, bool) {
	want := services.NormPhone(phone)
	if want == "" {
		return models.Student{}, false
	}
	for _, s := range st.Students {
		if services.NormPhone(s.PhoneNumber) == want {
			return s, true
		}
	}
	return models.Student{}, false
}

func SessionByToken(st models.AppState, token string) (models.Session, bool) {
	if token == "" {
		return models.Session{}, false
	}
	for _, s := range st.Sessions {
		if s.QRToken == token {
			return s, true
		}
	}
	return models.Session{}, false
}

func GroupsByCourse(st models.AppState, courseID string) []models.Group {
	out := []models.Group{}
	for _, g := range st.Groups {
		if g.CourseID == courseID {
			out = append(out, g)
		}
	}
	return out
}

func StudentsByCourse(st models.AppState, courseID string) []models.Student {
	out := []models.Student{}
	for _, s := range st.Students {
		if s.CourseID != nil && *s.CourseID == courseID {
			out = append(out, s)
		}
	}
	return out
}

func StudentsByGroup(st models.AppState, groupID string) []models.Student {
	out := []models.Student{}
	for _, s := range st.Students {
		if s.GroupID != nil && *s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out
}

// IsUnassigned reports whether s has no group, whatever its course.
func IsUnassigned(s models.Student) bool {
	return s.GroupID == nil || *s.GroupID == ""
}

// UnassignedStudents are students without a group.
func UnassignedStudents(st models.AppState) []models.Student {
	out := []models.Student{}
	for _, s := range st.Students {
		if IsUnassigned(s) {
			out = append(out, s)
		}
	}
	return out
}

// SessionsByGroup returns the group's sessions ordered by date, oldest first.
// Unparseable dates sort last; ties keep insertion order.
func SessionsByGroup(st models.AppState, groupID string) []models.Session {
	out := []models.Session{}
	for _, s := range st.Sessions {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, oki := models.ParseDate(out[i].Date)
		tj, okj := models.ParseDate(out[j].Date)
		if oki != okj {
			return oki
		}
		return ti.Before(tj)
	})
	return out
}

func AttendanceBySession(st models.AppState, sessionID string) []models.Attendance {
	out := []models.Attendance{}
	for _, a := range st.Attendance {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out
}

func AttendanceByStudent(st models.AppState, studentID string) []models.Attendance {
	out := []models.Attendance{}
	for _, a := range st.Attendance {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out
}

func HasAttended(st models.AppState, studentID, sessionID string) bool {
	for _, a := range st.Attendance {
		if a.StudentID == studentID && a.SessionID == sessionID {
			return true
		}
	}
	return false
}

// PhoneTaken reports whether a student other than exceptID uses phone.
func PhoneTaken(st models.AppState, phone, exceptID string) bool {
	s, ok := StudentByPhone(st, phone)
	return ok && s.ID != exceptID
}

// TokenTaken reports whether any session already uses token.
func TokenTaken(st models.AppState, token string) bool {
	_, ok := SessionByToken(st, token)
	return ok
}

// SearchStudents matches a case-insensitive name fragment or a phone
// fragment. An empty query returns every student.
func SearchStudents(st models.AppState, q string) []models.Student {
	q = strings.TrimSpace(q)
	if q == "" {
		return append([]models.Student{}, st.Students...)
	}
	lower := strings.ToLower(q)
	digits := services.DigitsOnly(q)

	out := []models.Student{}
	for _, s := range st.Students {
		switch {
		case strings.Contains(strings.ToLower(s.FullName), lower):
			out = append(out, s)
		case strings.Contains(s.PhoneNumber, q):
			out = append(out, s)
		case digits != "" && strings.Contains(services.DigitsOnly(s.PhoneNumber), digits):
			out = append(out, s)
		}
	}
	return out
}

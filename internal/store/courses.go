package store

import (
	"strings"

	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/models"
)

func (s *Store) AddCourse(st models.AppState, in models.CourseInput) (models.AppState, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return st, err
	}
	next := st.Clone()
	c := models.Course{
		ID:          s.newID(),
		Name:        in.Name,
		NameEn:      strings.TrimSpace(in.NameEn),
		Description: strings.TrimSpace(in.Description),
		Icon:        in.Icon,
		CreatedAt:   s.stamp(),
	}
	next.Courses = append(next.Courses, c)

	next, err := s.commit(st, next, "add course")
	if err == nil {
		s.publish(events.Success, "course.added", "تم إضافة الكورس", map[string]string{"courseId": c.ID})
	}
	return next, err
}

func (s *Store) UpdateCourse(st models.AppState, id string, p models.CoursePatch) (models.AppState, error) {
	if err := Validate(p); err != nil {
		return st, err
	}
	next := st.Clone()
	i := courseIndex(next, id)
	if i < 0 {
		return st, s.notFound("course", id)
	}
	c := &next.Courses[i]
	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			c.Name = name
		}
	}
	if p.NameEn != nil {
		c.NameEn = strings.TrimSpace(*p.NameEn)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}

	next, err := s.commit(st, next, "update course")
	if err == nil {
		s.publish(events.Success, "course.updated", "تم تحديث الكورس", map[string]string{"courseId": id})
	}
	return next, err
}

// DeleteCourse removes the course, its groups, their sessions and those
// sessions' attendance. Students of the course stay, with courseId and
// groupId cleared.
func (s *Store) DeleteCourse(st models.AppState, id string) (models.AppState, error) {
	if courseIndex(st, id) < 0 {
		return st, s.notFound("course", id)
	}
	next := st.Clone()

	next.Courses = filter(next.Courses, func(c models.Course) bool { return c.ID != id })

	removedGroups := make(map[string]bool)
	next.Groups = filter(next.Groups, func(g models.Group) bool {
		if g.CourseID == id {
			removedGroups[g.ID] = true
			return false
		}
		return true
	})
	next = dropSessions(next, func(sess models.Session) bool { return removedGroups[sess.GroupID] })

	for i := range next.Students {
		stu := &next.Students[i]
		inCourse := stu.CourseID != nil && *stu.CourseID == id
		inGroup := stu.GroupID != nil && removedGroups[*stu.GroupID]
		if inCourse || inGroup {
			stu.CourseID = nil
			stu.GroupID = nil
		}
	}

	next, err := s.commit(st, next, "delete course")
	if err == nil {
		s.publish(events.Success, "course.deleted", "تم حذف الكورس", map[string]string{"courseId": id})
	}
	return next, err
}

func courseIndex(st models.AppState, id string) int {
	for i, c := range st.Courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// dropSessions removes the matching sessions and the attendance that pointed
// at them.
func dropSessions(st models.AppState, drop func(models.Session) bool) models.AppState {
	gone := make(map[string]bool)
	st.Sessions = filter(st.Sessions, func(sess models.Session) bool {
		if drop(sess) {
			gone[sess.ID] = true
			return false
		}
		return true
	})
	if len(gone) > 0 {
		st.Attendance = filter(st.Attendance, func(a models.Attendance) bool { return !gone[a.SessionID] })
	}
	return st
}

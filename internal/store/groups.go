package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
)

func (s *Store) AddGroup(st models.AppState, in models.GroupInput) (models.AppState, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return st, err
	}
	if courseIndex(st, in.CourseID) < 0 {
		return st, fieldInvalid("courseId", "course does not exist")
	}
	next := st.Clone()
	g := models.Group{
		ID:             s.newID(),
		CourseID:       in.CourseID,
		Name:           in.Name,
		InstructorName: strings.TrimSpace(in.InstructorName),
		MaxCapacity:    models.CopyInt(in.MaxCapacity),
		CreatedAt:      s.stamp(),
	}
	next.Groups = append(next.Groups, g)

	next, err := s.commit(st, next, "add group")
	if err == nil {
		s.publish(events.Success, "group.added", "تم إضافة المجموعة", map[string]string{"groupId": g.ID})
	}
	return next, err
}

// UpdateGroup merges p. Moving a group to another course carries its
// students along so their courseId keeps matching the group's.
func (s *Store) UpdateGroup(st models.AppState, id string, p models.GroupPatch) (models.AppState, error) {
	if err := Validate(p); err != nil {
		return st, err
	}
	next := st.Clone()
	i := groupIndex(next, id)
	if i < 0 {
		return st, s.notFound("group", id)
	}
	g := &next.Groups[i]
	if p.CourseID != nil && *p.CourseID != g.CourseID {
		if courseIndex(st, *p.CourseID) < 0 {
			return st, fieldInvalid("courseId", "course does not exist")
		}
		g.CourseID = *p.CourseID
		for j := range next.Students {
			stu := &next.Students[j]
			if stu.GroupID != nil && *stu.GroupID == id {
				stu.CourseID = models.StringPtr(g.CourseID)
			}
		}
	}
	if p.Name != nil {
		if name := strings.TrimSpace(*p.Name); name != "" {
			g.Name = name
		}
	}
	if p.InstructorName != nil {
		g.InstructorName = strings.TrimSpace(*p.InstructorName)
	}
	switch {
	case p.ClearMaxCapacity:
		g.MaxCapacity = nil
	case p.MaxCapacity != nil:
		g.MaxCapacity = models.CopyInt(p.MaxCapacity)
	}

	next, err := s.commit(st, next, "update group")
	if err == nil {
		s.publish(events.Success, "group.updated", "تم تحديث المجموعة", map[string]string{"groupId": id})
		s.warnIfOverCapacity(next, id)
	}
	return next, err
}

// DeleteGroup removes the group and its sessions (with their attendance).
// Its students keep their course and lose the group.
func (s *Store) DeleteGroup(st models.AppState, id string) (models.AppState, error) {
	if groupIndex(st, id) < 0 {
		return st, s.notFound("group", id)
	}
	next := st.Clone()
	next.Groups = filter(next.Groups, func(g models.Group) bool { return g.ID != id })
	next = dropSessions(next, func(sess models.Session) bool { return sess.GroupID == id })
	for i := range next.Students {
		if g := next.Students[i].GroupID; g != nil && *g == id {
			next.Students[i].GroupID = nil
		}
	}

	next, err := s.commit(st, next, "delete group")
	if err == nil {
		s.publish(events.Success, "group.deleted", "تم حذف المجموعة", map[string]string{"groupId": id})
	}
	return next, err
}

// OverCapacity reports whether the group holds more students than its
// capacity allows. Capacity is advisory: the store never refuses a student
// because of it.
func OverCapacity(st models.AppState, groupID string) bool {
	g, ok := query.GroupByID(st, groupID)
	if !ok || g.MaxCapacity == nil || *g.MaxCapacity <= 0 {
		return false
	}
	return query.GroupStudentCount(st, groupID) > *g.MaxCapacity
}

func (s *Store) warnIfOverCapacity(st models.AppState, groupID string) {
	if !OverCapacity(st, groupID) {
		return
	}
	g, _ := query.GroupByID(st, groupID)
	count := query.GroupStudentCount(st, groupID)
	s.publish(events.Warning, "group.over_capacity",
		fmt.Sprintf("المجموعة %s تجاوزت الحد الأقصى (%d/%d)", g.Name, count, *g.MaxCapacity),
		map[string]string{
			"groupId":     groupID,
			"count":       strconv.Itoa(count),
			"maxCapacity": strconv.Itoa(*g.MaxCapacity),
		})
}

func groupIndex(st models.AppState, id string) int {
	for i, g := range st.Groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

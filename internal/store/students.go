package store

import (
	"strings"

	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
	"github.com/zat/initiative/internal/services"
)

const msgPhoneTaken = "رقم الهاتف مسجل مسبقاً"

// PhoneTakenText is the field error for a phone number used by another student.
const PhoneTakenText = "phone number already registered"

// AddStudent stores a student with a normalized phone number. A phone
// already used by another student is rejected. When only groupId is given
// the course is taken from the group.
func (s *Store) AddStudent(st models.AppState, in models.StudentInput) (models.AppState, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if err := Validate(in); err != nil {
		return st, err
	}
	phone := services.NormPhone(in.PhoneNumber)
	if query.PhoneTaken(st, phone, "") {
		s.publish(events.Error, "student.phone_taken", msgPhoneTaken, map[string]string{"phoneNumber": phone})
		return st, fieldInvalid("phoneNumber", PhoneTakenText)
	}
	courseID, groupID, err := placement(st, blankToNil(in.CourseID), blankToNil(in.GroupID), in.GroupID != nil)
	if err != nil {
		return st, err
	}

	next := st.Clone()
	stu := models.Student{
		ID:                    s.newID(),
		FullName:              in.FullName,
		PhoneNumber:           phone,
		IsNew:                 in.IsNew,
		CertificateFeePaid:    in.CertificateFeePaid,
		FirstInstallmentPaid:  in.FirstInstallmentPaid,
		SecondInstallmentPaid: in.SecondInstallmentPaid,
		CourseID:              courseID,
		GroupID:               groupID,
		CreatedAt:             s.stamp(),
	}
	next.Students = append(next.Students, stu)

	next, err = s.commit(st, next, "add student")
	if err == nil {
		s.publish(events.Success, "student.added", "تم إضافة الطالب بنجاح", map[string]string{"studentId": stu.ID})
		if groupID != nil {
			s.warnIfOverCapacity(next, *groupID)
		}
	}
	return next, err
}

func (s *Store) UpdateStudent(st models.AppState, id string, p models.StudentPatch) (models.AppState, error) {
	if err := Validate(p); err != nil {
		return st, err
	}
	next := st.Clone()
	i := studentIndex(next, id)
	if i < 0 {
		return st, s.notFound("student", id)
	}
	stu := &next.Students[i]

	if p.FullName != nil {
		if name := strings.TrimSpace(*p.FullName); name != "" {
			stu.FullName = name
		}
	}
	if p.PhoneNumber != nil {
		phone := services.NormPhone(*p.PhoneNumber)
		if query.PhoneTaken(st, phone, id) {
			s.publish(events.Error, "student.phone_taken", msgPhoneTaken, map[string]string{"phoneNumber": phone})
			return st, fieldInvalid("phoneNumber", PhoneTakenText)
		}
		stu.PhoneNumber = phone
	}
	if p.IsNew != nil {
		stu.IsNew = *p.IsNew
	}
	if p.CertificateFeePaid != nil {
		stu.CertificateFeePaid = *p.CertificateFeePaid
	}
	if p.FirstInstallmentPaid != nil {
		stu.FirstInstallmentPaid = *p.FirstInstallmentPaid
	}
	if p.SecondInstallmentPaid != nil {
		stu.SecondInstallmentPaid = *p.SecondInstallmentPaid
	}

	prevGroup := models.Deref(stu.GroupID)
	courseID, groupID := stu.CourseID, stu.GroupID
	groupExplicit := false
	if p.ClearCourse {
		courseID, groupID = nil, nil
	}
	if p.ClearGroup {
		groupID = nil
	}
	if p.CourseID != nil {
		courseID = blankToNil(p.CourseID)
	}
	if p.GroupID != nil {
		groupID = blankToNil(p.GroupID)
		groupExplicit = true
		if groupID != nil && p.CourseID == nil {
			// the group decides the course
			courseID = nil
		}
	}
	courseID, groupID, err := placement(st, courseID, groupID, groupExplicit)
	if err != nil {
		return st, err
	}
	stu.CourseID, stu.GroupID = courseID, groupID

	next, err = s.commit(st, next, "update student")
	if err == nil {
		s.publish(events.Success, "student.updated", "تم تحديث بيانات الطالب", map[string]string{"studentId": id})
		if g := models.Deref(groupID); g != "" && g != prevGroup {
			s.warnIfOverCapacity(next, g)
		}
	}
	return next, err
}

// DeleteStudent removes the student and exactly their attendance rows.
func (s *Store) DeleteStudent(st models.AppState, id string) (models.AppState, error) {
	if studentIndex(st, id) < 0 {
		return st, s.notFound("student", id)
	}
	next := st.Clone()
	next.Students = filter(next.Students, func(stu models.Student) bool { return stu.ID != id })
	next.Attendance = filter(next.Attendance, func(a models.Attendance) bool { return a.StudentID != id })

	next, err := s.commit(st, next, "delete student")
	if err == nil {
		s.publish(events.Success, "student.deleted", "تم حذف الطالب", map[string]string{"studentId": id})
	}
	return next, err
}

// MoveStudentToGroup puts the student in groupID and in that group's course.
func (s *Store) MoveStudentToGroup(st models.AppState, studentID, groupID string) (models.AppState, error) {
	g, ok := query.GroupByID(st, groupID)
	if !ok {
		return st, s.notFound("group", groupID)
	}
	next := st.Clone()
	i := studentIndex(next, studentID)
	if i < 0 {
		return st, s.notFound("student", studentID)
	}
	next.Students[i].GroupID = models.StringPtr(g.ID)
	next.Students[i].CourseID = models.StringPtr(g.CourseID)

	next, err := s.commit(st, next, "move student")
	if err == nil {
		s.publish(events.Success, "student.moved", "تم نقل الطالب إلى "+g.Name,
			map[string]string{"studentId": studentID, "groupId": groupID})
		s.warnIfOverCapacity(next, groupID)
	}
	return next, err
}

// placement checks a course/group pair against st and fills the course from
// the group when it is missing. A group from another course is an error when
// the caller named it, and is dropped when it was only carried over.
func placement(st models.AppState, courseID, groupID *string, groupExplicit bool) (*string, *string, error) {
	if courseID != nil && courseIndex(st, *courseID) < 0 {
		return nil, nil, fieldInvalid("courseId", "course does not exist")
	}
	if groupID == nil {
		return models.CopyString(courseID), nil, nil
	}
	g, ok := query.GroupByID(st, *groupID)
	if !ok {
		if !groupExplicit {
			return models.CopyString(courseID), nil, nil
		}
		return nil, nil, fieldInvalid("groupId", "group does not exist")
	}
	if courseID == nil {
		return models.StringPtr(g.CourseID), models.StringPtr(g.ID), nil
	}
	if *courseID != g.CourseID {
		if groupExplicit {
			return nil, nil, fieldInvalid("groupId", "group belongs to another course")
		}
		return models.CopyString(courseID), nil, nil
	}
	return models.CopyString(courseID), models.StringPtr(g.ID), nil
}

func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func studentIndex(st models.AppState, id string) int {
	for i, stu := range st.Students {
		if stu.ID == id {
			return i
		}
	}
	return -1
}

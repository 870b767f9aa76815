package store

import (
	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
)

// MarkAttendance records that the student attended the session. Marking an
// existing pair again returns st as is, without a write.
func (s *Store) MarkAttendance(st models.AppState, studentID, sessionID string) (models.AppState, error) {
	stu, ok := query.StudentByID(st, studentID)
	if !ok {
		return st, s.notFound("student", studentID)
	}
	sess, ok := query.SessionByID(st, sessionID)
	if !ok {
		return st, s.notFound("session", sessionID)
	}
	if query.HasAttended(st, studentID, sessionID) {
		return st, nil
	}

	next := st.Clone()
	next.Attendance = append(next.Attendance, models.Attendance{
		ID:         s.newID(),
		StudentID:  studentID,
		SessionID:  sessionID,
		AttendedAt: s.stamp(),
	})

	next, err := s.commit(st, next, "mark attendance")
	if err == nil {
		s.publish(events.Success, "attendance.recorded", "تم تسجيل الحضور: "+stu.FullName+" - "+sess.Title,
			map[string]string{"studentId": studentID, "sessionId": sessionID})
	}
	return next, err
}

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zat/initiative/internal/models"
)

// fixture: course c1 with groups g1 (3 sessions) and g2 (1 session), five
// students in c1, one unassigned student, and course c2 with nothing.
func fixture() models.AppState {
	st := models.AppState{
		Courses: []models.Course{
			{ID: "c1", Name: "البرمجة"},
			{ID: "c2", Name: "كانفا"},
		},
		Groups: []models.Group{
			{ID: "g1", CourseID: "c1", Name: "A", MaxCapacity: models.IntPtr(4)},
			{ID: "g2", CourseID: "c1", Name: "B", MaxCapacity: models.IntPtr(10)},
		},
		Sessions: []models.Session{
			{ID: "s3", GroupID: "g1", Date: "2024-03-10", QRToken: "t3", CreatedAt: "2024-03-03T00:00:00.000Z"},
			{ID: "s1", GroupID: "g1", Date: "2024-03-01", QRToken: "t1", CreatedAt: "2024-03-01T00:00:00.000Z"},
			{ID: "s2", GroupID: "g1", Date: "2024-03-05", QRToken: "t2", CreatedAt: "2024-03-02T00:00:00.000Z"},
			{ID: "s4", GroupID: "g2", Date: "2024-03-02", QRToken: "t4", CreatedAt: "2024-03-04T00:00:00.000Z"},
		},
	}
	for i, g := range []string{"g1", "g1", "g1", "g1", "g2"} {
		id := string(rune('a' + i))
		st.Students = append(st.Students, models.Student{
			ID:          "st-" + id,
			FullName:    "Student " + id,
			PhoneNumber: "010000000" + string(rune('0'+i)),
			CourseID:    models.StringPtr("c1"),
			GroupID:     models.StringPtr(g),
		})
	}
	st.Students = append(st.Students, models.Student{ID: "st-x", FullName: "Sara Ali", PhoneNumber: "0111 222 3333"})
	st.Attendance = []models.Attendance{
		{ID: "a1", StudentID: "st-a", SessionID: "s1"},
		{ID: "a2", StudentID: "st-a", SessionID: "s2"},
		{ID: "a3", StudentID: "st-e", SessionID: "s4"},
	}
	st.Normalize()
	return st
}

func TestCourseStats(t *testing.T) {
	st := fixture()

	got := CourseStatsFor(st, "c1")
	assert.Equal(t, CourseStats{GroupCount: 2, StudentCount: 5, SessionCount: 4}, got)

	assert.Equal(t, CourseStats{}, CourseStatsFor(st, "c2"))
}

func TestAttendanceRate(t *testing.T) {
	st := fixture()
	// fourth session for g1 so st-a attended 2 of 4
	st.Sessions = append(st.Sessions, models.Session{ID: "s5", GroupID: "g1", Date: "2024-03-20"})

	sum := StudentAttendanceSummary(st, "st-a")
	assert.Equal(t, 2, sum.Attended)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 50, AttendanceRate(st, "st-a"))

	assert.Equal(t, 100, AttendanceRate(st, "st-e"))
	assert.Equal(t, 0, AttendanceRate(st, "st-b"))
}

func TestAttendanceRateNoSessions(t *testing.T) {
	st := fixture()
	st.Groups = append(st.Groups, models.Group{ID: "g3", CourseID: "c2"})
	st.Students = append(st.Students, models.Student{ID: "st-z", GroupID: models.StringPtr("g3")})

	assert.Equal(t, 0, AttendanceRate(st, "st-z"))
	assert.Equal(t, 0, AttendanceRate(st, "st-x"), "unassigned")
	assert.Equal(t, 0, AttendanceRate(st, "missing"))
}

func TestAttendanceRateRounds(t *testing.T) {
	st := fixture()
	// st-a: 2 of 3 sessions
	assert.Equal(t, 67, AttendanceRate(st, "st-a"))
}

func TestGroupCapacity(t *testing.T) {
	st := fixture()

	assert.Equal(t, 4, GroupStudentCount(st, "g1"))
	assert.True(t, IsGroupFull(st, "g1"))
	assert.False(t, IsGroupFull(st, "g2"))
	assert.False(t, IsGroupFull(st, "nope"))

	st.Groups[0].MaxCapacity = nil
	assert.False(t, IsGroupFull(st, "g1"), "no capacity means never full")
}

func TestSessionsByGroupOrdersByDate(t *testing.T) {
	st := fixture()
	st.Sessions = append(st.Sessions, models.Session{ID: "bad", GroupID: "g1", Date: "someday"})

	var ids []string
	for _, s := range SessionsByGroup(st, "g1") {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "s3", "bad"}, ids)
	assert.NotNil(t, SessionsByGroup(st, "none"))
}

func TestLookups(t *testing.T) {
	st := fixture()

	s, ok := StudentByPhone(st, "011-1222-3333")
	require.True(t, ok)
	assert.Equal(t, "st-x", s.ID)

	_, ok = StudentByPhone(st, "")
	assert.False(t, ok)

	sess, ok := SessionByToken(st, "t4")
	require.True(t, ok)
	assert.Equal(t, "s4", sess.ID)

	_, ok = SessionByToken(st, "")
	assert.False(t, ok)

	assert.True(t, HasAttended(st, "st-a", "s1"))
	assert.False(t, HasAttended(st, "st-a", "s3"))

	assert.True(t, PhoneTaken(st, "01112223333", "st-a"))
	assert.False(t, PhoneTaken(st, "01112223333", "st-x"))

	assert.Len(t, UnassignedStudents(st), 1)
	assert.Len(t, StudentsByGroup(st, "g1"), 4)
	assert.Len(t, GroupsByCourse(st, "c1"), 2)
	assert.Len(t, AttendanceByStudent(st, "st-a"), 2)
}

func TestSearchStudents(t *testing.T) {
	st := fixture()

	assert.Len(t, SearchStudents(st, ""), len(st.Students))

	got := SearchStudents(st, "sara")
	require.Len(t, got, 1)
	assert.Equal(t, "st-x", got[0].ID)

	got = SearchStudents(st, "1222")
	require.Len(t, got, 1, "digits match ignores formatting")

	assert.Empty(t, SearchStudents(st, "nobody"))
}

func TestDashboard(t *testing.T) {
	st := fixture()
	d := DashboardFor(st)

	assert.Equal(t, 6, d.TotalStudents)
	assert.Equal(t, 2, d.TotalCourses)
	assert.Equal(t, 2, d.TotalGroups)
	assert.Equal(t, 4, d.TotalSessions)
	assert.Equal(t, 1, d.UnassignedStudents)

	require.Len(t, d.Courses, 2)
	assert.Equal(t, "c1", d.Courses[0].Course.ID)
	assert.Equal(t, 5, d.Courses[0].StudentCount)

	require.Len(t, d.Capacity, 2)
	assert.Equal(t, "g1", d.Capacity[0].Group.ID)
	assert.InDelta(t, 100.0, d.Capacity[0].FillPercent, 0.001)
	assert.True(t, d.Capacity[0].IsFull)

	require.Len(t, d.RecentSessions, 4)
	assert.Equal(t, "s4", d.RecentSessions[0].Session.ID)
	assert.Equal(t, "B", d.RecentSessions[0].GroupName)
	assert.Equal(t, 1, d.RecentSessions[0].AttendanceCount)
}

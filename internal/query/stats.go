package query

import (
	"math"
	"sort"

	"github.com/zat/initiative/internal/models"
)

func GroupStudentCount(st models.AppState, groupID string) int {
	n := 0
	for _, s := range st.Students {
		if s.GroupID != nil && *s.GroupID == groupID {
			n++
		}
	}
	return n
}

// IsGroupFull is true iff the group has a capacity and has reached it.
// Unknown groups are never full.
func IsGroupFull(st models.AppState, groupID string) bool {
	g, ok := GroupByID(st, groupID)
	if !ok || g.MaxCapacity == nil || *g.MaxCapacity <= 0 {
		return false
	}
	return GroupStudentCount(st, groupID) >= *g.MaxCapacity
}

type CourseStats struct {
	GroupCount   int `json:"groupCount"`
	StudentCount int `json:"studentCount"`
	SessionCount int `json:"sessionCount"`
}

// CourseStatsFor counts a course's groups, its students, and the sessions
// of its groups.
func CourseStatsFor(st models.AppState, courseID string) CourseStats {
	groups := GroupsByCourse(st, courseID)
	inCourse := make(map[string]bool, len(groups))
	for _, g := range groups {
		inCourse[g.ID] = true
	}
	sessions := 0
	for _, s := range st.Sessions {
		if inCourse[s.GroupID] {
			sessions++
		}
	}
	return CourseStats{
		GroupCount:   len(groups),
		StudentCount: len(StudentsByCourse(st, courseID)),
		SessionCount: sessions,
	}
}

type AttendanceSummary struct {
	StudentID string `json:"studentId"`
	Attended  int    `json:"attended"`
	Total     int    `json:"total"`
	Rate      int    `json:"rate"` // whole percent
}

// StudentAttendanceSummary counts the student's attended sessions among their
// current group's sessions. Attendance at other groups' sessions (from
// before a move) is not counted.
func StudentAttendanceSummary(st models.AppState, studentID string) AttendanceSummary {
	out := AttendanceSummary{StudentID: studentID}
	s, ok := StudentByID(st, studentID)
	if !ok || s.GroupID == nil {
		return out
	}
	groupSessions := make(map[string]bool)
	for _, sess := range st.Sessions {
		if sess.GroupID == *s.GroupID {
			groupSessions[sess.ID] = true
		}
	}
	out.Total = len(groupSessions)
	if out.Total == 0 {
		return out
	}
	for _, a := range st.Attendance {
		if a.StudentID == studentID && groupSessions[a.SessionID] {
			out.Attended++
		}
	}
	out.Rate = int(math.Round(float64(out.Attended) / float64(out.Total) * 100))
	return out
}

// AttendanceRate is StudentAttendanceSummary(...).Rate; 0 when the group has no sessions.
func AttendanceRate(st models.AppState, studentID string) int {
	return StudentAttendanceSummary(st, studentID).Rate
}

type GroupStatus struct {
	Group        models.Group  `json:"group"`
	Course       models.Course `json:"course"`
	StudentCount int           `json:"studentCount"`
	SessionCount int           `json:"sessionCount"`
	IsFull       bool          `json:"isFull"`
	FillPercent  float64       `json:"fillPercent"`
}

func GroupStatusFor(st models.AppState, g models.Group) GroupStatus {
	c, _ := CourseByID(st, g.CourseID)
	gs := GroupStatus{
		Group:        g,
		Course:       c,
		StudentCount: GroupStudentCount(st, g.ID),
		IsFull:       IsGroupFull(st, g.ID),
	}
	for _, s := range st.Sessions {
		if s.GroupID == g.ID {
			gs.SessionCount++
		}
	}
	if g.MaxCapacity != nil && *g.MaxCapacity > 0 {
		gs.FillPercent = float64(gs.StudentCount) / float64(*g.MaxCapacity) * 100
	}
	return gs
}

type CourseWithStats struct {
	Course models.Course `json:"course"`
	CourseStats
}

type RecentSession struct {
	Session         models.Session `json:"session"`
	GroupName       string         `json:"groupName"`
	AttendanceCount int            `json:"attendanceCount"`
	StudentCount    int            `json:"studentCount"`
}

type Dashboard struct {
	TotalStudents      int               `json:"totalStudents"`
	TotalCourses       int               `json:"totalCourses"`
	TotalGroups        int               `json:"totalGroups"`
	TotalSessions      int               `json:"totalSessions"`
	UnassignedStudents int               `json:"unassignedStudents"`
	Courses            []CourseWithStats `json:"courses"`
	Capacity           []GroupStatus     `json:"capacity"`
	RecentSessions     []RecentSession   `json:"recentSessions"`
}

const dashboardTop = 5

// DashboardFor builds the admin overview: totals, courses by student count,
// the fullest capacity-limited groups and the newest sessions.
func DashboardFor(st models.AppState) Dashboard {
	d := Dashboard{
		TotalStudents:      len(st.Students),
		TotalCourses:       len(st.Courses),
		TotalGroups:        len(st.Groups),
		TotalSessions:      len(st.Sessions),
		UnassignedStudents: len(UnassignedStudents(st)),
		Courses:            make([]CourseWithStats, 0, len(st.Courses)),
		Capacity:           []GroupStatus{},
		RecentSessions:     []RecentSession{},
	}

	for _, c := range st.Courses {
		d.Courses = append(d.Courses, CourseWithStats{Course: c, CourseStats: CourseStatsFor(st, c.ID)})
	}
	sort.SliceStable(d.Courses, func(i, j int) bool {
		return d.Courses[i].StudentCount > d.Courses[j].StudentCount
	})

	for _, g := range st.Groups {
		if g.MaxCapacity == nil || *g.MaxCapacity <= 0 {
			continue
		}
		d.Capacity = append(d.Capacity, GroupStatusFor(st, g))
	}
	sort.SliceStable(d.Capacity, func(i, j int) bool {
		return d.Capacity[i].FillPercent > d.Capacity[j].FillPercent
	})
	if len(d.Capacity) > dashboardTop {
		d.Capacity = d.Capacity[:dashboardTop]
	}

	recent := append([]models.Session{}, st.Sessions...)
	// ISO timestamps compare correctly as strings
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt > recent[j].CreatedAt
	})
	if len(recent) > dashboardTop {
		recent = recent[:dashboardTop]
	}
	for _, s := range recent {
		g, _ := GroupByID(st, s.GroupID)
		d.RecentSessions = append(d.RecentSessions, RecentSession{
			Session:         s,
			GroupName:       g.Name,
			AttendanceCount: len(AttendanceBySession(st, s.ID)),
			StudentCount:    GroupStudentCount(st, s.GroupID),
		})
	}
	return d
}

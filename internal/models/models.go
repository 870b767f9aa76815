package models

import "time"

// ISOLayout matches JavaScript Date.prototype.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t the way stored records expect.
func Timestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NameEn      string `json:"nameEn"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	CreatedAt   string `json:"createdAt"`
}

// Group belongs to exactly one course. MaxCapacity nil means unlimited.
type Group struct {
	ID             string `json:"id"`
	CourseID       string `json:"courseId"`
	Name           string `json:"name"`
	InstructorName string `json:"instructorName"`
	MaxCapacity    *int   `json:"maxCapacity"`
	CreatedAt      string `json:"createdAt"`
}

// Student may be unassigned (CourseID and GroupID both nil).
type Student struct {
	ID                    string  `json:"id"`
	FullName              string  `json:"fullName"`
	PhoneNumber           string  `json:"phoneNumber"` // unique across students
	IsNew                 bool    `json:"isNew"`
	CertificateFeePaid    bool    `json:"certificateFeePaid"`
	FirstInstallmentPaid  bool    `json:"firstInstallmentPaid"`
	SecondInstallmentPaid bool    `json:"secondInstallmentPaid"`
	CourseID              *string `json:"courseId"`
	GroupID               *string `json:"groupId"`
	CreatedAt             string  `json:"createdAt"`
}

// Session is one meeting of a group. QRToken is the public check-in key.
type Session struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	QRToken   string `json:"qrToken"`
	CreatedAt string `json:"createdAt"`
}

// Attendance is unique per (StudentID, SessionID).
type Attendance struct {
	ID         string `json:"id"`
	StudentID  string `json:"studentId"`
	SessionID  string `json:"sessionId"`
	AttendedAt string `json:"attendedAt"`
}

// AppState is the whole application dataset. IsAuthenticated is persisted
// under its own key and never serialized with the collections.
type AppState struct {
	IsAuthenticated bool         `json:"-"`
	Courses         []Course     `json:"courses"`
	Groups          []Group      `json:"groups"`
	Students        []Student    `json:"students"`
	Sessions        []Session    `json:"sessions"`
	Attendance      []Attendance `json:"attendance"`
}

// Clone returns a copy whose slices and pointer fields do not alias st.
func (st AppState) Clone() AppState {
	out := AppState{
		IsAuthenticated: st.IsAuthenticated,
		Courses:         append([]Course(nil), st.Courses...),
		Groups:          make([]Group, len(st.Groups)),
		Students:        make([]Student, len(st.Students)),
		Sessions:        append([]Session(nil), st.Sessions...),
		Attendance:      append([]Attendance(nil), st.Attendance...),
	}
	for i, g := range st.Groups {
		g.MaxCapacity = CopyInt(g.MaxCapacity)
		out.Groups[i] = g
	}
	for i, s := range st.Students {
		s.CourseID = CopyString(s.CourseID)
		s.GroupID = CopyString(s.GroupID)
		out.Students[i] = s
	}
	return out
}

// Normalize replaces nil collections with empty ones so the blob always
// serializes arrays, never null.
func (st *AppState) Normalize() {
	if st.Courses == nil {
		st.Courses = []Course{}
	}
	if st.Groups == nil {
		st.Groups = []Group{}
	}
	if st.Students == nil {
		st.Students = []Student{}
	}
	if st.Sessions == nil {
		st.Sessions = []Session{}
	}
	if st.Attendance == nil {
		st.Attendance = []Attendance{}
	}
}

func StringPtr(s string) *string { return &s }

func IntPtr(n int) *int { return &n }

func CopyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func CopyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Deref returns "" for a nil pointer.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var dateLayouts = []string{"2006-01-02", time.RFC3339Nano, "2006-01-02T15:04"}

// ParseDate accepts the date forms sessions are stored with: a plain
// YYYY-MM-DD from a date picker or a full ISO timestamp.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

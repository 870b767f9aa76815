package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zat/initiative/internal/models"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, Table{
		Header: []string{"name", "note"},
		Rows: [][]string{
			{"Sara", `said "hi", left`},
			{"Omar", "plain"},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"), "starts with BOM")
	assert.Equal(t, "name,note\nSara,\"said \"\"hi\"\", left\"\nOmar,plain\n", strings.TrimPrefix(out, "\ufeff"))
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "students-2024-03-05.csv", Filename("students", now))
	assert.Equal(t, "a-b-c-2024-03-05.csv", Filename("a/b\\c", now))
	assert.Equal(t, "export-2024-03-05.csv", Filename("  ", now))
}

func fixture() models.AppState {
	st := models.AppState{
		Courses: []models.Course{{ID: "c1", Name: "كانفا"}},
		Groups:  []models.Group{{ID: "g1", CourseID: "c1", Name: "A"}},
		Sessions: []models.Session{
			{ID: "s2", GroupID: "g1", Date: "2024-03-08"},
			{ID: "s1", GroupID: "g1", Date: "2024-03-01"},
		},
		Students: []models.Student{
			{ID: "st1", FullName: "Sara", PhoneNumber: "0100000000", IsNew: true, CertificateFeePaid: true,
				CourseID: models.StringPtr("c1"), GroupID: models.StringPtr("g1")},
			{ID: "st2", FullName: "Omar", PhoneNumber: "0100000001"},
		},
		Attendance: []models.Attendance{{ID: "a1", StudentID: "st1", SessionID: "s1"}},
	}
	st.Normalize()
	return st
}

func TestStudentsTable(t *testing.T) {
	st := fixture()
	tbl := StudentsTable(st, st.Students)

	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Header, 8)
	assert.Equal(t, []string{"Sara", "0100000000", "جديد", "كانفا", "A", "مدفوع", "غير مدفوع", "غير مدفوع"}, tbl.Rows[0])
	assert.Equal(t, "-", tbl.Rows[1][3], "unassigned course")
	assert.Equal(t, "قديم", tbl.Rows[1][2])
}

func TestGroupAttendanceTable(t *testing.T) {
	tbl, name := GroupAttendanceTable(fixture(), "g1")

	assert.Equal(t, "كانفا-A", name)
	assert.Equal(t, []string{"جلسة 1", "جلسة 2"}, tbl.Header[6:])
	require.Len(t, tbl.Rows, 1)
	// s1 is the earlier session and the one attended
	assert.Equal(t, []string{"✓", "✗"}, tbl.Rows[0][6:])
	assert.Equal(t, []string{"✓", "✗", "✗"}, tbl.Rows[0][3:6])
}

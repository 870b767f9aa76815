// Package export renders spreadsheets of students and attendance as CSV
// that opens correctly in Excel (UTF-8 with a byte-order mark).
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
)

const bom = "\ufeff"

const (
	yes = "✓"
	no  = "✗"
)

type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes the BOM, the header and every row.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return errors.Wrap(err, "write bom")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "write rows")
	}
	return nil
}

// Filename is "<logical>-<YYYY-MM-DD>.csv". Path separators in logical are
// replaced so a course or group name cannot escape the download name.
func Filename(logical string, now time.Time) string {
	logical = strings.NewReplacer("/", "-", "\\", "-", "\"", "").Replace(strings.TrimSpace(logical))
	if logical == "" {
		logical = "export"
	}
	return fmt.Sprintf("%s-%s.csv", logical, now.Format("2006-01-02"))
}

func paid(b bool) string {
	if b {
		return "مدفوع"
	}
	return "غير مدفوع"
}

func kind(isNew bool) string {
	if isNew {
		return "جديد"
	}
	return "قديم"
}

func mark(b bool) string {
	if b {
		return yes
	}
	return no
}

// StudentsTable lists students with their course, group and fee status.
func StudentsTable(st models.AppState, students []models.Student) Table {
	t := Table{
		Header: []string{"الاسم", "رقم الهاتف", "نوع الطالب", "الكورس", "المجموعة", "رسوم الشهادة", "القسط الأول", "القسط الثاني"},
		Rows:   make([][]string, 0, len(students)),
	}
	for _, s := range students {
		course, group := "-", "-"
		if c, ok := query.CourseByID(st, models.Deref(s.CourseID)); ok {
			course = c.Name
		}
		if g, ok := query.GroupByID(st, models.Deref(s.GroupID)); ok {
			group = g.Name
		}
		t.Rows = append(t.Rows, []string{
			s.FullName,
			s.PhoneNumber,
			kind(s.IsNew),
			course,
			group,
			paid(s.CertificateFeePaid),
			paid(s.FirstInstallmentPaid),
			paid(s.SecondInstallmentPaid),
		})
	}
	return t
}

// GroupAttendanceTable has one row per student in the group and one ✓/✗
// column per session, oldest session first. The second value is the logical
// file name, "<course>-<group>".
func GroupAttendanceTable(st models.AppState, groupID string) (Table, string) {
	g, _ := query.GroupByID(st, groupID)
	c, _ := query.CourseByID(st, g.CourseID)
	sessions := query.SessionsByGroup(st, groupID)

	header := []string{"الاسم", "رقم الهاتف", "جديد/قديم", "رسوم الشهادة", "القسط الأول", "القسط الثاني"}
	for i := range sessions {
		header = append(header, fmt.Sprintf("جلسة %d", i+1))
	}
	t := Table{Header: header, Rows: [][]string{}}

	for _, s := range query.StudentsByGroup(st, groupID) {
		row := []string{
			s.FullName,
			s.PhoneNumber,
			kind(s.IsNew),
			mark(s.CertificateFeePaid),
			mark(s.FirstInstallmentPaid),
			mark(s.SecondInstallmentPaid),
		}
		for _, sess := range sessions {
			row = append(row, mark(query.HasAttended(st, s.ID, sess.ID)))
		}
		t.Rows = append(t.Rows, row)
	}

	courseName, groupName := c.Name, g.Name
	if courseName == "" {
		courseName = "course"
	}
	if groupName == "" {
		groupName = "group"
	}
	return t, courseName + "-" + groupName
}

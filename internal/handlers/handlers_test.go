package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zat/initiative/internal/auth"
	"github.com/zat/initiative/internal/checkin"
	"github.com/zat/initiative/internal/logging"
	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/notify"
	"github.com/zat/initiative/internal/query"
	"github.com/zat/initiative/internal/store"
)

type nopPersister struct{}

func (nopPersister) Save(models.AppState) error { return nil }

type memFlags struct{ on bool }

func (m *memFlags) LoadAuthFlag() bool        { return m.on }
func (m *memFlags) SaveAuthFlag(on bool) error { m.on = on; return nil }

func newEnv(t *testing.T) *Env {
	t.Helper()
	n := 0
	st := models.AppState{
		Courses:  []models.Course{{ID: "c1", Name: "Python"}},
		Groups:   []models.Group{{ID: "g1", CourseID: "c1", Name: "A", MaxCapacity: models.IntPtr(1)}},
		Sessions: []models.Session{{ID: "s1", GroupID: "g1", Title: "الجلسة 1", Date: "2024-03-01", QRToken: "tok"}},
		Students: []models.Student{{
			ID: "omar", FullName: "Omar", PhoneNumber: "01011112222",
			CourseID: models.StringPtr("c1"), GroupID: models.StringPtr("g1"),
		}},
	}
	st.Normalize()
	return &Env{
		Holder: store.NewHolder(st),
		Store: store.New(nopPersister{},
			store.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) })),
		Gate:     auth.NewGate(&memFlags{}, "a@b.c", "pw"),
		Sessions: auth.NewSessions("k", time.Hour, false),
		Log:      logging.Discard(),
		Now:      func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func attendRouter(e *Env) http.Handler {
	r := chi.NewRouter()
	r.Get("/attend/{token}", AttendShow(e))
	r.Post("/attend/{token}/{action}", AttendAction(e))
	return r
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestAttendWithPlainForms(t *testing.T) {
	e := newEnv(t)
	h := attendRouter(e)

	_, body := postForm(t, h, "/attend/tok/new", url.Values{"phone": {"01200000000"}, "answer": {"no"}})
	assert.Equal(t, string(checkin.StepContactAdmin), body["step"])
	assert.Equal(t, "info", body["flash"].(map[string]any)["kind"])

	_, body = postForm(t, h, "/attend/tok/back", url.Values{"phone": {"01200000000"}})
	assert.Equal(t, string(checkin.StepNewAsk), body["step"])

	_, body = postForm(t, h, "/attend/tok/reset", nil)
	assert.Equal(t, string(checkin.StepPhone), body["step"])
	assert.Empty(t, body["phone"])

	_, body = postForm(t, h, "/attend/tok/correct", url.Values{"phone": {"010-1111-2222"}, "name": {"Omar Ali"}})
	assert.Equal(t, string(checkin.StepSuccess), body["step"])
	assert.Equal(t, "Omar Ali", body["name"])
	assert.Len(t, e.Holder.Snapshot().Attendance, 1)
}

func TestAttendErrors(t *testing.T) {
	e := newEnv(t)
	h := attendRouter(e)

	rec, body := postForm(t, h, "/attend/tok/phone", url.Values{"phone": {"12"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["fields"], "phoneNumber")

	// confirm needs a known phone
	rec, _ = postForm(t, h, "/attend/tok/confirm", url.Values{"phone": {"01200000000"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = postForm(t, h, "/attend/tok/register", url.Values{"phone": {"01200000000"}, "name": {" "}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, body = postForm(t, h, "/attend/gone/phone", url.Values{"phone": {"01011112222"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", body["step"])
	assert.Empty(t, body["name"], "a dead token reveals nothing")

	req := httptest.NewRequest(http.MethodPost, "/attend/tok/dance", strings.NewReader("phone=01011112222"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Empty(t, e.Holder.Snapshot().Attendance)
}

func TestWriteErrorStatus(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		err  error
		code int
	}{
		{store.NewValidationError(errors.New("bad"), store.FieldError{Field: "name", Error: "name is required"}), http.StatusUnprocessableEntity},
		{errors.Wrap(store.ErrNotFound, "group"), http.StatusNotFound},
		{checkin.ErrInvalidToken, http.StatusNotFound},
		{errors.Wrap(checkin.ErrBadStep, "confirm"), http.StatusConflict},
		{errors.Wrap(errBadRequest, "eof"), http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		e.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), c.err)
		assert.Equal(t, c.code, rec.Code, c.err.Error())
	}
}

func TestMakeFlash(t *testing.T) {
	assert.Equal(t, &Flash{Kind: "success", Text: "تم إضافة الكورس"}, MakeFlash("course_added", ""))
	assert.Equal(t, "warning", MakeFlash("over_capacity", "").Kind)
	assert.Equal(t, "info", MakeFlash(" Already ", "").Kind)
	assert.Equal(t, &Flash{Kind: "error", Text: "boom"}, MakeFlash("nope", "boom"))
	assert.Nil(t, MakeFlash("nope", ""))
}

func TestIsYes(t *testing.T) {
	for _, s := range []string{"yes", "Y", " true ", "1", "نعم"} {
		assert.True(t, isYes(s), s)
	}
	for _, s := range []string{"", "no", "0", "لا"} {
		assert.False(t, isYes(s), s)
	}
}

func TestTelegramWebhook(t *testing.T) {
	var mu sync.Mutex
	var sent []string
	tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		sent = append(sent, string(b))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer tg.Close()

	e := newEnv(t)
	h := TelegramWebhook(e)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/tg/webhook", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "disabled without a dispatcher")

	e.Telegram = notify.NewDispatcher(notify.NewClient("T", tg.URL), 42, e.Holder.Snapshot)
	e.WebhookSecret = "s3"

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/tg/webhook?secret=bad", strings.NewReader("{}")))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	up := `{"update_id":1,"message":{"message_id":1,"chat":{"id":42},"text":"/stats"}}`
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/tg/webhook?secret=s3", strings.NewReader(up)))
	assert.Equal(t, http.StatusOK, rec.Code)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], `"chat_id":42`)
}

func TestCapacityWarningOnMove(t *testing.T) {
	e := newEnv(t)
	_, err := e.Holder.Apply(func(st models.AppState) (models.AppState, error) {
		return e.Store.AddStudent(st, models.StudentInput{FullName: "Mona", PhoneNumber: "01033334444"})
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/students/{id}/move", MoveStudent(e))
	req := httptest.NewRequest(http.MethodPost, "/students/id-1/move", strings.NewReader(`{"groupId":"g1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Data    studentRow `json:"data"`
		Warning *Flash     `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "c1", models.Deref(out.Data.CourseID))
	assert.Equal(t, "A", out.Data.GroupName)
	require.NotNil(t, out.Warning)
	assert.Equal(t, "warning", out.Warning.Kind)
}

func TestUnassignedFilterMatchesDashboard(t *testing.T) {
	e := newEnv(t)
	_, err := e.Holder.Apply(func(st models.AppState) (models.AppState, error) {
		st, err := e.Store.AddStudent(st, models.StudentInput{FullName: "Course only", PhoneNumber: "0105", CourseID: models.StringPtr("c1")})
		if err != nil {
			return st, err
		}
		return e.Store.AddStudent(st, models.StudentInput{FullName: "Nobody", PhoneNumber: "0106"})
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ListStudents(e)(rec, httptest.NewRequest(http.MethodGet, "/students?unassigned=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []studentRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))

	dash := query.DashboardFor(e.Holder.Snapshot())
	assert.Len(t, rows, dash.UnassignedStudents)
	assert.Len(t, rows, 2)
}

package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zat/initiative/internal/logging"
	"github.com/zat/initiative/internal/models"
)

// KV is the local key/value store the adapter persists into.
type KV interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// LoadFailure means the stored blob was missing or unreadable. It is logged
// and recovered from, never returned by Load.
type LoadFailure struct {
	Reason string
	Err    error
}

func (e *LoadFailure) Error() string {
	if e.Err == nil {
		return "load failure: " + e.Reason
	}
	return fmt.Sprintf("load failure: %s: %v", e.Reason, e.Err)
}

func (e *LoadFailure) Unwrap() error { return e.Err }

type Adapter struct {
	kv      KV
	dataKey string
	authKey string
	log     logging.Logger

	now   func() time.Time
	newID func() string
}

type Option func(*Adapter)

func WithClock(now func() time.Time) Option { return func(a *Adapter) { a.now = now } }

func WithIDs(newID func() string) Option { return func(a *Adapter) { a.newID = newID } }

func New(kv KV, dataKey, authKey string, log logging.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		kv:      kv,
		dataKey: dataKey,
		authKey: authKey,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Load returns the persisted state, migrated to CurrentVersion. Missing or
// malformed data falls back to a freshly seeded state, which is saved at once.
func (a *Adapter) Load() models.AppState {
	st, err := a.load()
	if err != nil {
		a.log.Warn("storage: falling back to default state", err)
		st = a.Seed()
		if err := a.Save(st); err != nil {
			a.log.Error("storage: saving default state", err)
		}
		if err := a.SaveAuthFlag(false); err != nil {
			a.log.Error("storage: resetting auth flag", err)
		}
		return st
	}
	st.IsAuthenticated = a.LoadAuthFlag()
	return st
}

func (a *Adapter) load() (models.AppState, error) {
	raw, ok, err := a.kv.Get(a.dataKey)
	if err != nil {
		return models.AppState{}, &LoadFailure{Reason: "read", Err: err}
	}
	if !ok || raw == "" {
		return models.AppState{}, &LoadFailure{Reason: "no stored data"}
	}

	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return models.AppState{}, &LoadFailure{Reason: "parse", Err: err}
	}
	if doc == nil {
		return models.AppState{}, &LoadFailure{Reason: "stored value is null"}
	}

	// a blob without a course catalog gets the default one
	if _, ok := doc["courses"].([]any); !ok {
		doc["courses"] = a.seedCoursesDoc()
	}

	from := migrate(doc, models.Timestamp(a.now()))

	buf, err := json.Marshal(doc)
	if err != nil {
		return models.AppState{}, &LoadFailure{Reason: "re-encode", Err: err}
	}
	var st models.AppState
	if err := json.Unmarshal(buf, &st); err != nil {
		return models.AppState{}, &LoadFailure{Reason: "decode", Err: err}
	}
	st.Normalize()

	if from < CurrentVersion {
		a.log.Info(fmt.Sprintf("storage: migrated data from schema v%d to v%d", from, CurrentVersion))
		if err := a.Save(st); err != nil {
			a.log.Error("storage: saving migrated state", err)
		}
	}
	return st, nil
}

type blob struct {
	SchemaVersion int                 `json:"schemaVersion"`
	Courses       []models.Course     `json:"courses"`
	Groups        []models.Group      `json:"groups"`
	Students      []models.Student    `json:"students"`
	Sessions      []models.Session    `json:"sessions"`
	Attendance    []models.Attendance `json:"attendance"`
}

// Save writes every collection under the data key. The auth flag is not part
// of the blob; see SaveAuthFlag.
func (a *Adapter) Save(st models.AppState) error {
	st.Normalize()
	buf, err := json.Marshal(blob{
		SchemaVersion: CurrentVersion,
		Courses:       st.Courses,
		Groups:        st.Groups,
		Students:      st.Students,
		Sessions:      st.Sessions,
		Attendance:    st.Attendance,
	})
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	return errors.Wrap(a.kv.Put(a.dataKey, string(buf)), "save state")
}

// LoadAuthFlag reports whether the stored flag is exactly "true".
func (a *Adapter) LoadAuthFlag() bool {
	v, ok, err := a.kv.Get(a.authKey)
	if err != nil {
		a.log.Warn("storage: reading auth flag", err)
		return false
	}
	return ok && v == "true"
}

func (a *Adapter) SaveAuthFlag(on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return errors.Wrap(a.kv.Put(a.authKey, v), "save auth flag")
}

// Seed builds the initial state: the default course catalog and nothing else.
func (a *Adapter) Seed() models.AppState {
	now := models.Timestamp(a.now())
	st := models.AppState{}
	st.Normalize()
	for _, c := range models.DefaultCourses {
		st.Courses = append(st.Courses, models.Course{
			ID:          a.newID(),
			Name:        c.Name,
			NameEn:      c.NameEn,
			Description: c.Description,
			Icon:        c.Icon,
			CreatedAt:   now,
		})
	}
	return st
}

func (a *Adapter) seedCoursesDoc() []any {
	seeded := a.Seed().Courses
	out := make([]any, 0, len(seeded))
	for _, c := range seeded {
		out = append(out, map[string]any{
			"id":          c.ID,
			"name":        c.Name,
			"nameEn":      c.NameEn,
			"description": c.Description,
			"icon":        c.Icon,
			"createdAt":   c.CreatedAt,
		})
	}
	return out
}

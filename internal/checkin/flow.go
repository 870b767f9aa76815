// Package checkin is the public, unauthenticated attendance flow. A visitor
// holding a session's token identifies themselves by phone and ends up with
// exactly one attendance row for that session.
//
// A Flow only carries the ids the token grants: the session, its group and
// that group's course. It never exposes other students or sessions.
package checkin

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
	"github.com/zat/initiative/internal/services"
	"github.com/zat/initiative/internal/store"
)

type Step string

const (
	StepPhone        Step = "phone"
	StepConfirm      Step = "confirm"
	StepNewAsk       Step = "new-student-ask"
	StepNewForm      Step = "new-student-form"
	StepSuccess      Step = "success"
	StepAlready      Step = "already"
	StepContactAdmin Step = "contact-admin"
	StepError        Step = "error"
)

var (
	// ErrBadStep means the action is not available from the flow's step.
	ErrBadStep = errors.New("checkin: action not allowed at this step")
	// ErrInvalidToken means the token no longer resolves to a session.
	ErrInvalidToken = errors.New("checkin: invalid session token")
)

// Mutator runs one atomic read-modify-write; store.Holder satisfies it.
type Mutator interface {
	Apply(fn func(models.AppState) (models.AppState, error)) (models.AppState, error)
}

// Recorder is the part of store.Store the flow writes through. Every
// check-in goes through one Batch so student and attendance changes are
// saved together.
type Recorder interface {
	Batch(st models.AppState, fn func(tx *store.Store, st models.AppState) (models.AppState, error)) (models.AppState, error)
}

type Flow struct {
	Step  Step
	Token string

	SessionID string
	GroupID   string
	CourseID  string

	Phone     string // normalized
	StudentID string
	Name      string // prefilled on confirm, final on success
}

// Open resolves token against st. An empty or unknown token gives a flow
// stuck at StepError.
func Open(st models.AppState, token string) Flow {
	sess, ok := query.SessionByToken(st, token)
	if !ok {
		return Flow{Step: StepError, Token: token}
	}
	f := Flow{Step: StepPhone, Token: token, SessionID: sess.ID, GroupID: sess.GroupID}
	if g, ok := query.GroupByID(st, sess.GroupID); ok {
		f.CourseID = g.CourseID
	}
	return f
}

// SubmitPhone looks the visitor up by phone.
func (f Flow) SubmitPhone(st models.AppState, phone string) (Flow, error) {
	if f.Step != StepPhone {
		return f, ErrBadStep
	}
	if _, ok := f.session(st); !ok {
		return Flow{Step: StepError, Token: f.Token}, ErrInvalidToken
	}
	norm := services.NormPhone(phone)
	if !services.ValidPhone(norm) {
		return f, store.NewValidationError(errors.New("invalid phone number"),
			store.FieldError{Field: "phoneNumber", Error: "phone number must have at least 10 digits"})
	}
	f.Phone = norm

	stu, ok := query.StudentByPhone(st, norm)
	if !ok {
		f.Step = StepNewAsk
		return f, nil
	}
	f.StudentID = stu.ID
	f.Name = stu.FullName
	if query.HasAttended(st, stu.ID, f.SessionID) {
		f.Step = StepAlready
	} else {
		f.Step = StepConfirm
	}
	return f, nil
}

// Confirm records attendance for the student found by phone.
func (f Flow) Confirm(m Mutator, r Recorder) (Flow, error) {
	if f.Step != StepConfirm {
		return f, ErrBadStep
	}
	return f.attend(m, r, "")
}

// CorrectName is the "that's not my name" branch of confirm: the stored name
// is replaced when it differs, then attendance is recorded.
func (f Flow) CorrectName(m Mutator, r Recorder, name string) (Flow, error) {
	if f.Step != StepConfirm {
		return f, ErrBadStep
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return f, nameRequired()
	}
	return f.attend(m, r, name)
}

// AnswerNew answers "are you a new student?".
func (f Flow) AnswerNew(yes bool) (Flow, error) {
	if f.Step != StepNewAsk {
		return f, ErrBadStep
	}
	if yes {
		f.Step = StepNewForm
	} else {
		f.Step = StepContactAdmin
	}
	return f, nil
}

// Back returns from the registration form to the question before it.
func (f Flow) Back() (Flow, error) {
	if f.Step != StepNewForm {
		return f, ErrBadStep
	}
	f.Step = StepNewAsk
	return f, nil
}

// SubmitName registers a new student in the session's group and records
// their attendance in the same write.
func (f Flow) SubmitName(m Mutator, r Recorder, name string) (Flow, error) {
	if f.Step != StepNewForm {
		return f, ErrBadStep
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return f, nameRequired()
	}

	var studentID string
	_, err := m.Apply(func(st models.AppState) (models.AppState, error) {
		if _, ok := f.session(st); !ok {
			return st, ErrInvalidToken
		}
		in := models.StudentInput{
			FullName:    name,
			PhoneNumber: f.Phone,
			IsNew:       true,
		}
		if f.GroupID != "" {
			in.GroupID = models.StringPtr(f.GroupID)
		}
		if f.CourseID != "" {
			in.CourseID = models.StringPtr(f.CourseID)
		}
		return r.Batch(st, func(tx *store.Store, st models.AppState) (models.AppState, error) {
			next, err := tx.AddStudent(st, in)
			if err != nil {
				return st, err
			}
			stu, ok := query.StudentByPhone(next, f.Phone)
			if !ok {
				return st, errors.New("checkin: new student not found after insert")
			}
			studentID = stu.ID
			return tx.MarkAttendance(next, stu.ID, f.SessionID)
		})
	})
	if err != nil {
		return f.fail(err)
	}
	f.StudentID = studentID
	f.Name = name
	f.Step = StepSuccess
	return f, nil
}

// Reset starts over at the phone step. The error step has no way back.
func (f Flow) Reset() (Flow, error) {
	if f.Step == StepError {
		return f, ErrBadStep
	}
	return Flow{
		Step:      StepPhone,
		Token:     f.Token,
		SessionID: f.SessionID,
		GroupID:   f.GroupID,
		CourseID:  f.CourseID,
	}, nil
}

func (f Flow) attend(m Mutator, r Recorder, newName string) (Flow, error) {
	already := false
	name := f.Name
	_, err := m.Apply(func(st models.AppState) (models.AppState, error) {
		if _, ok := f.session(st); !ok {
			return st, ErrInvalidToken
		}
		stu, ok := query.StudentByID(st, f.StudentID)
		if !ok {
			return st, errors.Wrapf(store.ErrNotFound, "student %q", f.StudentID)
		}
		if query.HasAttended(st, stu.ID, f.SessionID) {
			already = true
			return st, nil
		}
		rename := newName != "" && newName != stu.FullName
		next, err := r.Batch(st, func(tx *store.Store, st models.AppState) (models.AppState, error) {
			next := st
			if rename {
				var err error
				next, err = tx.UpdateStudent(next, stu.ID, models.StudentPatch{FullName: models.StringPtr(newName)})
				if err != nil {
					return st, err
				}
			}
			return tx.MarkAttendance(next, stu.ID, f.SessionID)
		})
		if err != nil {
			return st, err
		}
		if rename {
			name = newName
		}
		return next, nil
	})
	if err != nil {
		return f.fail(err)
	}
	f.Name = name
	if already {
		f.Step = StepAlready
	} else {
		f.Step = StepSuccess
	}
	return f, nil
}

// fail moves to StepError when the token died underneath the flow and keeps
// the current step otherwise.
func (f Flow) fail(err error) (Flow, error) {
	if errors.Is(err, ErrInvalidToken) {
		return Flow{Step: StepError, Token: f.Token}, err
	}
	return f, err
}

// session re-resolves the token and checks it still names the same session.
func (f Flow) session(st models.AppState) (models.Session, bool) {
	sess, ok := query.SessionByToken(st, f.Token)
	if !ok || sess.ID != f.SessionID {
		return models.Session{}, false
	}
	return sess, true
}

func nameRequired() error {
	return store.NewValidationError(errors.New("name is required"),
		store.FieldError{Field: "fullName", Error: "fullName is required"})
}

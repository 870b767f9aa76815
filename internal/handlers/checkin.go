package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zat/initiative/internal/checkin"
	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/query"
)

// attendVM is everything a visitor may see. It names the session, group and
// course of the token and the visitor's own name, nothing else.
type attendVM struct {
	Step    checkin.Step `json:"step"`
	Session *struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"session,omitempty"`
	Group  string `json:"group,omitempty"`
	Course string `json:"course,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Name   string `json:"name,omitempty"`
	Flash  *Flash `json:"flash,omitempty"`
}

func makeAttendVM(st models.AppState, f checkin.Flow) attendVM {
	vm := attendVM{Step: f.Step, Phone: f.Phone, Name: f.Name}
	if f.Step == checkin.StepError {
		vm.Phone, vm.Name = "", ""
		vm.Flash = MakeFlash("invalid_token", "")
		return vm
	}
	if sess, ok := query.SessionByID(st, f.SessionID); ok {
		vm.Session = &struct {
			Title string `json:"title"`
			Date  string `json:"date"`
		}{sess.Title, sess.Date}
	}
	if g, ok := query.GroupByID(st, f.GroupID); ok {
		vm.Group = g.Name
	}
	if c, ok := query.CourseByID(st, f.CourseID); ok {
		vm.Course = c.Name
	}
	switch f.Step {
	case checkin.StepAlready:
		vm.Flash = MakeFlash("already", "")
	case checkin.StepContactAdmin:
		vm.Flash = MakeFlash("contact_admin", "")
	}
	return vm
}

func (e *Env) writeFlow(w http.ResponseWriter, f checkin.Flow, flash string) {
	vm := makeAttendVM(e.Holder.Snapshot(), f)
	if flash != "" {
		vm.Flash = MakeFlash(flash, "")
	}
	code := http.StatusOK
	if f.Step == checkin.StepError {
		code = http.StatusNotFound
	}
	writeJSON(w, code, vm)
}

// GET /attend/{token}
func AttendShow(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := checkin.Open(e.Holder.Snapshot(), chi.URLParam(r, "token"))
		e.writeFlow(w, f, "")
	}
}

// POST /attend/{token}/{action}
//
// The flow is not kept on the server. Each step after "phone" posts the
// phone again and the handler replays the lookup before acting, so a stale
// or tampered form can only reach steps the phone number allows.
func AttendAction(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		action := chi.URLParam(r, "action")

		in, err := formValues(w, r)
		if err != nil {
			e.writeError(w, r, err)
			return
		}

		st := e.Holder.Snapshot()
		f := checkin.Open(st, token)
		if f.Step == checkin.StepError {
			e.writeFlow(w, f, "")
			return
		}
		if action == "reset" {
			f, _ = f.Reset()
			e.writeFlow(w, f, "")
			return
		}

		f, err = f.SubmitPhone(st, in["phone"])
		if err != nil {
			e.writeError(w, r, err)
			return
		}

		if f.Step == checkin.StepAlready {
			e.writeFlow(w, f, "")
			return
		}

		flash := ""
		switch action {
		case "phone":
			// lookup only
		case "confirm":
			f, err = f.Confirm(e.Holder, e.Store)
			flash = "attended"
		case "correct":
			f, err = f.CorrectName(e.Holder, e.Store, in["name"])
			flash = "attended"
		case "new":
			f, err = f.AnswerNew(isYes(in["answer"]))
		case "back":
			if f, err = f.AnswerNew(true); err == nil {
				f, err = f.Back()
			}
		case "register":
			if f, err = f.AnswerNew(true); err == nil {
				f, err = f.SubmitName(e.Holder, e.Store, in["name"])
				flash = "registered"
			}
		default:
			http.NotFound(w, r)
			return
		}
		if err != nil {
			if f.Step == checkin.StepError {
				e.writeFlow(w, f, "")
				return
			}
			e.writeError(w, r, err)
			return
		}
		if f.Step != checkin.StepSuccess {
			flash = ""
		}
		e.writeFlow(w, f, flash)
	}
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "نعم":
		return true
	}
	return false
}

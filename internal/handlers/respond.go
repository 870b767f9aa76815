package handlers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/pkg/errors"

	"github.com/zat/initiative/internal/checkin"
	"github.com/zat/initiative/internal/store"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Flash  *Flash            `json:"flash,omitempty"`
}

// writeError maps domain errors onto status codes: validation 422, unknown
// ids and dead tokens 404, flow steps out of order 409, anything else 500.
func (e *Env) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := store.AsValidation(err); ok {
		body := errorBody{Error: verr.Error(), Flash: MakeFlash("", verr.Error())}
		if len(verr.Fields) > 0 {
			body.Fields = make(map[string]string, len(verr.Fields))
			for _, f := range verr.Fields {
				body.Fields[f.Field] = f.Error
				if f.Error == store.PhoneTakenText {
					body.Flash = MakeFlash("phone_taken", "")
				}
			}
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Flash: MakeFlash("not_found", "")})
	case errors.Is(err, checkin.ErrInvalidToken):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Flash: MakeFlash("invalid_token", "")})
	case errors.Is(err, checkin.ErrBadStep):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Flash: MakeFlash("bad_step", "")})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		e.Log.Error("http: "+r.Method+" "+r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

var errBadRequest = errors.New("bad request")

// decodeJSON reads one JSON object from the body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	return nil
}

// formValues accepts either a JSON object of strings or an urlencoded form,
// so the check-in page works with and without JavaScript.
func formValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	out := map[string]string{}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if r.ContentLength == 0 {
			return out, nil
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
		if err := dec.Decode(&out); err != nil && err != io.EOF {
			return nil, errors.Wrap(errBadRequest, err.Error())
		}
		return out, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}

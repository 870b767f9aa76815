package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/zat/initiative/internal/query"
)

// CheckinURL is the public link a session's QR code encodes.
func (e *Env) CheckinURL(r *http.Request, token string) string {
	origin := e.PublicOrigin
	if origin == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		origin = scheme + "://" + r.Host
	}
	return origin + "/attend/" + token
}

// GET /qr/{token}.png
func QR(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if _, ok := query.SessionByToken(e.Holder.Snapshot(), token); !ok {
			http.NotFound(w, r)
			return
		}

		// Encode a URL so scanning opens check-in directly
		png, err := qrcode.Encode(e.CheckinURL(r, token), qrcode.Medium, 256)
		if err != nil {
			e.Log.Error("qr: encode", err)
			http.Error(w, "failed to generate qr", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

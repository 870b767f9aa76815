package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/zat/initiative/internal/notify"
)

// TelegramWebhook serves POST /tg/webhook?secret=...
func TelegramWebhook(e *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if e.Telegram == nil {
			http.NotFound(w, r)
			return
		}
		got := r.URL.Query().Get("secret")
		if e.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(e.WebhookSecret)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var up notify.Update
		if err := decodeJSON(r, &up); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		// Telegram retries on non-2xx, so a failed reply is only logged
		if err := e.Telegram.Handle(r.Context(), &up); err != nil {
			e.Log.Error("tg: handle update", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

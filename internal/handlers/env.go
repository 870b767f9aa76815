package handlers

import (
	"time"

	"github.com/zat/initiative/internal/auth"
	"github.com/zat/initiative/internal/logging"
	"github.com/zat/initiative/internal/models"
	"github.com/zat/initiative/internal/notify"
	"github.com/zat/initiative/internal/store"
)

// Env is what every handler closes over. One is built in main.
type Env struct {
	Holder   *store.Holder
	Store    *store.Store
	Gate     *auth.Gate
	Sessions *auth.Sessions
	Log      logging.Logger

	AdminEmail   string
	PublicOrigin string // "" means derive from the request host

	// optional; nil disables POST /tg/webhook
	Telegram      *notify.Dispatcher
	WebhookSecret string

	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) apply(fn func(models.AppState) (models.AppState, error)) (models.AppState, error) {
	return e.Holder.Apply(fn)
}

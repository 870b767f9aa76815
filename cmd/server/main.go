package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zat/initiative/internal/auth"
	"github.com/zat/initiative/internal/config"
	"github.com/zat/initiative/internal/db"
	"github.com/zat/initiative/internal/events"
	"github.com/zat/initiative/internal/handlers"
	"github.com/zat/initiative/internal/logging"
	"github.com/zat/initiative/internal/notify"
	"github.com/zat/initiative/internal/storage"
	"github.com/zat/initiative/internal/store"
	"github.com/zat/initiative/internal/web"
)

func main() {
	cfg := config.Load()

	std := log.New(os.Stderr, "", log.LstdFlags)
	var logger logging.Logger = logging.New(std)
	if cfg.RollbarToken != "" {
		rl := logging.NewRollbarLogger(std, cfg.RollbarToken, cfg.Env)
		defer rl.Close()
		logger = rl
	}

	// Init DB (creates the sqlite file in the working dir)
	if err := db.Init(cfg.DBPath); err != nil {
		log.Fatalf("db init: %v", err)
	}
	adapter := storage.New(db.NewKV(db.Conn()), cfg.DataKey, cfg.AuthKey, logger)
	initial := adapter.Load()

	bus := events.NewBus()
	st := store.New(adapter, store.WithBus(bus), store.WithLogger(logger))
	holder := store.NewHolder(initial)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &handlers.Env{
		Holder:        holder,
		Store:         st,
		Gate:          auth.NewGate(adapter, cfg.AdminEmail, cfg.AdminPassword),
		Sessions:      auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.Env == "PROD"),
		Log:           logger,
		AdminEmail:    cfg.AdminEmail,
		PublicOrigin:  cfg.PublicOrigin,
		WebhookSecret: cfg.TelegramWebhookSecret,
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg := notify.NewClient(cfg.TelegramToken, notify.DefaultAPIBase)
		n := notify.NewNotifier(tg, cfg.TelegramChatID, logger)
		defer n.Attach(bus)()
		go n.Run(ctx)
		env.Telegram = notify.NewDispatcher(tg, cfg.TelegramChatID, holder.Snapshot)
		logger.Info("telegram notifications enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.Router(env),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.Info("ZAT Initiative listening on " + cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("http: serve", err)
	}
}

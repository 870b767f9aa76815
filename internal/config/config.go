package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env           string
	Addr          string
	DBPath        string
	DataKey       string
	AuthKey       string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	SessionTTL    time.Duration
	PublicOrigin  string

	TelegramToken         string
	TelegramChatID        int64
	TelegramWebhookSecret string
	RollbarToken          string
}

// Load reads defaults, an optional config/.env.<env> file, then environment
// variables prefixed with the env name (DEV_ADDR, PROD_DBPATH, ...).
func Load() *Config {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("addr", ":8080")
	v.SetDefault("dbPath", "initiative.db")
	v.SetDefault("dataKey", "zat_initiative_data_v2")
	v.SetDefault("authKey", "zat_initiative_auth")
	v.SetDefault("adminEmail", "admin@zat.org")
	v.SetDefault("adminPassword", "zat2024") // change in production
	v.SetDefault("sessionSecret", "zat-initiative-dev-secret-change-me")
	v.SetDefault("sessionTTL", 24*time.Hour)
	v.SetDefault("publicOrigin", "http://localhost:8080")
	v.SetDefault("telegramToken", "")
	v.SetDefault("telegramChatId", int64(0))
	v.SetDefault("telegramWebhookSecret", "")
	v.SetDefault("rollbarToken", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (default), TEST, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                   env,
		Addr:                  v.GetString("addr"),
		DBPath:                v.GetString("dbPath"),
		DataKey:               v.GetString("dataKey"),
		AuthKey:               v.GetString("authKey"),
		AdminEmail:            v.GetString("adminEmail"),
		AdminPassword:         v.GetString("adminPassword"),
		SessionSecret:         v.GetString("sessionSecret"),
		SessionTTL:            v.GetDuration("sessionTTL"),
		PublicOrigin:          strings.TrimRight(v.GetString("publicOrigin"), "/"),
		TelegramToken:         v.GetString("telegramToken"),
		TelegramChatID:        v.GetInt64("telegramChatId"),
		TelegramWebhookSecret: v.GetString("telegramWebhookSecret"),
		RollbarToken:          v.GetString("rollbarToken"),
	}
}

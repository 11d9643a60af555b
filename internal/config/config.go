package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the client reads from the environment.
type Config struct {
	ListenAddr    string
	RemoteURL     string
	RollDelay     time.Duration // dice animation before the move call
	AutoplayDelay time.Duration // computer player thinking delay
	RemoteTimeout time.Duration
}

// Load reads .env (if present) then the environment. Missing values fall
// back to defaults that suit local play against a dev rules service.
func Load() Config {
	_ = godotenv.Load() // absent .env is fine

	return Config{
		ListenAddr:    getString("MONOPOLY_LISTEN_ADDR", ":8080"),
		RemoteURL:     getString("MONOPOLY_REMOTE_URL", "http://127.0.0.1:5000"),
		RollDelay:     getMillis("MONOPOLY_ROLL_DELAY_MS", 1000),
		AutoplayDelay: getMillis("MONOPOLY_AUTOPLAY_DELAY_MS", 1200),
		RemoteTimeout: getMillis("MONOPOLY_REMOTE_TIMEOUT_MS", 10000),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getMillis(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return time.Duration(def) * time.Millisecond
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "MinigameParty"
	defaultAppEnv         = "development"
	defaultPort           = "3000"
	defaultLogLevel       = "info"
	defaultDatabasePath   = "minigame.db"
	defaultShutdownDelay  = 10 * time.Second
	defaultGuestRetention = 7 * 24 * time.Hour
	defaultSweepInterval  = 24 * time.Hour
	defaultSessionTTL     = 7 * 24 * time.Hour
	defaultGuestTTL       = 24 * time.Hour
	defaultLeaderboardTTL = 30 * time.Second
	defaultLoginRateLimit = 10
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName             string
	AppEnv              string
	Port                string
	LogLevel            string
	DatabasePath        string
	RedisURL            string
	JWTSecret           string
	StaticDir           string
	ShutdownPeriod      time.Duration
	GuestRetention      time.Duration
	SweepInterval       time.Duration
	SessionTTL          time.Duration
	GuestSessionTTL     time.Duration
	LeaderboardCacheTTL time.Duration
	LoginRateLimit      int
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:             getEnv("APP_NAME", defaultAppName),
		AppEnv:              getEnv("APP_ENV", defaultAppEnv),
		Port:                getEnv("PORT", defaultPort),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabasePath:        getEnv("DATABASE_PATH", defaultDatabasePath),
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StaticDir:           os.Getenv("STATIC_DIR"),
		ShutdownPeriod:      defaultShutdownDelay,
		GuestRetention:      defaultGuestRetention,
		SweepInterval:       defaultSweepInterval,
		SessionTTL:          defaultSessionTTL,
		GuestSessionTTL:     defaultGuestTTL,
		LeaderboardCacheTTL: defaultLeaderboardTTL,
		LoginRateLimit:      defaultLoginRateLimit,
	}

	durations := []struct {
		envVar string
		target *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
		{"GUEST_RETENTION", &cfg.GuestRetention},
		{"SWEEP_INTERVAL", &cfg.SweepInterval},
		{"SESSION_TTL", &cfg.SessionTTL},
		{"GUEST_SESSION_TTL", &cfg.GuestSessionTTL},
		{"LEADERBOARD_CACHE_TTL", &cfg.LeaderboardCacheTTL},
	}
	for _, d := range durations {
		if v := os.Getenv(d.envVar); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.envVar, err)
			}
			*d.target = parsed
		}
	}

	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
		}
		cfg.LoginRateLimit = n
	}

	if cfg.JWTSecret == "" {
		if !isDev(cfg.AppEnv) {
			return Config{}, fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
		}
		cfg.JWTSecret = "dev-secret-do-not-use"
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return isDev(c.AppEnv)
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package routes

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/minigame-party/minigame_party/internal/clock"
	"github.com/minigame-party/minigame_party/internal/config"
	"github.com/minigame-party/minigame_party/internal/guest"
	"github.com/minigame-party/minigame_party/internal/middleware"
	"github.com/minigame-party/minigame_party/internal/score"
	"github.com/minigame-party/minigame_party/internal/session"
	"github.com/minigame-party/minigame_party/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *sql.DB
	Cache  *redis.Client
	Logger *slog.Logger
	Clock  clock.Clock
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.DB == nil && !d.Cfg.IsDev() {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	if d.Clock == nil {
		d.Clock = clock.New()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories: SQLite in normal operation, in-memory only for DB-less
	// development runs.
	var userRepo user.Repository
	var scoreRepo score.Repository
	if d.DB != nil {
		userRepo = user.NewSQLiteRepository(d.DB)
		scoreRepo = score.NewSQLiteRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
		scoreRepo = score.NewMemoryRepository(userRepo)
	}

	// Services and handlers
	sessions := session.NewManager(d.Cfg.JWTSecret, d.Cfg.SessionTTL, d.Cfg.GuestSessionTTL, d.Clock)
	userSvc := user.NewService(userRepo, d.Clock)
	guestSvc := guest.NewService(userRepo, d.Cfg.GuestRetention, d.Clock, d.Logger)

	var lbCache *score.Cache
	if d.Cache != nil {
		lbCache = score.NewCache(d.Cache, d.Cfg.LeaderboardCacheTTL, d.Logger)
	}
	scoreSvc := score.NewService(scoreRepo, userRepo, lbCache, d.Clock)

	userHandler := user.NewHandler(userSvc, sessions, d.Logger)
	guestHandler := guest.NewHandler(guestSvc, sessions, d.Logger)
	scoreHandler := score.NewHandler(scoreSvc, d.Logger)

	// Public routes
	api := app.Group("/api")
	rateLimiter := middleware.AuthRateLimit(d.Cache, d.Cfg.LoginRateLimit)
	RegisterAuthRoutes(api, userHandler, guestHandler, rateLimiter)
	api.Get("/leaderboard/:game/:window", scoreHandler.Leaderboard)

	// Protected routes
	protected := api.Group("", middleware.SessionAuth(sessions))
	RegisterUserRoutes(protected, userHandler)
	protected.Post("/scores", scoreHandler.Submit)
	protected.Post("/guest/upgrade", guestHandler.Upgrade)

	// Static frontend, when configured.
	if d.Cfg.StaticDir != "" {
		app.Static("/", d.Cfg.StaticDir)
	}

	return nil
}

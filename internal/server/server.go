package server

import (
	"context"
	"log"
	"time"

	"backend-rucktracker/internal/achievement"
	"backend-rucktracker/internal/auth"
	"backend-rucktracker/internal/config"
	"backend-rucktracker/internal/facts"
	"backend-rucktracker/internal/profile"
	"backend-rucktracker/internal/session"
	"backend-rucktracker/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const hookTimeout = 30 * time.Second

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Sessions *session.Service
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	profiles := profile.NewService(s.DB)
	factsSvc := facts.NewService(s.DB, s.Redis, s.Cfg.FactsCacheTTL)
	catalog := achievement.NewCatalog(s.DB, s.Redis, s.Cfg.CatalogCacheTTL)
	achievementSvc := achievement.NewService(s.DB, catalog, profiles, s.Stream)

	s.Sessions = session.NewService(s.DB, profiles, s.Stream)
	s.Sessions.OnComplete(func(userID, sessionID string) {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()

		factsSvc.Invalidate(ctx, userID)
		if _, err := factsSvc.Get(ctx, userID, true); err != nil {
			log.Printf("facts rebuild for %s failed: %v", userID, err)
		}
		if _, err := achievementSvc.EvaluateForUser(ctx, userID); err != nil {
			log.Printf("achievement evaluation for %s failed: %v", userID, err)
		}
	})

	s.Sessions.OnDelete(func(userID, sessionID string) {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		factsSvc.Invalidate(ctx, userID)
	})

	session.RegisterRoutes(s.App.Group("/sessions"), s.Sessions, jwtMiddleware)
	facts.RegisterRoutes(s.App, factsSvc, jwtMiddleware)
	achievement.RegisterRoutes(s.App, achievementSvc, catalog, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/andrelucena/celebra-backend/api/controllers"
	"github.com/andrelucena/celebra-backend/api/routes"
	"github.com/andrelucena/celebra-backend/internal/auth"
	"github.com/andrelucena/celebra-backend/internal/events"
	"github.com/andrelucena/celebra-backend/internal/gifts"
	"github.com/andrelucena/celebra-backend/internal/intents"
	"github.com/andrelucena/celebra-backend/internal/memberships"
	"github.com/andrelucena/celebra-backend/internal/users"
	"github.com/andrelucena/celebra-backend/pkg/auth/session"
	"github.com/andrelucena/celebra-backend/pkg/config"
	"github.com/andrelucena/celebra-backend/pkg/db"
	"github.com/andrelucena/celebra-backend/pkg/logger"
	"github.com/andrelucena/celebra-backend/pkg/migrate"
	"github.com/andrelucena/celebra-backend/pkg/redis"
	"github.com/andrelucena/celebra-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	blobClient, err := storage.NewClient(cfg.Blob, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create blob client", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	membersRepo := memberships.NewRepository(dbClient.DB())
	eventsRepo := events.NewRepository(dbClient.DB())
	giftsRepo := gifts.NewRepository(dbClient.DB())

	membershipsService, err := memberships.NewService(membersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create memberships service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	eventsService, err := events.NewService(dbClient, eventsRepo, membersRepo, giftsRepo, blobClient, blobClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create events service", err)
		os.Exit(1)
	}

	giftsService, err := gifts.NewService(giftsRepo, membershipsService, usersRepo, blobClient, blobClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gifts service", err)
		os.Exit(1)
	}

	intentStore, err := intents.NewStore(redisClient, cfg.Intents)
	if err != nil {
		logg.Error(context.Background(), "failed to create intent store", err)
		os.Exit(1)
	}

	intentsService, err := intents.NewService(intentStore, eventsService, giftsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create intents service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Sessions: sessionManager,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
				"blobs":    blobClient,
			},
			Auth:        authService,
			Events:      eventsService,
			Gifts:       giftsService,
			Memberships: membershipsService,
			Intents:     intentsService,
			Blobs:       blobClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

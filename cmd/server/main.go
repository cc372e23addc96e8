package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/atempo/atempo-server/internal/config"
	"github.com/atempo/atempo-server/internal/database"
	"github.com/atempo/atempo-server/internal/handler"
	"github.com/atempo/atempo-server/internal/mailer"
	appmw "github.com/atempo/atempo-server/internal/middleware"
	"github.com/atempo/atempo-server/internal/queue"
	"github.com/atempo/atempo-server/internal/repository"
	"github.com/atempo/atempo-server/internal/router"
	queue_publisher "github.com/atempo/atempo-server/internal/service"
	"github.com/atempo/atempo-server/pkg/validator"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	reservations := repository.NewReservationRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	posts := repository.NewPostRepo(db)
	settings := repository.NewSettingsRepo(db)

	consumer := &queue.Consumer{
		Store:   reservations,
		Mailer:  mailer.NewFromEnv(),
		BaseURL: cfg.PublicBaseURL,
	}
	go consumer.Start()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	rateLimit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewReservationHandler(cfg, reservations, settings),
		handler.NewDepositHandler(reservations, queue_publisher.PublishTicketIssued),
		handler.NewVerifyHandler(reservations),
		handler.NewSettingsHandler(settings),
		handler.NewQRHandler(reservations, cfg.PublicBaseURL),
		handler.NewPerformerListHandler(users),
		rateLimit, cache)
	router.RegisterCheckin(e, handler.NewCheckinHandler(reservations), cfg.JWTSecret, cfg.IsAdminEmail)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), handler.NewAudienceHandler(), cfg.JWTSecret, rateLimit)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, reservations, users, settings, queue_publisher.PublishTicketIssued), cfg.JWTSecret, cfg.IsAdminEmail)
	router.RegisterBoard(e, handler.NewBoardHandler(cfg, posts), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

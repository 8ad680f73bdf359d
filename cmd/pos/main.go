package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/httpserver"
	"github.com/Skotchmaster/restaurant_pos/internal/paygate"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/pkg/config"
	pkgdb "github.com/Skotchmaster/restaurant_pos/pkg/db"
	"github.com/Skotchmaster/restaurant_pos/pkg/events"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
	loggingmw "github.com/Skotchmaster/restaurant_pos/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.MustValid(cfg)

	if err := run(cfg); err != nil {
		log.Fatalf("%s: %v", cfg.ServiceName, err)
	}
}

func run(cfg config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("shift timezone: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	publisher, err := events.Open(cfg.Events.Broker, cfg.Events.KafkaBrokers, cfg.Events.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("events close: %v", err)
		}
	}()

	r := &repo.GormRepo{DB: db}
	shifts := &service.ShiftService{
		Repo:      r,
		Publisher: publisher,
		Limit:     cfg.ShiftLimit(),
		Location:  loc,
	}
	authSvc := &service.AuthService{
		Repo:      r,
		Shifts:    shifts,
		JWTSecret: cfg.JWTAccessSecret,
		TokenTTL:  cfg.AccessTokenTTL,
	}
	if err := authSvc.BootstrapAdmin(logging.IntoContext(ctx, logger), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	e := newEcho(logger)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		MenuHandler:  &httpserver.MenuHTTP{Svc: &service.MenuService{Repo: r, Index: menuIndex(cfg.Search)}},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Publisher: publisher}},
		PaymentHandler: &httpserver.PaymentHTTP{Svc: &service.PaymentService{
			Repo:        r,
			Gateway:     paygate.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.ServerKey, cfg.Gateway.Timeout),
			ServerKey:   cfg.Gateway.ServerKey,
			CallbackURL: cfg.Gateway.CallbackURL,
			Publisher:   publisher,
		}},
		ShiftHandler: &httpserver.ShiftHTTP{Svc: shifts},
		JWTSecret:    cfg.JWTAccessSecret,
		CookieSecure: cfg.CookieSecure,
		DB:           db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Gateway.Timeout + 15*time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", cfg.ServiceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Printf("%s stopped", cfg.ServiceName)
	return nil
}

func openDB(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := repo.Migrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}

// menuIndex returns nil when search is not configured or unreachable, in
// which case menu search runs against the database.
func menuIndex(cfg config.SearchConfig) service.MenuIndex {
	if cfg.URL == "" {
		return nil
	}
	client, err := search.NewClient(cfg)
	if err != nil {
		log.Printf("warning: menu search falls back to database: %v", err)
		return nil
	}
	return &search.MenuIndex{Client: client, Index: cfg.Index}
}

func newEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.Secure())
	return e
}

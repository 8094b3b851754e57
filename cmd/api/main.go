package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"poly.org/internal/auth"
	"poly.org/internal/config"
	"poly.org/internal/directory"
	"poly.org/internal/httpapi"
	"poly.org/internal/obs"
	"poly.org/internal/rbac"
)

var version = "0.9.0"

func main() {
	obs.Init()

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("pgx", settings.DSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	policy, err := rbac.New(startCtx, db)
	if err != nil {
		log.Fatalf("load policy: %v", err)
	}

	codec, err := auth.NewTokenCodec(
		settings.SecretKey,
		settings.SigningAlgorithm,
		settings.AccessTokenAudience,
		settings.AccessTokenIssuer,
	)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	authSvc, err := auth.NewService(auth.NewPGUserStore(db), codec,
		auth.WithAccessTTL(settings.AccessTokenExpiry),
		auth.WithRefreshTTL(settings.RefreshTokenExpiry),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(authSvc, policy, directory.NewPGStore(db), httpapi.ReadyProbe{DB: db}, version)

	handler := httpapi.Logging(
		httpapi.SecurityHeaders(
			httpapi.CORS(
				httpapi.MaxBodyBytes(
					httpapi.RateLimit(api.Handler(), 20, 10),
					1<<20,
				),
			),
		),
	)

	srv := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting poly-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}

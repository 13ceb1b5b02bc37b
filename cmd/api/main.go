package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/fracture-ai/internal/application"
	appauth "github.com/bryanwahyu/fracture-ai/internal/application/auth"
	apppred "github.com/bryanwahyu/fracture-ai/internal/application/predictions"
	appreports "github.com/bryanwahyu/fracture-ai/internal/application/reports"
	"github.com/bryanwahyu/fracture-ai/internal/config"
	preddomain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
	repdomain "github.com/bryanwahyu/fracture-ai/internal/domain/reports"
	usersdomain "github.com/bryanwahyu/fracture-ai/internal/domain/users"
	aiopenai "github.com/bryanwahyu/fracture-ai/internal/infra/ai/openai"
	"github.com/bryanwahyu/fracture-ai/internal/infra/db/mysql"
	"github.com/bryanwahyu/fracture-ai/internal/infra/db/postgres"
	"github.com/bryanwahyu/fracture-ai/internal/infra/httpserver"
	infhttp "github.com/bryanwahyu/fracture-ai/internal/infra/inference/httpapi"
	infprocess "github.com/bryanwahyu/fracture-ai/internal/infra/inference/process"
	"github.com/bryanwahyu/fracture-ai/internal/infra/mail"
	"github.com/bryanwahyu/fracture-ai/internal/infra/storage"
	"github.com/bryanwahyu/fracture-ai/internal/middleware"
)

func main() {
	// .env optional, buat development
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx := context.Background()

	// connect database sesuai driver
	var db *sql.DB
	var predRepo preddomain.Repository
	var userRepo usersdomain.Repository
	var reportRepo repdomain.Repository

	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect error")
		}
		predRepo = postgres.NewPredictionRepository(db)
		userRepo = postgres.NewUserRepository(db)
		reportRepo = postgres.NewReportRepository(db)
	default:
		db, err = mysql.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect error")
		}
		predRepo = mysql.NewPredictionRepository(db)
		userRepo = mysql.NewUserRepository(db)
		reportRepo = mysql.NewReportRepository(db)
	}
	defer db.Close()

	// artifact store
	var artifacts preddomain.ArtifactStore
	uploadsDir := ""
	switch cfg.Storage.Driver {
	case "minio":
		m := cfg.Storage.Minio
		artifacts, err = storage.NewMinio(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			log.Fatal().Err(err).Msg("minio init error")
		}
	default:
		local, err := storage.NewLocal(cfg.Storage.Local.Dir, cfg.Server.PublicURL)
		if err != nil {
			log.Fatal().Err(err).Msg("local storage init error")
		}
		artifacts = local
		uploadsDir = local.Dir()
	}

	// inference client
	var classifier preddomain.Classifier
	switch cfg.Inference.Mode {
	case "process":
		classifier = infprocess.NewRunner(cfg.Inference.Command, cfg.Inference.Args, cfg.InferenceTimeout())
	default:
		classifier = infhttp.New(cfg.Inference.URL, cfg.InferenceTimeout())
	}

	// notifier
	var notifier preddomain.Notifier
	if cfg.Mail.Enabled {
		notifier, err = mail.NewDispatcher(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, artifacts, log)
		if err != nil {
			log.Fatal().Err(err).Msg("mail dispatcher init error")
		}
	} else {
		notifier = mail.NewNoop(log)
	}

	clock := application.SystemClock{}

	authSvc := &appauth.Service{
		Users:    userRepo,
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
		Clock:    clock,
	}

	predSvc := &apppred.Service{
		Repo:       predRepo,
		Classifier: classifier,
		Artifacts:  artifacts,
		Notifier:   notifier,
		Users:      userRepo,
		Clock:      clock,
		Log:        log,
	}

	reportSvc := &appreports.Service{
		Client:      aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
		Repo:        reportRepo,
		Predictions: predRepo,
		Clock:       clock,
	}

	handler := httpserver.NewRouter(predSvc, authSvc, reportSvc, log, httpserver.Options{
		UploadsDir: uploadsDir,
		Checkers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	// drain notifikasi yang masih jalan
	predSvc.Flush()
}

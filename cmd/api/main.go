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

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application"
	appassistant "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/assistant"
	appingest "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/ingest"
	apppatients "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/patients"
	appusers "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/application/users"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/config"
	domassistant "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/assistant"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/analytics"
	dompatients "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/reconcile"
	domscans "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
	domusers "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/users"
	openaiClient "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/ai/openai"
	memorydb "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/db/memory"
	mysqldb "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/db/mysql"
	postgresdb "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/db/postgres"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/httpserver"
	inferenceClient "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/inference/httpclient"
	minioStore "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/storage"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/middleware"
)

// repos groups one implementation of every persistence port.
type repos struct {
	db        *sql.DB
	scans     domscans.Repository
	patients  dompatients.Repository
	users     domusers.Repository
	analytics analytics.Aggregator
	reconcile reconcile.Repository
	assistant domassistant.Repository
}

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx := context.Background()

	rp, err := openRepos(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("database connect error")
	}
	if rp.db != nil {
		defer rp.db.Close()
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("minio init error")
	}

	// init inference client
	inf := inferenceClient.New(cfg.Inference.URL, cfg.InferenceTimeout())

	// chat provider is optional; without a key the assistant endpoints
	// answer 503
	var chat domassistant.Client
	if cfg.OpenAI.APIKey != "" {
		chat = openaiClient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	// init services
	ingestSvc := &appingest.Service{
		Scans:     rp.scans,
		Patients:  rp.patients,
		Inference: inf,
		Artifacts: store,
		Masks:     store.WithPrefix("masks"),
		Analytics: rp.analytics,
		Reconcile: rp.reconcile,
		Clock:     application.SystemClock{},
		Log:       log,
	}
	patientSvc := &apppatients.Service{Repo: rp.patients}
	userSvc := &appusers.Service{Repo: rp.users}
	assistantSvc := appassistant.NewService(chat, rp.assistant, rp.scans)

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(ingestSvc, patientSvc, userSvc, assistantSvc, httpserver.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Checkers: map[string]middleware.HealthChecker{
			"database":  &middleware.DatabaseHealthChecker{DB: rp.db},
			"storage":   store,
			"inference": inf,
		},
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// openRepos picks the persistence backend from config. "memory" is for
// local development and needs no external services.
func openRepos(ctx context.Context, cfg *config.Config) (*repos, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		return &repos{
			db:        db,
			scans:     mysqldb.NewScanRepository(db),
			patients:  mysqldb.NewPatientRepository(db),
			users:     mysqldb.NewUserRepository(db),
			analytics: mysqldb.NewAnalyticsRepository(db),
			reconcile: mysqldb.NewReconcileRepository(db),
			assistant: mysqldb.NewAssistantRepository(db),
		}, nil
	case "postgres":
		db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return &repos{
			db:        db,
			scans:     postgresdb.NewScanRepository(db),
			patients:  postgresdb.NewPatientRepository(db),
			users:     postgresdb.NewUserRepository(db),
			analytics: postgresdb.NewAnalyticsRepository(db),
			reconcile: postgresdb.NewReconcileRepository(db),
			assistant: postgresdb.NewAssistantRepository(db),
		}, nil
	case "memory":
		users := memorydb.NewUserRepository()
		return &repos{
			scans:     memorydb.NewScanRepository(users),
			patients:  memorydb.NewPatientRepository(),
			users:     users,
			analytics: memorydb.NewAnalyticsRepository(),
			reconcile: memorydb.NewReconcileRepository(),
			assistant: memorydb.NewAssistantRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

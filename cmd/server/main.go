// Command server runs the Elevate API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	appservice "github.com/elevate-edu/elevate/internal/application/service"
	"github.com/elevate-edu/elevate/internal/config"
	domainservice "github.com/elevate-edu/elevate/internal/domain/service"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/internal/infrastructure/events"
	"github.com/elevate-edu/elevate/internal/infrastructure/monitoring"
	"github.com/elevate-edu/elevate/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/elevate-edu/elevate/internal/infrastructure/persistence/redis"
	"github.com/elevate-edu/elevate/internal/infrastructure/ratelimit"
	apihttp "github.com/elevate-edu/elevate/internal/interfaces/http"
	"github.com/elevate-edu/elevate/internal/interfaces/http/handlers"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Startup logger until the configured logger is ready.
	startupLog := logger.NewDefaultLogger(constants.LogLevelInfo)
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		startupLog.Fatal(ctx, "load configuration", err)
	}

	log, err := monitoring.NewZapLogger(cfg.Log)
	if err != nil {
		startupLog.Fatal(ctx, "initialize logger", err)
	}

	// With an explicit config file the log level follows edits to it; other
	// settings need a restart.
	if *configPath != "" {
		err := config.Watch(*configPath, func(updated *config.Config) {
			if ls, ok := log.(interface{ SetLevel(string) error }); ok {
				if err := ls.SetLevel(updated.Log.Level); err != nil {
					log.Warn(ctx, "config reload: bad log level", logger.ErrorField(err))
					return
				}
			}
			log.Info(ctx, "configuration reloaded", logger.String("log_level", updated.Log.Level))
		})
		if err != nil {
			log.Warn(ctx, "config watch unavailable", logger.ErrorField(err))
		}
	}

	shutdownTracer, err := monitoring.InitTracer(cfg.Tracing)
	if err != nil {
		log.Fatal(ctx, "initialize tracing", err)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	// Database bootstrap runs before the ORM touches the schema so the
	// uuid and crypto extensions exist when tables are created.
	if cfg.Database.Bootstrap.Enabled {
		bootstrapper := postgres.NewBootstrapper(cfg.Database, log)
		if _, err := bootstrapper.Run(ctx); err != nil {
			log.Fatal(ctx, "database bootstrap", err)
		}
	}

	db, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal(ctx, "connect database", err)
	}
	defer func() { _ = postgres.Close(db) }()

	if err := postgres.AutoMigrate(db); err != nil {
		log.Fatal(ctx, "migrate schema", err)
	}

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal(ctx, "connect redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	var secrets crypto.SecretSource
	if cfg.Vault.Enabled {
		vaultSource, err := crypto.NewVaultSecretSource(cfg.Vault)
		if err != nil {
			log.Fatal(ctx, "connect vault", err)
		}
		secrets = vaultSource
	} else {
		secrets = crypto.NewStaticSecretSource(cfg.JWT.Secret)
	}
	tokens := crypto.NewJWTManager(cfg.JWT, secrets)
	hasher := crypto.NewBcryptHasher(0)

	publisher := events.NewPublisher(cfg.Kafka, log)
	defer func() { _ = publisher.Close() }()

	cache := redisinfra.NewCacheManager(redisClient, log)
	limiter := ratelimit.NewSlidingWindowLimiter(redisClient, cfg.RateLimit.RequestsPerMinute, log)

	orgRepo := postgres.NewOrganizationRepository(db, log)
	userRepo := postgres.NewUserRepository(db, log)
	courseRepo := postgres.NewCourseRepository(db, log)
	enrollmentRepo := postgres.NewEnrollmentRepository(db, log)
	projectRepo := postgres.NewProjectRepository(db, log)
	questionnaireRepo := postgres.NewQuestionnaireRepository(db, log)
	teamRepo := postgres.NewTeamRepository(db, log)

	engine := domainservice.NewTeamFormationEngine(log, cfg.TeamFormation.Workers)

	orgService := appservice.NewOrganizationAppService(orgRepo, userRepo, hasher, cache, log)
	authService := appservice.NewAuthAppService(userRepo, hasher, tokens, publisher, log)
	courseService := appservice.NewCourseAppService(courseRepo, userRepo, publisher, log)
	enrollmentService := appservice.NewEnrollmentAppService(enrollmentRepo, courseRepo, userRepo, orgService, log)
	projectService := appservice.NewProjectAppService(projectRepo, courseRepo, enrollmentRepo,
		questionnaireRepo, userRepo, orgService, publisher, log)
	teamService := appservice.NewTeamAppService(teamRepo, projectRepo, courseRepo, userRepo,
		enrollmentRepo, questionnaireRepo, orgService, engine, cache, publisher, metrics, log)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Config:         cfg,
		Log:            log,
		Metrics:        metrics,
		Registry:       registry,
		TenantResolver: middleware.NewTenantResolver(orgRepo, cfg.Server.BaseDomain, log),
		RateLimiter:    limiter,
		Tokens:         tokens,
		Health:         handlers.NewHealthHandler(db, redisClient),
		Auth:           handlers.NewAuthHandler(authService),
		Organizations:  handlers.NewOrganizationHandler(orgService),
		Courses:        handlers.NewCourseHandler(courseService),
		Enrollments:    handlers.NewEnrollmentHandler(enrollmentService),
		Projects:       handlers.NewProjectHandler(projectService),
		Teams:          handlers.NewTeamHandler(teamService),
	})

	server := apihttp.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal(ctx, "http server", err)
		}
	case sig := <-sigCh:
		log.Info(ctx, "shutdown signal received", logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful shutdown failed", err)
	}
	log.Info(ctx, "server stopped")
}

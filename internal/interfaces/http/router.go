// Package http assembles the gin router and HTTP server.
package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/config"
	"github.com/elevate-edu/elevate/internal/infrastructure/crypto"
	"github.com/elevate-edu/elevate/internal/infrastructure/monitoring"
	"github.com/elevate-edu/elevate/internal/infrastructure/ratelimit"
	"github.com/elevate-edu/elevate/internal/interfaces/http/handlers"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Config         *config.Config
	Log            logger.Logger
	Metrics        *monitoring.Metrics
	Registry       *prometheus.Registry
	TenantResolver *middleware.TenantResolver
	RateLimiter    *ratelimit.SlidingWindowLimiter
	Tokens         *crypto.JWTManager

	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Organizations *handlers.OrganizationHandler
	Courses       *handlers.CourseHandler
	Enrollments   *handlers.EnrollmentHandler
	Projects      *handlers.ProjectHandler
	Teams         *handlers.TeamHandler
}

// NewRouter builds the gin engine with the full middleware chain and routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Server.Mode != "" {
		gin.SetMode(deps.Config.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestContext())
	r.Use(middleware.Observability(deps.Metrics, deps.Log))
	r.Use(middleware.Tracing(deps.Config.Tracing.ServiceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", constants.HeaderTenantID, constants.HeaderRequestID},
		ExposeHeaders:    []string{constants.HeaderRequestID, constants.HeaderTenantID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Probes and metrics sit outside tenant resolution.
	r.GET("/health/live", deps.Health.Live)
	r.GET("/health/ready", deps.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	if deps.Config.Server.Mode != "release" {
		pprof.Register(r)
	}

	// Tenant provisioning is platform level, before tenant resolution.
	r.POST("/api/v1/organizations", deps.Organizations.Create)

	api := r.Group("/api/v1")
	api.Use(deps.TenantResolver.Handler())
	if deps.Config.RateLimit.Enabled {
		api.Use(middleware.RateLimit(deps.RateLimiter, deps.Metrics))
	}

	// Public within a tenant.
	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
	}

	// Everything below requires a valid access token for this tenant.
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(deps.Tokens))
	{
		authed.GET("/auth/me", deps.Auth.Me)
		authed.PATCH("/auth/me", deps.Auth.UpdateMe)

		authed.GET("/organization", deps.Organizations.Current)
		authed.GET("/organization/settings", deps.Organizations.GetSettings)
		authed.PATCH("/organization/settings",
			middleware.RequireRole(constants.RoleAdmin), deps.Organizations.UpdateSettings)

		authed.GET("/users",
			middleware.RequireRole(constants.RoleAdmin, constants.RoleInstructor), deps.Auth.ListUsers)
		authed.GET("/users/:id",
			middleware.RequireRole(constants.RoleAdmin, constants.RoleInstructor), deps.Auth.GetUser)
		authed.DELETE("/users/:id",
			middleware.RequireRole(constants.RoleAdmin), deps.Auth.DeactivateUser)

		authed.GET("/courses", deps.Courses.List)
		authed.GET("/courses/:id", deps.Courses.Get)
		manage := middleware.RequireRole(constants.RoleAdmin, constants.RoleInstructor)
		authed.POST("/courses", manage, deps.Courses.Create)
		authed.PATCH("/courses/:id", manage, deps.Courses.Update)
		authed.POST("/courses/:id/instructors", manage, deps.Courses.AddInstructor)
		authed.DELETE("/courses/:id/instructors/:userId", manage, deps.Courses.RemoveInstructor)

		authed.POST("/courses/:id/enroll",
			middleware.RequireRole(constants.RoleStudent), deps.Enrollments.SelfEnroll)
		authed.POST("/courses/:id/enrollments", manage, deps.Enrollments.AddStudent)
		authed.POST("/courses/:id/enrollments/import", manage, deps.Enrollments.ImportCSV)
		authed.GET("/courses/:id/enrollments", manage, deps.Enrollments.ListByCourse)
		authed.GET("/enrollments", deps.Enrollments.MyEnrollments)
		authed.POST("/enrollments/:id/approve", manage, deps.Enrollments.Approve)
		authed.POST("/enrollments/:id/drop", deps.Enrollments.Drop)
		authed.POST("/enrollments/:id/complete", manage, deps.Enrollments.Complete)

		authed.POST("/courses/:id/projects", manage, deps.Projects.Create)
		authed.GET("/courses/:id/projects", deps.Projects.ListByCourse)
		authed.GET("/projects/:id", deps.Projects.Get)
		authed.POST("/projects/:id/publish", manage, deps.Projects.Publish)

		authed.PUT("/projects/:id/questionnaire",
			middleware.RequireRole(constants.RoleStudent), deps.Projects.SubmitQuestionnaire)
		authed.GET("/projects/:id/questionnaire",
			middleware.RequireRole(constants.RoleStudent), deps.Projects.GetQuestionnaire)
		authed.GET("/projects/:id/questionnaires", manage, deps.Projects.ListQuestionnaires)
		authed.GET("/projects/:id/questionnaires/stats", manage, deps.Projects.QuestionnaireStats)

		authed.POST("/projects/:id/teams",
			middleware.RequireRole(constants.RoleStudent), deps.Teams.Create)
		authed.GET("/projects/:id/teams", deps.Teams.ListByProject)
		authed.GET("/teams/:id", deps.Teams.Get)
		authed.POST("/teams/:id/join",
			middleware.RequireRole(constants.RoleStudent), deps.Teams.Join)
		authed.POST("/teams/:id/leave",
			middleware.RequireRole(constants.RoleStudent), deps.Teams.Leave)
		authed.POST("/teams/:id/lock", manage, deps.Teams.Lock)

		authed.POST("/projects/:id/formation", manage, deps.Teams.StartFormation)
		authed.GET("/projects/:id/formation", manage, deps.Teams.FormationStatus)
		authed.GET("/projects/:id/composition", manage, deps.Teams.CompositionReport)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, dto.Fail(errors.CodeNotFound, "route not found", nil))
	})

	return r
}

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	srv *stdhttp.Server
	log logger.Logger
}

// NewServer creates the HTTP server for the router.
func NewServer(cfg config.ServerConfig, router *gin.Engine, log logger.Logger) *Server {
	return &Server{
		srv: &stdhttp.Server{
			Addr:         cfg.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log.WithComponent("http_server"),
	}
}

// Start blocks serving requests until the listener fails or closes.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "http server listening", logger.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"cortex-backend/application/commands/bus"
	querybus "cortex-backend/application/queries/bus"
	"cortex-backend/infrastructure/config"
	"cortex-backend/interfaces/http/rest/handlers"
	"cortex-backend/interfaces/http/rest/middleware"
	"cortex-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	validator  *auth.JWTValidator
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		validator:  validator,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.cfg.RateLimitPerMinute, rt.logger))

		entityHandler := handlers.NewEntityHandler(rt.commandBus, rt.queryBus, rt.logger)
		r.Route("/entities", func(r chi.Router) {
			r.Post("/", entityHandler.CreateEntity)
			r.Get("/", entityHandler.ListEntities)
			r.Get("/{token}", entityHandler.GetEntity)
			r.Put("/{token}", entityHandler.UpdateEntity)
			r.Delete("/{token}", entityHandler.DeleteEntity)
			r.Post("/{token}/restore", entityHandler.RestoreEntity)
		})

		synapseHandler := handlers.NewSynapseHandler(rt.commandBus, rt.logger)
		r.Route("/synapses", func(r chi.Router) {
			r.Post("/", synapseHandler.CreateSynapse)
			r.Post("/batch", synapseHandler.CreateSynapsesBatch)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

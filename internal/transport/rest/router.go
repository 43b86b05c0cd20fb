package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rsecloud/research-management/internal/auth"
	"github.com/rsecloud/research-management/internal/dataset"
	"github.com/rsecloud/research-management/internal/project"
	"github.com/rsecloud/research-management/internal/transport/middleware"
	"github.com/rsecloud/research-management/internal/transport/swagger"
	"github.com/rsecloud/research-management/internal/user"
)

type RouterDeps struct {
	DB             *sql.DB
	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	ProjectHandler *project.Handler
	DatasetHandler *dataset.Handler
	AllowedOrigins string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)
	roleAuth := auth.NewRoleAuthorization(deps.Logger)

	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	// OpenAPI spec at root, swagger UI pointing to it
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", deps.AuthHandler.Login)
				sr.Post("/refresh", deps.AuthHandler.RefreshToken)
				sr.Post("/logout", deps.AuthHandler.Logout)
			})

			// everything below requires an authenticated user
			r.Group(func(pr chi.Router) {
				pr.Use(deps.AuthHandler.AuthMiddleware)

				if deps.UserHandler != nil {
					pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
					pr.Group(func(ur chi.Router) {
						ur.Use(roleAuth.RequireUserCreation())
						ur.Get("/users", deps.UserHandler.ListUsers)
						ur.Post("/users", deps.UserHandler.CreateUser)
					})
				}

				if deps.ProjectHandler != nil {
					pr.Route("/projects", func(ppr chi.Router) {
						ppr.Get("/", deps.ProjectHandler.ListProjects)
						ppr.Group(func(cr chi.Router) {
							cr.Use(roleAuth.RequireProjectCreation())
							cr.Post("/", deps.ProjectHandler.CreateProject)
						})
						ppr.Get("/{id}", deps.ProjectHandler.GetProject)
						ppr.Get("/{id}/participants", deps.ProjectHandler.ListParticipants)
						ppr.Post("/{id}/participants", deps.ProjectHandler.AddParticipant)
						ppr.Get("/{id}/datasets", deps.ProjectHandler.ListDatasets)
						ppr.Post("/{id}/datasets/{datasetID}", deps.ProjectHandler.AttachDataset)
					})
				}

				if deps.DatasetHandler != nil {
					pr.Get("/datasets", deps.DatasetHandler.ListDatasets)
					pr.Post("/datasets", deps.DatasetHandler.CreateDataset)
				}
			})
		}
	})
}

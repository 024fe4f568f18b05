package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-vidtube/internal/config"
	"go-vidtube/internal/handler"
	"go-vidtube/internal/metrics"
	"go-vidtube/internal/middleware"
)

type Handlers struct {
	User   *handler.UserHandler
	Video  *handler.VideoHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", handler.Handle(h.Health.Check))
	r.Handle("/metrics", metrics.Handler())

	requireAuth := authMiddleware.RequireAuth
	jsonTimeout := middleware.Timeout(cfg.RequestTimeout)
	uploadDeadline := middleware.UploadDeadline(cfg.UploadTimeout)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/users", func(users chi.Router) {
			users.With(uploadDeadline).Post("/register", handler.Handle(h.User.Register))
			users.With(jsonTimeout).Post("/login", handler.Handle(h.User.Login))
			users.With(jsonTimeout).Post("/refresh-token", handler.Handle(h.User.RefreshToken))

			users.With(jsonTimeout, requireAuth).Post("/logout", handler.Handle(h.User.Logout))
			users.With(jsonTimeout, requireAuth).Post("/change-password", handler.Handle(h.User.ChangePassword))
			users.With(jsonTimeout, requireAuth).Get("/current", handler.Handle(h.User.Current))
			users.With(jsonTimeout, requireAuth).Patch("/update-account", handler.Handle(h.User.UpdateAccount))
			users.With(uploadDeadline, requireAuth).Patch("/avatar", handler.Handle(h.User.UpdateAvatar))
			users.With(uploadDeadline, requireAuth).Patch("/cover-image", handler.Handle(h.User.UpdateCoverImage))
		})

		api.Route("/videos", func(videos chi.Router) {
			videos.With(jsonTimeout).Get("/", handler.Handle(h.Video.List))
			videos.With(jsonTimeout).Get("/{videoId}", handler.Handle(h.Video.Get))

			videos.With(uploadDeadline, requireAuth).Post("/", handler.Handle(h.Video.Publish))
			videos.With(uploadDeadline, requireAuth).Patch("/{videoId}", handler.Handle(h.Video.Update))
			videos.With(jsonTimeout, requireAuth).Delete("/{videoId}", handler.Handle(h.Video.Delete))
			videos.With(jsonTimeout, requireAuth).Patch("/{videoId}/publish", handler.Handle(h.Video.TogglePublish))
		})
	})

	return r
}

// Package http provides HTTP routing and middleware configuration
// for the ImageHub service.
package http

import (
	"net/http"

	"github.com/iamlokanath/imagehub/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the ImageHub API. It applies request logging and bearer-token
// authentication, mounts the auth and image endpoints under /api,
// and serves stored binaries under /uploads.
//
// Routes:
//
//	POST   /api/auth/register     → authHandler.Register
//	POST   /api/auth/login        → authHandler.Login
//	GET    /api/auth/me           → authHandler.Me        (bearer)
//	GET    /api/images/my-images  → imagesHandler.ListMine (bearer)
//	GET    /api/images/all        → imagesHandler.ListAll  (bearer)
//	POST   /api/images            → imagesHandler.Create   (bearer)
//	DELETE /api/images/{id}       → imagesHandler.Delete   (bearer)
//	GET    /uploads/*             → static image binaries
func NewRouter(
	authHandler *AuthHandler,
	imagesHandler *ImagesHandler,
	resolver middleware.UserResolver,
	logger *zap.Logger,
	uploadDir string,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints take JSON bodies only
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(resolver))
			r.Get("/auth/me", authHandler.Me)
			r.Get("/images/my-images", imagesHandler.ListMine)
			r.Get("/images/all", imagesHandler.ListAll)
			r.Post("/images", imagesHandler.Create)
			r.Delete("/images/{id}", imagesHandler.Delete)
		})
	})

	// Serve uploaded binaries
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	return r
}

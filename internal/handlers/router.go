package handlers

import (
	"net/http"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/mailer"
	"yamdb-backend/internal/middleware"
)

// NewRouter wires every handler to the /v1 surface. Content reads are
// open, content writes are admin-only, review and comment writes require
// authentication with object-level checks inside the handlers.
func NewRouter(db *database.DB, mail mailer.Mailer, cfg *config.Config) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	authHandler := NewAuthHandler(db, mail, cfg.JWTSecret, cfg.Limits)
	catalogHandler := NewCatalogHandler(db, cfg.Limits)
	titlesHandler := NewTitlesHandler(db, cfg.Limits)
	reviewsHandler := NewReviewsHandler(db, cfg.Limits)
	commentsHandler := NewCommentsHandler(db, cfg.Limits)
	usersHandler := NewUsersHandler(db, cfg.Limits)

	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAdmin(h)
	}
	auth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(h)
	}
	open := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.OptionalAuth(h)
	}

	router := http.NewServeMux()

	router.HandleFunc("POST /v1/auth/signup", authHandler.Signup)
	router.HandleFunc("POST /v1/auth/token", authHandler.Token)

	router.Handle("GET /v1/categories", open(catalogHandler.ListCategories))
	router.Handle("POST /v1/categories", admin(catalogHandler.CreateCategory))
	router.HandleFunc("GET /v1/categories/{slug}", MethodNotAllowed)
	router.Handle("DELETE /v1/categories/{slug}", admin(catalogHandler.DeleteCategory))

	router.Handle("GET /v1/genres", open(catalogHandler.ListGenres))
	router.Handle("POST /v1/genres", admin(catalogHandler.CreateGenre))
	router.HandleFunc("GET /v1/genres/{slug}", MethodNotAllowed)
	router.Handle("DELETE /v1/genres/{slug}", admin(catalogHandler.DeleteGenre))

	router.Handle("GET /v1/titles", open(titlesHandler.List))
	router.Handle("POST /v1/titles", admin(titlesHandler.Create))
	router.Handle("GET /v1/titles/{id}", open(titlesHandler.Get))
	router.Handle("PATCH /v1/titles/{id}", admin(titlesHandler.Update))
	router.Handle("DELETE /v1/titles/{id}", admin(titlesHandler.Delete))

	router.Handle("GET /v1/titles/{titleID}/reviews", open(reviewsHandler.List))
	router.Handle("POST /v1/titles/{titleID}/reviews", auth(reviewsHandler.Create))
	router.Handle("GET /v1/titles/{titleID}/reviews/{reviewID}", open(reviewsHandler.Get))
	router.Handle("PATCH /v1/titles/{titleID}/reviews/{reviewID}", auth(reviewsHandler.Update))
	router.Handle("DELETE /v1/titles/{titleID}/reviews/{reviewID}", auth(reviewsHandler.Delete))

	router.Handle("GET /v1/titles/{titleID}/reviews/{reviewID}/comments", open(commentsHandler.List))
	router.Handle("POST /v1/titles/{titleID}/reviews/{reviewID}/comments", auth(commentsHandler.Create))
	router.Handle("GET /v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", open(commentsHandler.Get))
	router.Handle("PATCH /v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", auth(commentsHandler.Update))
	router.Handle("DELETE /v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", auth(commentsHandler.Delete))

	router.Handle("GET /v1/users", admin(usersHandler.List))
	router.Handle("POST /v1/users", admin(usersHandler.Create))
	router.Handle("GET /v1/users/{username}", auth(usersHandler.Get))
	router.Handle("PATCH /v1/users/{username}", auth(usersHandler.Update))
	router.Handle("DELETE /v1/users/{username}", auth(usersHandler.Delete))

	return router
}

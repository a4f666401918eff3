package routes

import (
	"net/http"
	"path/filepath"

	"github.com/krkdev/contacts-api/internal/app"
	"github.com/krkdev/contacts-api/internal/config"
	"github.com/krkdev/contacts-api/internal/handler"
	"github.com/krkdev/contacts-api/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	users := handler.NewUserHandler(app.AuthService, app.UserService, app.AvatarService)
	contacts := handler.NewContactHandler(app.ContactService)
	health := handler.NewHealthHandler(app.DB)

	requireAuth := middleware.RequireAuth(app.AuthService)
	rateLimit := middleware.RateLimit(app.AuthLimiter)

	guarded := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return rateLimit(h)
	}

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// Avatars (local storage only; S3 objects are served by the bucket)
	if app.Cfg.StorageDriver == config.StorageDriverLocal {
		avatars := http.FileServer(http.Dir(filepath.Join(app.Cfg.PublicDir, "avatars")))
		mux.Handle("GET /avatars/", http.StripPrefix("/avatars/", avatars))
	}

	// Auth (rate limited)
	mux.Handle("POST /api/users/signup", limited(users.Signup))
	mux.Handle("POST /api/users/login", limited(users.Login))
	mux.Handle("GET /api/users/verify/{verificationToken}", limited(users.Verify))
	mux.Handle("POST /api/users/verify", limited(users.ResendVerification))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Users
	mux.Handle("GET /api/users/logout", guarded(users.Logout))
	mux.Handle("GET /api/users/current", guarded(users.Current))
	mux.Handle("PATCH /api/users", guarded(users.UpdateSubscription))
	mux.Handle("PATCH /api/users/avatars", guarded(users.UpdateAvatar))

	// Contacts
	mux.Handle("GET /api/contacts", guarded(contacts.List))
	mux.Handle("POST /api/contacts", guarded(contacts.Create))
	mux.Handle("GET /api/contacts/{id}", guarded(contacts.Get))
	mux.Handle("PUT /api/contacts/{id}", guarded(contacts.Update))
	mux.Handle("DELETE /api/contacts/{id}", guarded(contacts.Delete))
	mux.Handle("PATCH /api/contacts/{contactId}/favorite", guarded(contacts.SetFavorite))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	global := []func(http.Handler) http.Handler{
		middleware.Recover,   // Recover must be first so every panic becomes a JSON 500
		middleware.RequestID, // Request ID before logging so log lines carry it
	}
	if app.Cfg.TrustProxy {
		// Only behind a proxy that sets these headers; otherwise clients could
		// pick their own rate limit key.
		global = append(global, middleware.RealIP)
	}
	global = append(global,
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
	)

	handler := middleware.Chain(mux, global...)

	return handler
}

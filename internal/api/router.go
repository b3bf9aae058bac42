package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/cabinet-be/internal/api/handlers"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/monitoring"
	"github.com/isdelr/cabinet-be/internal/services"
)

// Options carries the services and HTTP settings the router is built from.
type Options struct {
	Users     services.UserServiceProvider
	Recipes   services.RecipeServiceProvider
	Favorites services.FavoriteServiceProvider
	Authors   services.AuthorServiceProvider
	Books     services.BookServiceProvider
	Events    services.EventServiceProvider
	Sessions  auth.SessionStore
	Decoder   handlers.Decoder

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger

	CORSOrigins       []string
	StaticDir         string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	BodyLimit         int64
	SessionTTL        time.Duration
	SecureCookies     bool

	// TrustProxy takes the client address from X-Forwarded-For, X-Real-IP or
	// True-Client-IP. Leave it off unless a reverse proxy overwrites those headers.
	TrustProxy bool
}

// Defaults applied by NewRouter when an Options field is left zero.
const (
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 15 * time.Minute
	DefaultBodyLimit         = 1024
)

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options) *chi.Mux {
	if opts.RateLimitRequests <= 0 {
		opts.RateLimitRequests = DefaultRateLimitRequests
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = DefaultRateLimitWindow
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = auth.DefaultSessionTTL
	}

	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(requestIDField)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(monitoring.Middleware)

	// Security headers
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))
	r.Use(middleware.SetHeader("Cross-Origin-Opener-Policy", "same-origin"))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(opts.Users, opts.Sessions, opts.Decoder, opts.SessionTTL, opts.SecureCookies)
	recipeHandler := handlers.NewRecipeHandler(opts.Recipes, opts.Decoder)
	favoriteHandler := handlers.NewFavoriteHandler(opts.Favorites, opts.Decoder)
	authorHandler := handlers.NewAuthorHandler(opts.Authors, opts.Decoder)
	bookHandler := handlers.NewBookHandler(opts.Books, opts.Decoder)
	eventHandler := handlers.NewEventHandler(opts.Events)

	r.Get("/healthz", handlers.Health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.Limit(
			opts.RateLimitRequests,
			opts.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(handlers.RateLimited),
		))
		r.Use(middleware.RequestSize(opts.BodyLimit))
		r.Use(auth.SessionMiddleware(opts.Sessions))

		r.NotFound(handlers.NotFound)
		r.MethodNotAllowed(handlers.MethodNotAllowed)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
		r.With(auth.RequireIdentity).Get("/me/recipes", recipeHandler.Mine)
		r.With(auth.RequireIdentity).Get("/me/events", eventHandler.GetMine)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.GetAll)
			r.Get("/search", recipeHandler.Search)
			r.Post("/", recipeHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recipeHandler.Get)
				r.Put("/", recipeHandler.Update)
				r.Delete("/", recipeHandler.Delete)
			})
		})

		r.Route("/favorites/{id}", func(r chi.Router) {
			r.Get("/", favoriteHandler.Status)
			r.With(auth.RequireIdentity).Post("/", favoriteHandler.Add)
			r.With(auth.RequireIdentity).Delete("/", favoriteHandler.Remove)
		})

		r.Route("/cabinet", func(r chi.Router) {
			r.Use(auth.RequireIdentity)
			r.Get("/", favoriteHandler.Cabinet)
			r.Post("/{id}", favoriteHandler.SaveToCabinet)
		})

		r.Route("/authors", func(r chi.Router) {
			r.Get("/", authorHandler.GetAll)
			r.Post("/", authorHandler.Create)
			r.Get("/{id}", authorHandler.Get)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.GetAll)
			r.Post("/", bookHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", bookHandler.Get)
				r.Put("/", bookHandler.Update)
				r.Delete("/", bookHandler.Delete)
			})
		})

		r.Get("/events", eventHandler.GetRecent)
	})

	// Single-page front end
	r.Get("/*", spaHandler(opts.StaticDir))

	return r
}

// requestIDField adds chi's request id to the request logger.
func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutricart/nutricart-backend/api/controllers"
	cartcontrollers "github.com/nutricart/nutricart-backend/api/controllers/cart"
	"github.com/nutricart/nutricart-backend/api/middleware"
	"github.com/nutricart/nutricart-backend/internal/auth"
	"github.com/nutricart/nutricart-backend/internal/cart"
	"github.com/nutricart/nutricart-backend/pkg/auth/session"
	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/nutricart/nutricart-backend/pkg/logger"
	"github.com/nutricart/nutricart-backend/pkg/sendgrid"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type emailQueue interface {
	Enqueue(ctx context.Context, msg sendgrid.Message) error
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	ReadyChecks     []controllers.ReadyCheck
	Sessions        session.AccessSessionChecker
	RateLimiter     rateLimiter
	AuthService     auth.Service
	CartService     cart.Service
	EmailQueue      emailQueue
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Get("/", controllers.Root())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.ReadyChecks...))
	})

	if params.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.Auth(cfg.JWT, params.Sessions, logg)

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, params.RateLimiter, logg)).Post("/register", controllers.AuthRegister(params.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, params.RateLimiter, logg)).Post("/login", controllers.AuthLogin(params.AuthService, logg))
		r.With(requireAuth).Get("/me", controllers.AuthMe(params.AuthService, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(params.AuthService, logg))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", cartcontrollers.CartFetch(params.CartService, logg))
		r.Get("/add/{barcode}", cartcontrollers.CartAdd(params.CartService, logg))
		r.Get("/remove/{barcode}", cartcontrollers.CartRemove(params.CartService, logg))
		r.Get("/delete", cartcontrollers.CartDelete(params.CartService, logg))
		r.Post("/save", cartcontrollers.CartSave(params.CartService, logg))
		r.Get("/saved", cartcontrollers.CartSaved(params.CartService, logg))
	})

	r.Route("/email", func(r chi.Router) {
		r.Post("/send", controllers.EmailSend(params.EmailQueue, logg))
	})

	return r
}

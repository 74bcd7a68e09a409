package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborpay/scanpay-backend/api/controllers"
	"github.com/harborpay/scanpay-backend/api/middleware"
	"github.com/harborpay/scanpay-backend/internal/broadcast"
	"github.com/harborpay/scanpay-backend/internal/gate"
	"github.com/harborpay/scanpay-backend/internal/observations"
	"github.com/harborpay/scanpay-backend/internal/orders"
	"github.com/harborpay/scanpay-backend/pkg/config"
	"github.com/harborpay/scanpay-backend/pkg/db"
	"github.com/harborpay/scanpay-backend/pkg/logger"
	"github.com/harborpay/scanpay-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        redis.Pinger
	Gate         *gate.Gate
	Orders       orders.Service
	Observations observations.Service
	Broadcast    broadcast.Service
	Metrics      prometheus.Gatherer
}

// NewRouter assembles the API router.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Merchant-facing, signature-gated.
		r.Post("/orders", controllers.CreateOrder(deps.Gate, deps.Orders, logg))
		r.Get("/orders/{orderID}", controllers.GetOrder(deps.Gate, deps.Orders, logg))
		r.Post("/orders/{orderID}/close", controllers.CloseOrder(deps.Gate, deps.Orders, logg))

		// Listener-agent plane.
		r.Get("/orders/active", controllers.ActiveOrders(deps.Orders, logg))
		r.Post("/observations", controllers.IngestObservation(deps.Observations, logg))
		r.Get("/broadcast", controllers.ReadBroadcast(deps.Broadcast, logg))
	})

	return r
}

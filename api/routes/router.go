package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillpointhq/tillpoint-backend/api/controllers"
	ordercontrollers "github.com/tillpointhq/tillpoint-backend/api/controllers/orders"
	"github.com/tillpointhq/tillpoint-backend/api/middleware"
	"github.com/tillpointhq/tillpoint-backend/internal/menu"
	ordersvc "github.com/tillpointhq/tillpoint-backend/internal/orders"
	paymentsvc "github.com/tillpointhq/tillpoint-backend/internal/payments"
	"github.com/tillpointhq/tillpoint-backend/internal/tenants"
	"github.com/tillpointhq/tillpoint-backend/internal/tickets"
	"github.com/tillpointhq/tillpoint-backend/pkg/config"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
	"github.com/tillpointhq/tillpoint-backend/pkg/metrics"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Tenants  *tenants.Service
	Menu     *menu.Service
	Tickets  *tickets.Service
	Orders   *ordersvc.Service
	Payments *paymentsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	promRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	requestMetrics := metrics.NewRequestMetrics(promRegistry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(requestMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TenantContext(svcs.Tenants, logg))

		r.Get("/menu", controllers.Menu(svcs.Menu, logg))

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", controllers.ListTickets(svcs.Tickets, logg))
			r.Post("/{ticketID}/advance", controllers.AdvanceTicket(svcs.Tickets, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.CreateOrder(svcs.Orders, logg))
			r.Post("/{orderID}/payments", ordercontrollers.ApplyPayment(svcs.Payments, logg))
		})
	})

	return r
}

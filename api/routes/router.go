package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aureliacommerce/storecredit-backend/api/controllers"
	"github.com/aureliacommerce/storecredit-backend/api/middleware"
	"github.com/aureliacommerce/storecredit-backend/internal/storecredit"
	"github.com/aureliacommerce/storecredit-backend/pkg/config"
	"github.com/aureliacommerce/storecredit-backend/pkg/db"
	"github.com/aureliacommerce/storecredit-backend/pkg/logger"
	pkgredis "github.com/aureliacommerce/storecredit-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    db.Pinger
	RedisClient *pkgredis.Client
	StoreCredit storecredit.Service
	Registry    *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var redisPinger pkgredis.Pinger
	if params.RedisClient != nil {
		redisPinger = params.RedisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DBPinger, redisPinger))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	var idempotencyStore pkgredis.IdempotencyStore
	if params.RedisClient != nil {
		idempotencyStore = params.RedisClient
	}

	r.Route("/api/v1/store-credits", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg, cfg.StoreCredit.IdempotencyTTL))

		r.Post("/", controllers.CreateStoreCredit(params.StoreCredit, logg))

		r.Route("/{storeCreditId}", func(r chi.Router) {
			r.Get("/", controllers.GetStoreCredit(params.StoreCredit, logg))
			r.Get("/balances", controllers.StoreCreditBalances(params.StoreCredit, logg))
			r.Post("/credit", controllers.StoreCreditCredit(params.StoreCredit, logg))
			r.Post("/debit", controllers.StoreCreditDebit(params.StoreCredit, logg))

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", controllers.ListStoreCreditEntries(params.StoreCredit, logg))
				r.Route("/{entryId}", func(r chi.Router) {
					r.Get("/", controllers.GetStoreCreditEntry(params.StoreCredit, logg))
					r.Post("/clear", controllers.StoreCreditEntryClear(params.StoreCredit, logg))
					r.Post("/void", controllers.StoreCreditEntryVoid(params.StoreCredit, logg))
				})
			})
		})
	})

	return r
}

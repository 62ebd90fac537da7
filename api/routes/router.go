package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billy17-netizen/posvougher-sub002/api/controllers"
	webhookcontrollers "github.com/billy17-netizen/posvougher-sub002/api/controllers/webhooks"
	"github.com/billy17-netizen/posvougher-sub002/api/middleware"
	"github.com/billy17-netizen/posvougher-sub002/internal/auth"
	"github.com/billy17-netizen/posvougher-sub002/internal/categories"
	"github.com/billy17-netizen/posvougher-sub002/internal/payments"
	"github.com/billy17-netizen/posvougher-sub002/internal/products"
	"github.com/billy17-netizen/posvougher-sub002/internal/reports"
	"github.com/billy17-netizen/posvougher-sub002/internal/stores"
	"github.com/billy17-netizen/posvougher-sub002/internal/transactions"
	"github.com/billy17-netizen/posvougher-sub002/pkg/auth/session"
	"github.com/billy17-netizen/posvougher-sub002/pkg/config"
	"github.com/billy17-netizen/posvougher-sub002/pkg/db"
	"github.com/billy17-netizen/posvougher-sub002/pkg/enums"
	"github.com/billy17-netizen/posvougher-sub002/pkg/logger"
	"github.com/billy17-netizen/posvougher-sub002/pkg/redis"
)

// Deps carries every service and infrastructure handle the router wires up.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *redis.Client
	Session     session.AccessSessionChecker
	Memberships middleware.MembershipChecker
	Metrics     prometheus.Gatherer

	Auth         auth.Service
	Register     auth.RegisterService
	Stores       stores.Service
	Categories   categories.Service
	Products     products.Service
	Transactions transactions.Service
	Payments     payments.Service
	Reports      reports.Service
	Webhook      webhookcontrollers.MidtransWebhookService
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/midtrans", webhookcontrollers.MidtransWebhook(deps.Webhook, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
		// Refresh authenticates with the rotated pair itself so an expired
		// access token can still be exchanged.
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Post("/switch-store", controllers.AuthSwitchStore(deps.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))
		r.Use(middleware.StoreContext(deps.Memberships, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/stores/me", func(r chi.Router) {
			r.Get("/", controllers.StoreProfile(deps.Stores, logg))
			r.Put("/", controllers.StoreUpdate(deps.Stores, logg))
			r.Get("/settings", controllers.StoreSettingsGet(deps.Stores, logg))
			r.Put("/settings", controllers.StoreSettingsPut(deps.Stores, logg))
			r.Get("/users", controllers.StoreUsersList(deps.Stores, logg))
			r.Post("/users/invite", controllers.StoreUserInvite(deps.Stores, logg))
			r.Delete("/users/{userId}", controllers.StoreUserRemove(deps.Stores, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Categories, logg))
			r.Post("/", controllers.CategoryCreate(deps.Categories, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(deps.Categories, logg))
			r.Put("/{categoryId}", controllers.CategoryUpdate(deps.Categories, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(deps.Categories, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
			r.Put("/{productId}", controllers.ProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(deps.Transactions, logg))
			r.Post("/", controllers.TransactionCreate(deps.Transactions, logg))
			r.Get("/{transactionId}", controllers.TransactionGet(deps.Transactions, logg))
			r.Post("/{transactionId}/token", controllers.TransactionToken(deps.Payments, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireStoreManager(logg))
			r.Get("/sales/summary", controllers.ReportSalesSummary(deps.Reports, logg))
			r.Get("/sales/daily", controllers.ReportSalesDaily(deps.Reports, logg))
			r.Get("/products/top", controllers.ReportTopProducts(deps.Reports, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))
		r.Use(middleware.RequireRole(logg, enums.MemberRoleSuperAdmin))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.AdminStoreList(deps.Stores, logg))
			r.Post("/", controllers.AdminStoreCreate(deps.Stores, logg))
			r.Post("/{storeId}/activate", controllers.AdminStoreActivate(deps.Stores, logg))
			r.Post("/{storeId}/deactivate", controllers.AdminStoreDeactivate(deps.Stores, logg))
		})
	})

	return r
}

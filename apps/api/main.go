package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	billinghandler "github.com/orderdesk/orderdesk-saas/domains/billing/be/handler"
	billingprovider "github.com/orderdesk/orderdesk-saas/domains/billing/be/provider"
	billingrepo "github.com/orderdesk/orderdesk-saas/domains/billing/be/repo"
	billingservice "github.com/orderdesk/orderdesk-saas/domains/billing/be/service"
	cartshandler "github.com/orderdesk/orderdesk-saas/domains/carts/be/handler"
	cartsrepo "github.com/orderdesk/orderdesk-saas/domains/carts/be/repo"
	cartsservice "github.com/orderdesk/orderdesk-saas/domains/carts/be/service"
	ordershandler "github.com/orderdesk/orderdesk-saas/domains/orders/be/handler"
	ordersrepo "github.com/orderdesk/orderdesk-saas/domains/orders/be/repo"
	ordersservice "github.com/orderdesk/orderdesk-saas/domains/orders/be/service"
	staffhandler "github.com/orderdesk/orderdesk-saas/domains/staff/be/handler"
	staffrepo "github.com/orderdesk/orderdesk-saas/domains/staff/be/repo"
	staffservice "github.com/orderdesk/orderdesk-saas/domains/staff/be/service"
	tenantshandler "github.com/orderdesk/orderdesk-saas/domains/tenants/be/handler"
	tenantsrepo "github.com/orderdesk/orderdesk-saas/domains/tenants/be/repo"
	tenantsservice "github.com/orderdesk/orderdesk-saas/domains/tenants/be/service"
	platformauth "github.com/orderdesk/orderdesk-saas/platform/go/auth"
	"github.com/orderdesk/orderdesk-saas/platform/go/docstore"
	"github.com/orderdesk/orderdesk-saas/platform/go/gcp"
	platformlogging "github.com/orderdesk/orderdesk-saas/platform/go/logging"
	"github.com/orderdesk/orderdesk-saas/platform/go/metrics"
	platformmiddleware "github.com/orderdesk/orderdesk-saas/platform/go/middleware"
	tenantmiddleware "github.com/orderdesk/orderdesk-saas/platform/go/tenant/middleware"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	DocstoreBackend string  `env:"DOCSTORE_BACKEND" envDefault:"firestore"` // firestore | postgres
	DatabaseURL     string  `env:"DATABASE_URL"`                            // required when DOCSTORE_BACKEND=postgres
	Credentials     *string `env:"GOOGLE_APPLICATION_CREDENTIALS_FILE"`

	AuthProvider string `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev

	RedisAddr       string        `env:"REDIS_ADDR"`
	RateLimitMax    int64         `env:"RATE_LIMIT_MAX" envDefault:"30"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	StripeSecretKey    string `env:"STRIPE_SECRET_KEY"`
	StripeBaseURL      string `env:"STRIPE_BASE_URL"`
	PayPalClientID     string `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `env:"PAYPAL_CLIENT_SECRET"`
	PayPalBaseURL      string `env:"PAYPAL_BASE_URL"`
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, fbAuth, cleanup := buildStore(ctx, cfg, logger)
	defer cleanup()

	var counter platformmiddleware.Counter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		counter = platformmiddleware.NewRedisCounter(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set; rate limiting uses the in-process counter")
		counter = platformmiddleware.NewMemoryCounter()
	}

	tenantRepo := tenantsrepo.NewDocstoreRepository(store)
	tenantService := tenantsservice.New(tenantRepo)
	tenantHTTPHandler := tenantshandler.New(tenantService, logger)

	var claimsAdmin platformauth.ClaimsAdmin
	if fbAuth != nil {
		claimsAdmin = platformauth.NewFirebaseClaimsAdmin(fbAuth)
	}
	staffRepo := staffrepo.NewDocstoreRepository(store)
	staffService := staffservice.New(staffRepo, claimsAdmin)
	staffHTTPHandler := staffhandler.New(staffService, logger)

	orderRepo := ordersrepo.NewDocstoreRepository(store)
	orderService := ordersservice.New(orderRepo)
	orderHTTPHandler := ordershandler.New(orderService, staffService, logger)

	cartRepo := cartsrepo.NewDocstoreRepository(store)
	cartService := cartsservice.New(cartRepo)
	cartHTTPHandler := cartshandler.New(cartService, logger)

	providers := map[string]billingprovider.Provider{}
	if cfg.StripeSecretKey != "" {
		providers["stripe"] = billingprovider.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeBaseURL, logger)
	}
	if cfg.PayPalClientID != "" {
		providers["paypal"] = billingprovider.NewPayPalProvider(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalBaseURL, logger)
	}
	billingRepo := billingrepo.NewDocstoreRepository(store)
	billingService := billingservice.New(billingRepo, providers)
	billingHTTPHandler := billinghandler.New(billingService, logger)

	authMiddleware := buildAuthMiddleware(cfg, fbAuth, logger)
	tenantMW := tenantmiddleware.WithTenantSpace(tenantService, tenantmiddleware.Config{
		CacheTTL: time.Minute,
	})
	httpMetrics := metrics.NewHTTPMetrics("api-server")

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))
	rootRouter.Use(httpMetrics.Middleware)

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Method(http.MethodGet, "/metrics", metrics.Handler())

	registerDocsRoutes(rootRouter, logger)

	publicValidator := mustNewSpecValidator(logger, "contracts/api.yaml")
	checkRateLimit := platformmiddleware.RateLimit(counter, platformmiddleware.RateLimitConfig{
		Bucket: "subdomain-check",
		Limit:  cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
	})
	checkoutRateLimit := platformmiddleware.RateLimit(counter, platformmiddleware.RateLimitConfig{
		Bucket: "upgrade-checkout",
		Limit:  cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
	})

	// The subdomain check stays outside the contract validator: it must answer
	// 200 with {available:false} to any input, including bodies the contract
	// would reject before the handler runs.
	rootRouter.With(checkRateLimit).Post("/subdomain-check", tenantHTTPHandler.SubdomainCheck)

	rootRouter.Group(func(r chi.Router) {
		r.Use(publicValidator)
		r.With(tenantMW).Post("/cart/quote", cartHTTPHandler.Quote)
		r.Get("/upgrade/resolve-order", billingHTTPHandler.ResolveOrder)
	})

	rootRouter.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(platformmiddleware.RequestTrace)
		r.Use(tenantMW)

		r.With(checkoutRateLimit).Post("/upgrade/checkout", billingHTTPHandler.Checkout)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", staffHTTPHandler.ListMembers)
			r.Patch("/users/{uid}/roles", staffHTTPHandler.SetRoles)

			r.Get("/orders", orderHTTPHandler.ListOrders)
			r.Get("/orders/{orderId}", orderHTTPHandler.GetOrder)
			r.Post("/orders/{orderId}/status", orderHTTPHandler.UpdateStatus)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server",
			zap.String("port", cfg.Port),
			zap.String("docstore_backend", cfg.DocstoreBackend),
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildStore selects the document store backend. Firestore is the production
// default; Postgres serves self-hosted installs and local development. The
// returned auth client is nil unless Firebase was initialized.
func buildStore(ctx context.Context, cfg config, logger *zap.Logger) (docstore.Store, *firebaseauth.Client, func()) {
	switch cfg.DocstoreBackend {
	case "firestore":
		_, fbAuth, fsClient, err := gcp.InitFirebase(ctx, cfg.Credentials)
		if err != nil {
			logger.Fatal("init firebase", zap.Error(err))
		}
		return docstore.NewFirestoreStore(fsClient), fbAuth, func() { _ = fsClient.Close() }
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL required when DOCSTORE_BACKEND=postgres")
		}
		pool, err := docstore.NewPool(ctx, docstore.PoolConfig{ConnString: cfg.DatabaseURL})
		if err != nil {
			logger.Fatal("init postgres pool", zap.Error(err))
		}
		store, err := docstore.NewPostgresStore(ctx, pool)
		if err != nil {
			logger.Fatal("init postgres docstore", zap.Error(err))
		}
		var fbAuth *firebaseauth.Client
		if cfg.AuthProvider == "firebase" {
			app, err := gcp.NewApp(ctx, cfg.Credentials)
			if err != nil {
				logger.Fatal("init firebase app", zap.Error(err))
			}
			fbAuth, err = app.Auth(ctx)
			if err != nil {
				logger.Fatal("init firebase auth", zap.Error(err))
			}
		}
		return store, fbAuth, func() { docstore.ClosePool(pool) }
	default:
		logger.Fatal("invalid DOCSTORE_BACKEND (use firestore or postgres)",
			zap.String("backend", cfg.DocstoreBackend))
		return nil, nil, nil
	}
}

package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/tenantkit/modules/directory"
	"github.com/dmitrymomot/tenantkit/modules/payment"
	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	mongoconn "github.com/dmitrymomot/tenantkit/pkg/mongo"
	"github.com/dmitrymomot/tenantkit/pkg/ratelimit"
	redisconn "github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tenantdb"
	"github.com/dmitrymomot/tenantkit/pkg/tier"
	"github.com/dmitrymomot/tenantkit/pkg/usage"
)

// Config aggregates every component's environment configuration so one load
// boots the whole stack.
type Config struct {
	Service  string `env:"SERVICE_NAME" envDefault:"tenantkit"`
	Database string `env:"MONGODB_DATABASE" envDefault:"tenantkit"`

	Redis     redisconn.Config
	Mongo     mongoconn.Config
	Tenant    tenant.Config
	Tiers     tier.Config
	RateLimit ratelimit.Config
	Usage     usage.Config
}

// LoadConfig reads the stack configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// App holds the wired components. Fields are exported so callers can reach
// individual pieces (the admin service, the payment repository) directly.
type App struct {
	Log       *slog.Logger
	Table     tier.Table
	Cache     tenant.Cache
	Directory *directory.Store
	Admin     *directory.Service
	Resolver  *tenant.Resolver
	Limiter   *ratelimit.SlidingWindow
	Meter     *usage.Meter
	Payments  *payment.Repository

	redis  *goredis.Client
	db     *mongo.Database
	probes []func(context.Context) error
}

// New connects to Redis and Mongo and wires the stack. On any failure the
// connections opened so far are released.
func New(ctx context.Context, cfg Config) (*App, error) {
	log := logger.New(
		logger.WithProduction(cfg.Service),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)

	rdb, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	db, err := mongoconn.ConnectDatabase(ctx, cfg.Mongo, cfg.Database)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	store := directory.NewStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = rdb.Close()
		_ = db.Client().Disconnect(ctx)
		return nil, err
	}

	limiter, err := ratelimit.NewSlidingWindow(ratelimit.NewRedisStore(rdb), cfg.RateLimit.Window())
	if err != nil {
		_ = rdb.Close()
		_ = db.Client().Disconnect(ctx)
		return nil, err
	}

	cache := tenant.NewRedisCache(rdb, log)
	table := tier.NewTable(cfg.Tiers)

	return &App{
		Log:       log,
		Table:     table,
		Cache:     cache,
		Directory: store,
		Admin:     directory.NewService(store, directory.WithCache(cache), directory.WithLogger(log)),
		Resolver:  tenant.NewResolver(store, cfg.Tenant, tenant.WithCache(cache), tenant.WithLogger(log)),
		Limiter:   limiter,
		Meter:     usage.NewMeter(usage.NewRedisStore(rdb), table, cfg.Usage, usage.WithLogger(log)),
		Payments:  payment.NewRepository(db.Collection(payment.Collection), tenantdb.WithLogger(log)),
		redis:     rdb,
		db:        db,
		probes: []func(context.Context) error{
			redisconn.Healthcheck(rdb),
			mongoconn.Healthcheck(db.Client()),
		},
	}, nil
}

// Middlewares returns the request plumbing in the order it must run:
// tenant resolution, the tenant guard, then rate limiting with
// fire-and-forget usage metering.
func (a *App) Middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		tenant.Middleware(a.Resolver, tenant.WithMiddlewareLogger(a.Log)),
		tenant.RequireTenant(nil),
		ratelimit.Middleware(a.Limiter, a.Table,
			ratelimit.WithUsageRecorder(a.Meter.Track),
			ratelimit.WithLogger(a.Log)),
	}
}

// Routes returns a router with the health probe public and everything the
// mount callback registers placed behind the tenant plumbing.
func (a *App) Routes(mount func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", a.Healthz)
	r.Group(func(pr chi.Router) {
		pr.Use(a.Middlewares()...)
		mount(pr)
	})
	return r
}

// Healthz answers 200 when every backing connection responds.
func (a *App) Healthz(w http.ResponseWriter, r *http.Request) {
	for _, probe := range a.probes {
		if err := probe(r.Context()); err != nil {
			a.Log.ErrorContext(r.Context(), "health probe failed", logger.Error(err))
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Close releases the Redis and Mongo connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Client().Disconnect(ctx))
	}
	return errors.Join(errs...)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/NetoNetoArreche/buildix-sub004/pkg/cache"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/config"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/httpserver"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/logger"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/pg"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/plan"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/redis"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/subscription"
	"github.com/NetoNetoArreche/buildix-sub004/pkg/usage"
)

type appConfig struct {
	AppEnv        string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
	LedgerBackend string        `env:"USAGE_LEDGER_BACKEND" envDefault:"postgres"` // postgres or redis
	BypassEmails  []string      `env:"USAGE_BYPASS_EMAILS" envSeparator:","`
	CatalogPath   string        `env:"PLAN_CATALOG_PATH"` // optional YAML override of the built-in catalog
	PlanCacheTTL  time.Duration `env:"PLAN_CACHE_TTL" envDefault:"1m"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(logger.WithEnvironment(cfg.AppEnv), logger.WithService("buildix-metering"))
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var catalogSrc plan.Source
	if cfg.CatalogPath != "" {
		catalogSrc = plan.NewYAMLSource(cfg.CatalogPath)
	} else {
		catalogSrc = plan.NewInMemSource(plan.DefaultPlans())
	}
	catalog, err := plan.NewCatalog(ctx, catalogSrc)
	if err != nil {
		return err
	}

	var ledger usage.Store
	switch cfg.LedgerBackend {
	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		ledger = usage.NewRedisStore(client)
	case "postgres":
		ledger = usage.NewPostgresStore(pool)
	default:
		return fmt.Errorf("unknown usage ledger backend %q", cfg.LedgerBackend)
	}

	planCache := cache.New[uuid.UUID, plan.ID](cfg.PlanCacheTTL)
	subStore := subscription.NewInvalidatingStore(subscription.NewPostgresStore(pool), planCache)

	svc, err := usage.NewService(catalog, ledger,
		subscription.CachedPlanResolver(subStore, planCache),
		usage.WithBypassEmails(cfg.BypassEmails...),
		usage.WithLogger(log),
	)
	if err != nil {
		return err
	}

	return httpserver.Run(ctx, newRouter(svc, log),
		httpserver.WithAddr(cfg.HTTPAddr),
		httpserver.WithLogger(log),
		httpserver.WithReadTimeout(15*time.Second),
		httpserver.WithWriteTimeout(30*time.Second),
	)
}

func newRouter(svc *usage.Service, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(identityMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/usage", usageHandler(svc))

		r.With(usage.Gate(svc, plan.FeaturePrompts)).
			Post("/ai/generate", meteredHandler(svc, log, plan.FeaturePrompts))
		r.With(usage.Gate(svc, plan.FeatureImages)).
			Post("/images", meteredHandler(svc, log, plan.FeatureImages))
		r.With(usage.Gate(svc, plan.FeatureFigmaExports)).
			Post("/export/figma", meteredHandler(svc, log, plan.FeatureFigmaExports))
		r.With(usage.Gate(svc, plan.FeatureHTMLExports)).
			Post("/export/html", meteredHandler(svc, log, plan.FeatureHTMLExports))
	})

	return r
}

// identityMiddleware trusts the identity headers set by the upstream
// authentication gateway. Requests without a valid user ID proceed
// anonymously and are rejected by the gate.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := uuid.Parse(r.Header.Get("X-User-Id")); err == nil {
			ctx := usage.SetIdentityToContext(r.Context(), usage.Identity{
				ID:    userID,
				Email: r.Header.Get("X-User-Email"),
				Role:  r.Header.Get("X-User-Role"),
			})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func usageHandler(svc *usage.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := usage.GetIdentityFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		report, err := svc.AllUsage(r.Context(), identity.ID)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service temporarily unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// meteredHandler stands in for the real metered actions (AI generation,
// uploads, exports), which are performed by services outside this module.
// The gate middleware has already allowed the request; consumption is
// recorded only after the action succeeds.
func meteredHandler(svc *usage.Service, log *slog.Logger, f plan.Feature) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _ := usage.GetIdentityFromContext(r.Context())

		if err := performAction(r.Context(), f); err != nil {
			// Failed actions must not consume quota.
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream action failed"})
			return
		}

		if err := svc.IncrementUsage(r.Context(), identity.ID, f); err != nil {
			// Best effort: the action already succeeded, a lost increment is
			// logged inside the service and the response stays 200.
			log.WarnContext(r.Context(), "usage not recorded", slog.String("feature", string(f)))
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "feature": f})
	}
}

func performAction(ctx context.Context, _ plan.Feature) error {
	// Placeholder for the external side effect.
	return ctx.Err()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

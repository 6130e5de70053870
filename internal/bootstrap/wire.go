package bootstrap

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/application/reset"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/audit"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/real-time-ressys/services/reset-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/infrastructure/stytch"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/tracing"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/router"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/views"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitmq_pub.Options) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type Publisher interface {
	reset.EventPublisher
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return nil, nil, errNoConfig
	}
	lg := logger.Logger

	var cleanupFns []func()

	// 1) tracing
	tp, err := tracing.Init(context.Background(), tracing.Config{
		OTLPEndpoint: cfg.OTelEndpoint,
		Insecure:     cfg.OTelInsecure,
		Enabled:      cfg.OTelEnabled,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: %w", err)
	}
	if tp.Enabled() {
		lg.Info().Str("endpoint", cfg.OTelEndpoint).Msg("tracing enabled")
		cleanupFns = append(cleanupFns, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		})
	}

	// 2) provider client, built lazily on first use
	accessor := stytch.NewAccessor(stytch.Settings{
		ProjectID: cfg.StytchProjectID,
		Secret:    cfg.StytchSecret,
		Env:       cfg.StytchEnv,
		BaseURL:   cfg.StytchBaseURL,
		Timeout:   cfg.StytchTimeout,
	}, lg)
	if !cfg.StytchConfigured() {
		lg.Warn().Msg("stytch credentials missing; reset submissions will report a configuration error")
	}
	providers := reset.ProviderFunc(func() (reset.Provider, error) {
		c, err := accessor.Get()
		if err != nil {
			return nil, err
		}
		return c, nil
	})

	// 3) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(context.Background()); err != nil {
			lg.Warn().Err(err).Msg("redis unavailable; using in-process rate limit and dedupe")
			_ = c.Close()
		} else {
			lg.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	var deduper reset.WebhookDeduper
	if redisCli != nil {
		deduper = redis.NewWebhookDeduper(redisCli)
	} else {
		deduper = memory.NewWebhookDeduper()
	}

	// 4) publisher
	var pub reset.EventPublisher
	switch {
	case cfg.RabbitURL == "":
		lg.Warn().Msg("RABBIT_URL not set; using noop publisher")
		pub = memory.NewNoopPublisher(lg)
	default:
		p, err := deps.NewPublisher(rabbitmq_pub.Options{
			URL:        cfg.RabbitURL,
			Exchange:   cfg.RabbitExchange,
			RoutingKey: cfg.RabbitRoutingKey,
		})
		if err != nil {
			if cfg.IsProd() {
				runCleanup(cleanupFns)
				return nil, nil, fmt.Errorf("rabbitmq: %w", err)
			}
			lg.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher(lg)
		} else {
			pub = p
			cleanupFns = append(cleanupFns, func() { _ = p.Close() })
		}
	}

	// 5) service
	auditLog := audit.New(lg)
	svc := reset.NewService(
		providers,
		reset.Config{
			StrengthCheck: cfg.StytchStrengthCheck,
			RedirectURL:   cfg.ResetRedirectURL,
			LinkExpiry:    cfg.ResetExpiration,
			DedupeTTL:     cfg.WebhookDedupeTTL,
		},
		reset.WithClassifier(stytch.Classify),
		reset.WithPublisher(pub),
		reset.WithDeduper(deduper),
		reset.WithAuditor(auditLog),
	)

	// 6) handlers + middleware
	renderer, err := views.NewRenderer()
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	checks := map[string]handlers.ReadinessCheck{
		"provider": func(context.Context) error {
			_, err := accessor.Get()
			return err
		},
	}
	if redisCli != nil {
		checks["redis"] = redisCli.Ping
	}

	csrfKey := cfg.CSRFKey
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			runCleanup(cleanupFns)
			return nil, nil, fmt.Errorf("csrf key: %w", err)
		}
		lg.Warn().Msg("CSRF_KEY not set; generated an ephemeral key")
	}

	var verifier *middleware.WebhookVerifier
	if cfg.WebhookSecret != "" {
		verifier, err = middleware.NewWebhookVerifier(cfg.WebhookSecret, cfg.WebhookTolerance)
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	} else {
		lg.Warn().Msg("STYTCH_WEBHOOK_SECRET not set; webhook signatures are not verified")
	}

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:  handlers.NewHealthHandler(checks),
		Reset:   handlers.NewResetHandler(svc, renderer),
		Webhook: handlers.NewWebhookHandler(svc),

		Static:  views.StaticHandler(),
		Metrics: promhttp.Handler(),

		CSRFMW: middleware.CSRF(middleware.CSRFConfig{
			Key:    csrfKey,
			Secure: cfg.IsProd(),
		}, renderer.WriteError),
		FormRLMW:  formRateLimit(cfg, redisCli, renderer),
		WebhookMW: middleware.VerifyWebhook(verifier, auditLog.WebhookRejected),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

const formRouteKey = "reset.form"

// formRateLimit prefers the shared Redis window and falls back to per-process httprate.
func formRateLimit(cfg *config.Config, rdb *redis.Client, view *views.Renderer) func(http.Handler) http.Handler {
	if !cfg.RLEnabled {
		return nil
	}
	if rdb != nil {
		return middleware.RateLimitFixedWindow(
			redis.NewFixedWindowLimiter(rdb),
			middleware.FixedWindowConfig{
				RouteKey: formRouteKey,
				Limit:    cfg.RLLimit,
				Window:   cfg.RLWindow,
			},
			view.WriteError,
		)
	}
	return httprate.Limit(
		cfg.RLLimit,
		cfg.RLWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			middleware.RateLimitedTotal.WithLabelValues(formRouteKey).Inc()
			view.WriteError(w, r, domain.ErrRateLimited(formRouteKey))
		}),
	)
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewRedis:   redis.New,
		NewPublisher: func(opts rabbitmq_pub.Options) (Publisher, error) {
			p, err := rabbitmq_pub.NewPublisher(opts)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

var errNoConfig = errors.New("bootstrap: nil config")

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Package main is the entrypoint for the Organizai API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"

	"github.com/organizai/organizai/internal/assistant"
	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/benchmark"
	"github.com/organizai/organizai/internal/billing"
	"github.com/organizai/organizai/internal/cache"
	"github.com/organizai/organizai/internal/config"
	"github.com/organizai/organizai/internal/gamification"
	"github.com/organizai/organizai/internal/handler"
	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/middleware"
	"github.com/organizai/organizai/internal/repository"
	"github.com/organizai/organizai/internal/search"
	"github.com/organizai/organizai/internal/server"
	"github.com/organizai/organizai/internal/service"
)

// handlers groups everything the router mounts.
type handlers struct {
	root         *handler.Handler
	health       *handler.HealthHandler
	metrics      *handler.MetricsHandler
	auth         *handler.AuthHandler
	accounts     *handler.AccountHandler
	categories   *handler.CategoryHandler
	transactions *handler.TransactionHandler
	budgets      *handler.BudgetHandler
	goals        *handler.GoalHandler
	debts        *handler.DebtHandler
	investments  *handler.InvestmentHandler
	dividends    *handler.DividendHandler
	retirement   *handler.RetirementHandler
	rules        *handler.RuleHandler
	alerts       *handler.AlertHandler
	support      *handler.SupportHandler
	settings     *handler.SettingsHandler
	gamification *handler.GamificationHandler
	dashboard    *handler.DashboardHandler
	assistant    *handler.AssistantHandler
	billing      *handler.BillingHandler
	benchmarks   *handler.BenchmarkHandler
	admin        *handler.AdminHandler
}

func main() {
	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Apply schema migrations before serving
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.PoolOptions())
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	recorder := metrics.NewPrometheus()
	jwt := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	sealer := auth.NewSealer(cfg.SettingsEncryptionKey)
	events := gamification.NewPublisher(cacheClient.Client(), logger, recorder)

	// Provider clients
	successURL, cancelURL := cfg.CheckoutURLs()
	stripeClient := billing.NewClient(billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceID:       cfg.StripePriceID,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	llm := assistant.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel)
	tavily := search.NewClient(cfg.TavilyBaseURL, cfg.TavilyAPIKey)
	fetcher := benchmark.NewFetcher(cfg.MarketDataBaseURL, cacheClient)

	// Initialize services
	authService := service.NewAuthService(repo, cacheClient, jwt, logger)
	budgetService := service.NewBudgetService(repo, cacheClient, events, cacheClient, logger)
	dashboardService := service.NewDashboardService(repo, budgetService, cacheClient, logger)
	settingsService := service.NewSettingsService(repo, sealer, logger)

	h := &handlers{
		root:         handler.New(),
		health:       handler.NewHealthHandler(repo, cacheClient),
		metrics:      handler.NewMetricsHandler(recorder),
		auth:         handler.NewAuthHandler(authService, logger),
		accounts:     handler.NewAccountHandler(service.NewAccountService(repo, cacheClient), logger),
		categories:   handler.NewCategoryHandler(service.NewCategoryService(repo, cacheClient), logger),
		transactions: handler.NewTransactionHandler(service.NewTransactionService(repo, budgetService, events, cacheClient, recorder, logger), logger),
		budgets:      handler.NewBudgetHandler(budgetService, logger),
		goals:        handler.NewGoalHandler(service.NewGoalService(repo, events, cacheClient, logger), logger),
		debts:        handler.NewDebtHandler(service.NewDebtService(repo, events, cacheClient), logger),
		investments:  handler.NewInvestmentHandler(service.NewInvestmentService(repo, events, cacheClient), logger),
		dividends:    handler.NewDividendHandler(service.NewDividendService(repo), logger),
		retirement:   handler.NewRetirementHandler(service.NewRetirementService(repo), logger),
		rules:        handler.NewRuleHandler(service.NewRuleService(repo), logger),
		alerts:       handler.NewAlertHandler(service.NewAlertService(repo, cacheClient), logger),
		support:      handler.NewSupportHandler(service.NewSupportService(repo), logger),
		settings:     handler.NewSettingsHandler(settingsService, logger),
		gamification: handler.NewGamificationHandler(service.NewGamificationService(repo, cacheClient, logger), logger),
		dashboard:    handler.NewDashboardHandler(dashboardService, logger),
		assistant: handler.NewAssistantHandler(
			service.NewChatService(llm, settingsService, dashboardService, recorder, logger),
			service.NewSearchService(tavily, settingsService, recorder, logger),
			logger,
		),
		billing:    handler.NewBillingHandler(service.NewBillingService(stripeClient, repo, recorder, logger), logger),
		benchmarks: handler.NewBenchmarkHandler(service.NewBenchmarkService(fetcher, cfg.RiskFreeRate, recorder, logger), logger),
		admin:      handler.NewAdminHandler(service.NewAdminService(repo, cacheClient, logger), logger),
	}

	// Setup router
	r := setupRouter(h, jwt, authService, cacheClient, recorder, cfg, logger)

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if cfg.GamificationWorkerEnabled {
		worker := gamification.NewWorker(cacheClient.Client(), repo, cacheClient, logger, recorder, gamification.WorkerConfig{})
		srv.Go("gamification-worker", worker.Run)
		srv.OnShutdown("gamification-worker", worker.Shutdown)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"billing_enabled", cfg.BillingEnabled(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	if cfg.LogFormat == "text" {
		h = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handlers,
	tokens middleware.TokenValidator,
	bans middleware.BanChecker,
	limiter middleware.Limiter,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))

	// Health and meta endpoints (no auth required)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)
	r.Get("/", h.root.Info)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
		Bans:   bans,
	}

	ipLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:   logger,
		Limiter:  limiter,
		Metrics:  recorder,
		Enabled:  cfg.RateLimitEnabled,
		Scope:    "api",
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	})
	aiLimit := middleware.RateLimitUser(middleware.RateLimitConfig{
		Logger:   logger,
		Limiter:  limiter,
		Metrics:  recorder,
		Enabled:  cfg.RateLimitEnabled,
		Scope:    "ai",
		Requests: cfg.RateLimitAIRequests,
		Window:   cfg.RateLimitAIWindow,
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ipLimit)

		// Stripe posts raw signed payloads
		r.Post("/billing/webhook", h.billing.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
			r.Use(middleware.RequireJSON)

			r.Post("/auth/register", h.auth.Register)
			r.Post("/auth/login", h.auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authCfg))
				mountUserRoutes(r, h, aiLimit)

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/users", h.admin.ListUsers)
					r.Get("/bans", h.admin.ListBans)
					r.Post("/bans", h.admin.Ban)
					r.Delete("/bans/{userID}", h.admin.Unban)
					r.Get("/support", h.support.ListAll)
					r.Post("/support/{id}/respond", h.support.Respond)
				})
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.root.NotFound)
	r.MethodNotAllowed(h.root.MethodNotAllowed)

	return r
}

// mountUserRoutes registers the authenticated per-user API.
func mountUserRoutes(r chi.Router, h *handlers, aiLimit func(next http.Handler) http.Handler) {
	r.Get("/me", h.auth.Me)
	r.Patch("/me", h.auth.UpdateProfile)

	r.Get("/dashboard", h.dashboard.Get)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.accounts.List)
		r.Post("/", h.accounts.Create)
		r.Get("/{id}", h.accounts.Get)
		r.Patch("/{id}", h.accounts.Update)
		r.Delete("/{id}", h.accounts.Delete)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.categories.List)
		r.Post("/", h.categories.Create)
		r.Patch("/{id}", h.categories.Update)
		r.Delete("/{id}", h.categories.Delete)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.transactions.List)
		r.Post("/", h.transactions.Create)
		r.Get("/recurring", h.transactions.Recurring)
		r.Get("/{id}", h.transactions.Get)
		r.Patch("/{id}", h.transactions.Update)
		r.Delete("/{id}", h.transactions.Delete)
	})

	r.Route("/budgets", func(r chi.Router) {
		r.Get("/", h.budgets.List)
		r.Post("/", h.budgets.Create)
		r.Get("/status", h.budgets.Status)
		r.Get("/{id}", h.budgets.Get)
		r.Patch("/{id}", h.budgets.Update)
		r.Delete("/{id}", h.budgets.Delete)
	})

	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.goals.List)
		r.Post("/", h.goals.Create)
		r.Get("/{id}", h.goals.Get)
		r.Patch("/{id}", h.goals.Update)
		r.Delete("/{id}", h.goals.Delete)
		r.Get("/{id}/contributions", h.goals.ListContributions)
		r.Post("/{id}/contributions", h.goals.AddContribution)
	})

	r.Route("/debts", func(r chi.Router) {
		r.Get("/", h.debts.List)
		r.Post("/", h.debts.Create)
		r.Get("/payoff-plan", h.debts.PayoffPlan)
		r.Get("/{id}", h.debts.Get)
		r.Patch("/{id}", h.debts.Update)
		r.Delete("/{id}", h.debts.Delete)
		r.Get("/{id}/payments", h.debts.ListPayments)
		r.Post("/{id}/payments", h.debts.AddPayment)
	})

	r.Route("/investments", func(r chi.Router) {
		r.Get("/", h.investments.List)
		r.Post("/", h.investments.Create)
		r.Get("/summary", h.investments.Summary)
		r.Get("/{id}", h.investments.Get)
		r.Patch("/{id}", h.investments.Update)
		r.Delete("/{id}", h.investments.Delete)
		r.Get("/{id}/returns", h.investments.ListReturns)
		r.Post("/{id}/returns", h.investments.AddReturn)
	})

	r.Route("/dividends", func(r chi.Router) {
		r.Get("/", h.dividends.List)
		r.Post("/", h.dividends.Create)
		r.Get("/summary", h.dividends.Summary)
		r.Patch("/{id}", h.dividends.Update)
		r.Delete("/{id}", h.dividends.Delete)
	})

	r.Route("/retirement", func(r chi.Router) {
		r.Get("/", h.retirement.Get)
		r.Put("/", h.retirement.Upsert)
		r.Get("/projection", h.retirement.Projection)
	})

	r.Route("/rules", func(r chi.Router) {
		r.Get("/", h.rules.List)
		r.Post("/", h.rules.Create)
		r.Post("/test", h.rules.Test)
		r.Patch("/{id}", h.rules.Update)
		r.Delete("/{id}", h.rules.Delete)
	})

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.alerts.List)
		r.Get("/unread-count", h.alerts.UnreadCount)
		r.Post("/read-all", h.alerts.MarkAllRead)
		r.Post("/{id}/read", h.alerts.MarkRead)
		r.Delete("/{id}", h.alerts.Delete)
	})

	r.Get("/benchmarks", h.benchmarks.Compare)

	r.Route("/support", func(r chi.Router) {
		r.Get("/", h.support.ListMine)
		r.Post("/", h.support.Create)
		r.Get("/{id}", h.support.Get)
	})

	r.Route("/settings/api-keys", func(r chi.Router) {
		r.Get("/", h.settings.List)
		r.Put("/{provider}", h.settings.Upsert)
		r.Delete("/{provider}", h.settings.Delete)
	})

	r.Route("/gamification", func(r chi.Router) {
		r.Get("/profile", h.gamification.Profile)
		r.Get("/achievements", h.gamification.Achievements)
		r.Get("/leaderboard", h.gamification.Leaderboard)
	})

	r.With(aiLimit).Post("/ai/chat", h.assistant.Chat)
	r.With(aiLimit).Post("/ai/search", h.assistant.Search)

	r.Post("/billing/checkout", h.billing.Checkout)
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/httplog/v3"
	"github.com/spf13/pflag"
	"github.com/wellpass/wellpass-backend/internal/config"
	"github.com/wellpass/wellpass-backend/internal/domain/auth"
	"github.com/wellpass/wellpass-backend/internal/domain/checkin"
	"github.com/wellpass/wellpass-backend/internal/domain/company"
	"github.com/wellpass/wellpass-backend/internal/domain/invoice"
	"github.com/wellpass/wellpass-backend/internal/domain/partner"
	"github.com/wellpass/wellpass-backend/internal/domain/plan"
	"github.com/wellpass/wellpass-backend/internal/domain/user"
	"github.com/wellpass/wellpass-backend/internal/fixtures"
	appHTTP "github.com/wellpass/wellpass-backend/internal/handler/http"
	"github.com/wellpass/wellpass-backend/internal/handler/http/middleware"
	"github.com/wellpass/wellpass-backend/internal/pkg/cron"
	"github.com/wellpass/wellpass-backend/internal/pkg/database"
	"github.com/wellpass/wellpass-backend/internal/pkg/email"
	"github.com/wellpass/wellpass-backend/internal/pkg/jwt"
	"github.com/wellpass/wellpass-backend/internal/pkg/metrics"
	"github.com/wellpass/wellpass-backend/internal/pkg/oauth"
	"github.com/wellpass/wellpass-backend/internal/pkg/pdf"
	"github.com/wellpass/wellpass-backend/internal/pkg/qrsign"
	"github.com/wellpass/wellpass-backend/internal/pkg/sse"
	"github.com/wellpass/wellpass-backend/internal/pkg/storage"
	"github.com/wellpass/wellpass-backend/internal/repository/memory"
	"github.com/wellpass/wellpass-backend/internal/repository/postgresql"
	analyticsService "github.com/wellpass/wellpass-backend/internal/service/analytics"
	serviceAuth "github.com/wellpass/wellpass-backend/internal/service/auth"
	checkinService "github.com/wellpass/wellpass-backend/internal/service/checkin"
	serviceCompany "github.com/wellpass/wellpass-backend/internal/service/company"
	employeeService "github.com/wellpass/wellpass-backend/internal/service/employee"
	invoiceService "github.com/wellpass/wellpass-backend/internal/service/invoice"
	partnerService "github.com/wellpass/wellpass-backend/internal/service/partner"
	planService "github.com/wellpass/wellpass-backend/internal/service/plan"
	userService "github.com/wellpass/wellpass-backend/internal/service/user"
	"github.com/wellpass/wellpass-backend/migrations"
)

const shutdownTimeout = 15 * time.Second

// newServer returns a server whose request contexts are cancelled once Shutdown starts.
// Shutdown alone waits for SSE streams until its deadline.
func newServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	server.RegisterOnShutdown(cancel)
	return server
}

// stores holds one implementation of every repository plus the transactor that spans them.
type stores struct {
	tx         database.Transactor
	users      user.UserRepository
	companies  company.CompanyRepository
	plans      plan.PlanRepository
	partners   partner.PartnerRepository
	tokens     checkin.TokenRepository
	ledger     checkin.CheckInRepository
	invoices   invoice.InvoiceRepository
	authTokens auth.TokenRepository
	close      func()
}

func main() {
	envFile := pflag.String("env-file", ".env", "env file to load before reading the environment")
	storeDriver := pflag.String("store", "", "repository backend: memory or postgres (overrides STORE_DRIVER)")
	seed := pflag.Bool("seed", false, "load the demo data set at startup (overrides SEED_DEMO_DATA)")
	migrateOnly := pflag.Bool("migrate", false, "apply database migrations and exit")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	if *storeDriver != "" {
		cfg.App.StoreDriver = *storeDriver
	}
	if pflag.CommandLine.Changed("seed") {
		cfg.App.SeedDemo = *seed
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	if err := run(cfg, logger, *migrateOnly); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logFormat := httplog.SchemaECS.Concise(app.Env == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	}))
}

func openStores(ctx context.Context, cfg *config.Config, migrateOnly bool) (*stores, error) {
	switch cfg.App.StoreDriver {
	case config.StoreMemory:
		if migrateOnly {
			return nil, errors.New("--migrate requires the postgres store")
		}
		s := memory.NewStore()
		return &stores{
			tx:         s,
			users:      memory.NewUserRepository(s),
			companies:  memory.NewCompanyRepository(s),
			plans:      memory.NewPlanRepository(s),
			partners:   memory.NewPartnerRepository(s),
			tokens:     memory.NewTokenRepository(s),
			ledger:     memory.NewCheckInRepository(s),
			invoices:   memory.NewInvoiceRepository(s),
			authTokens: memory.NewAuthTokenRepository(s),
			close:      func() {},
		}, nil

	case config.StorePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		applied, err := db.Migrate(ctx, migrations.FS)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("Database ready", "migrations_applied", applied)
		return &stores{
			tx:         postgresql.NewTransactor(db),
			users:      postgresql.NewUserRepository(db),
			companies:  postgresql.NewCompanyRepository(db),
			plans:      postgresql.NewPlanRepository(db),
			partners:   postgresql.NewPartnerRepository(db),
			tokens:     postgresql.NewTokenRepository(db),
			ledger:     postgresql.NewCheckInRepository(db),
			invoices:   postgresql.NewInvoiceRepository(db),
			authTokens: postgresql.NewAuthTokenRepository(db),
			close:      db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.App.StoreDriver)
}

func run(cfg *config.Config, logger *slog.Logger, migrateOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, migrateOnly)
	if err != nil {
		return err
	}
	defer st.close()
	if migrateOnly {
		return nil
	}

	if cfg.App.SeedDemo {
		ds, err := fixtures.Demo()
		if err != nil {
			return err
		}
		if _, err := fixtures.Seed(ctx, fixtures.Repositories{
			Users:     st.users,
			Companies: st.companies,
			Plans:     st.plans,
			Partners:  st.partners,
		}, ds); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	secureCookie := cfg.App.Env == "production"
	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, secureCookie)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("init local storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email: %w", err)
	}

	quota, err := checkinService.NewQuotaCalculator(cfg.CheckIn.QuotaPeriod, cfg.CheckIn.QuotaTimezone)
	if err != nil {
		return fmt.Errorf("init quota: %w", err)
	}
	reportLocation, err := time.LoadLocation(cfg.CheckIn.QuotaTimezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	appMetrics := metrics.New()
	hub := sse.NewHub()
	renderer := pdf.NewMarotoRenderer("Wellpass")

	checkInSvc := checkinService.NewCheckInService(st.tx, checkinService.Repositories{
		Tokens:    st.tokens,
		Ledger:    st.ledger,
		Users:     st.users,
		Plans:     st.plans,
		Partners:  st.partners,
		Companies: st.companies,
	}, qrsign.NewSigner(cfg.CheckIn.TokenSecret), quota,
		checkinService.WithCooldown(cfg.CheckIn.Cooldown),
		checkinService.WithRenderer(renderer),
		checkinService.WithHub(hub),
		checkinService.WithMetrics(appMetrics),
	)
	partnerSvc := partnerService.NewPartnerService(st.partners)
	invoiceSvc := invoiceService.NewInvoiceService(st.invoices, st.companies, st.users, st.plans, renderer, fileStorage)
	authSvc := serviceAuth.NewAuthService(st.tx, st.users, st.companies, st.authTokens, JWTService, emailService, cfg.App.FrontendURL)

	handlers := appHTTP.Handlers{
		Auth:      appHTTP.NewAuthHandler(JWTService, authSvc, googleService, cfg.App.FrontendURL, secureCookie),
		Me:        appHTTP.NewMeHandler(userService.NewUserService(st.users, st.companies, st.plans), checkInSvc, hub),
		Company:   appHTTP.NewCompanyHandler(serviceCompany.NewCompanyService(st.tx, st.companies, st.users)),
		Employee:  appHTTP.NewEmployeeHandler(employeeService.NewEmployeeService(st.tx, st.users, st.companies, st.plans, st.tokens, checkInSvc, hub, emailService, cfg.App.FrontendURL)),
		Invoice:   appHTTP.NewInvoiceHandler(invoiceSvc),
		Partner:   appHTTP.NewPartnerHandler(partnerSvc),
		Plan:      appHTTP.NewPlanHandler(planService.NewPlanService(st.tx, st.plans, st.users)),
		CheckIn:   appHTTP.NewCheckInHandler(checkInSvc),
		Analytics: appHTTP.NewAnalyticsHandler(analyticsService.NewAnalyticsService(st.ledger, st.users, st.companies, reportLocation)),
	}

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		JWTService:     JWTService,
		Membership:     middleware.NewMembershipMiddleware(st.users, st.companies),
		PartnerService: partnerSvc,
		Metrics:        appMetrics,
		Logger:         logger,
		AllowedOrigins: []string{cfg.App.FrontendURL},
		RateLimit:      cfg.RateLimit,
		Mock:           cfg.Mock,
	}, handlers)

	scheduler := cron.NewScheduler(appMetrics.JobRun)
	cron.RegisterCheckInJobs(scheduler, checkInSvc)
	cron.RegisterInvoiceJobs(scheduler, invoiceSvc)
	scheduler.Start()
	defer scheduler.Stop()

	server := newServer(fmt.Sprintf(":%d", cfg.App.Port), router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", server.Addr, "store", cfg.App.StoreDriver, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

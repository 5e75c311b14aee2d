package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/db/migrations"
	"github.com/cmlabs-hris/wfh-backend-go/internal/config"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/wfh-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/postgresql"
	arrangementService "github.com/cmlabs-hris/wfh-backend-go/internal/service/arrangement"
	auditService "github.com/cmlabs-hris/wfh-backend-go/internal/service/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/service/authority"
	delegationService "github.com/cmlabs-hris/wfh-backend-go/internal/service/delegation"
	reportService "github.com/cmlabs-hris/wfh-backend-go/internal/service/report"
	"golang.org/x/sync/errgroup"
)

const Version = "v1.0.0"

// repositories is the storage backend selected by STORAGE_DRIVER.
type repositories struct {
	tx           database.Transactor
	employees    employee.EmployeeRepository
	arrangements arrangement.ArrangementRepository
	audits       audit.AuditRepository
	delegations  delegation.DelegationRepository
	reports      report.ReportRepository
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(appHTTP.NewLogger(os.Stdout, cfg.App.SlogLevel(), cfg.App.Env, Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	var recorder metrics.Recorder = metrics.Nop{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		m := metrics.New()
		recorder = m
		metricsHandler = m.Handler()
	}

	// One lock manager serializes arrangement and delegation commands.
	locks := lock.NewManager(cfg.Lock.WaitTimeout)
	resolver := authority.NewResolver(repos.employees, repos.delegations)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	arrangementSvc := arrangementService.NewArrangementService(repos.tx, locks, resolver, recorder, repos.arrangements, repos.audits, repos.employees)
	delegationSvc := delegationService.NewDelegationService(repos.tx, locks, resolver, recorder, repos.delegations, repos.employees)
	auditSvc := auditService.NewAuditService(repos.audits, repos.arrangements, repos.employees, arrangementSvc)
	reportSvc := reportService.NewReportService(repos.reports, repos.employees)

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			Env:            cfg.App.Env,
			Version:        Version,
			LogLevel:       cfg.App.SlogLevel(),
			Metrics:        metricsHandler,
		},
		appHTTP.NewArrangementHandler(arrangementSvc),
		appHTTP.NewDelegationHandler(delegationSvc),
		appHTTP.NewAuditHandler(auditSvc),
		appHTTP.NewReportHandler(reportSvc),
	)

	scheduler := cron.NewScheduler()
	if cfg.Metrics.Enabled {
		cron.NewStatsJobs(repos.reports, recorder).RegisterJobs(scheduler, cfg.Metrics.StatsRefreshInterval)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		store := memory.NewStore()
		repos := repositories{
			tx:           store,
			employees:    memory.NewEmployeeRepository(store),
			arrangements: memory.NewArrangementRepository(store),
			audits:       memory.NewAuditRepository(store),
			delegations:  memory.NewDelegationRepository(store),
			reports:      memory.NewReportRepository(store),
			close:        func() {},
		}
		org, err := fixtures.SeedOrg(ctx, repos.employees, fixtures.DefaultOrg)
		if err != nil {
			return repositories{}, fmt.Errorf("seed organisation: %w", err)
		}
		for _, m := range fixtures.DefaultOrg {
			slog.Info("Seeded employee", "key", m.Key, "role", m.Role, "employee_id", org.ID(m.Key))
		}
		return repos, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{})
	if err != nil {
		return repositories{}, fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if _, err := database.Migrate(ctx, db, migrations.Files); err != nil {
			db.Close()
			return repositories{}, fmt.Errorf("migrate: %w", err)
		}
	}

	return repositories{
		tx:           postgresql.NewTransactor(db, cfg.Lock.WaitTimeout),
		employees:    postgresql.NewEmployeeRepository(db),
		arrangements: postgresql.NewArrangementRepository(db),
		audits:       postgresql.NewAuditRepository(db),
		delegations:  postgresql.NewDelegationRepository(db),
		reports:      postgresql.NewReportRepository(db),
		close:        db.Close,
	}, nil
}

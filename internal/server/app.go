// Package server wires the playground server together: it opens the control
// database, applies migrations, builds the services and runs the REST and
// gRPC endpoints until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aditya-creator173/SQL-Compiler/internal/dbx"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/config"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/httpapi"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/metrics"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/repositories/repomanager"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/services"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
	"golang.org/x/sync/errgroup"

	gs "github.com/Aditya-creator173/SQL-Compiler/internal/server/grpc"
)

const metricsNamespace = "playground"

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	httpServer *httpapi.Server
	grpcServer *gs.GRPCServer
}

// NewApp connects to MySQL, migrates the control tables and builds both
// transports over a shared set of services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, target, err := dbx.OpenMySQL(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewMySQLRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	mx := metrics.New(metricsNamespace)
	engine := sqlexec.NewEngine(db, target.Database, logger)

	authService := services.NewAuthService(db, rm, c)
	tenantService := services.NewTenantService(db, rm, c, logger, mx)
	accounts := services.NewAccountService(authService, tenantService, logger)

	if !c.ExportEnabled() {
		logger.Warn(ctx, "table export disabled, no object storage configured")
	}

	app := &App{config: c, logger: logger, db: db, metrics: mx}

	raw := services.NewRawSQLService(engine, logger, mx)
	block := services.NewBlockSQLService(engine, logger, mx)
	schema := services.NewSchemaService(db, logger)
	export := services.NewExportService(engine, c, logger)

	app.httpServer = httpapi.NewServer(c.EndpointAddrHTTP, logger, httpapi.Backend{
		Accounts: accounts,
		Raw:      raw,
		Block:    block,
		Schema:   schema,
		Export:   export,
	}, mx, c.SecretKey, c.AllowedOrigins)

	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Backend{
		Accounts: accounts,
		Raw:      raw,
		Block:    block,
		Schema:   schema,
		Export:   export,
	}, mx, c.SecretKey)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves both endpoints until a signal arrives or one of them fails,
// then stops the other and closes the pool.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(gctx) })
	g.Go(func() error { return app.grpcServer.Run(gctx) })

	err := g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "closing database", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")

	return err
}

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/mailbox"
	"github.com/shandysiswandi/gotransfer/internal/pkg/messaging"
	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
	"github.com/shandysiswandi/gotransfer/internal/pkg/storage"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
)

// App wires dependencies and manages the lifecycle of one CLI invocation.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	totp      otp.Generator

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	publisher messaging.Publisher
	storage   storage.Storage
	provider  *provider.Client
	dialer    mailbox.Dialer

	// command line
	root   *cobra.Command
	router *command.Router

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initStorage()
	app.initMessaging()
	app.initProvider()
	app.initCommand()
	app.initModules()
	app.initClosers()

	return app
}

// Package bot assembles the chat bot: storage, services, the conversation
// engine, the Telegram transport and the operational HTTP server.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/tokenbot/internal/bot/config"
	"github.com/dmitrijs2005/tokenbot/internal/bot/flows"
	"github.com/dmitrijs2005/tokenbot/internal/bot/httpapi"
	"github.com/dmitrijs2005/tokenbot/internal/bot/observability"
	"github.com/dmitrijs2005/tokenbot/internal/bot/remote"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/inmemory"
	"github.com/dmitrijs2005/tokenbot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/tokenbot/internal/bot/services"
	"github.com/dmitrijs2005/tokenbot/internal/bot/storage"
	"github.com/dmitrijs2005/tokenbot/internal/bot/transport/telegram"
	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/conversation"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
)

const (
	metricsNamespace = "tokenbot"
	janitorInterval  = time.Minute
	// Must outlast the long-poll timeout.
	telegramHTTPTimeout = 90 * time.Second
)

var (
	openPostgres = repomanager.Open
	newTelegram  = telegram.New
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	metrics  *observability.Metrics
	sessions *conversation.Manager
	engine   *conversation.Engine
	telegram *telegram.Bot
	http     *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, repos, err := openStore(ctx, c.DatabaseDSN, logger)
	if err != nil {
		return nil, err
	}

	app, err := build(ctx, c, logger, db, repos)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	return app, nil
}

// openStore connects to PostgreSQL and migrates it. Without a DSN the bot
// keeps its data in memory.
func openStore(ctx context.Context, dsn string, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	if dsn == "" {
		logger.Warn(ctx, "no database configured, data will not survive a restart")
		return nil, inmemory.NewRepositoryManager(), nil
	}

	db, err := openPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migrations: %w", err)
	}
	return db, m, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, repos repomanager.RepositoryManager) (*App, error) {
	metrics := observability.NewMetrics(metricsNamespace)

	photos, err := storage.NewPhotoStore(c.PhotoDir)
	if err != nil {
		return nil, err
	}

	var archive services.PhotoArchive
	if c.S3Bucket != "" {
		a, err := storage.NewS3Archive(ctx, storage.S3Config{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		archive = a
	}

	client := remote.NewClient(c.AccountURL, c.RefundURL, c.UserAgent, c.RemoteTimeout)
	users := services.NewUserService(db, repos, services.NewAllowList(c.AdminIDs))
	accounts := services.NewAccountService(db, repos, client, metrics, logger)
	refunds := services.NewRefundService(db, repos, client, archive, metrics, logger)

	tg, err := newTelegram(c.TelegramToken, &http.Client{Timeout: telegramHTTPTimeout}, logger)
	if err != nil {
		return nil, err
	}

	sessions := conversation.NewManager(c.SessionTimeout)
	engine := conversation.NewEngine(sessions, logger)
	handlers := flows.Register(engine, flows.Deps{
		Messenger: tg,
		Users:     users,
		Accounts:  accounts,
		Refunds:   refunds,
		Photos:    photos,
		Metrics:   metrics,
		Logger:    logger,
	})
	sessions.SetExpireHook(handlers.Expired)

	if c.JWTSecret == "" {
		logger.Warn(ctx, "no jwt secret configured, admin api disabled")
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		metrics:  metrics,
		sessions: sessions,
		engine:   engine,
		telegram: tg,
		http:     httpapi.New(c.HTTPAddr, users, sessions, metrics, logger, c.JWTSecret),
	}, nil
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

// Run serves chat updates and HTTP until a signal arrives or either server
// fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.sessions.StartJanitor(ctx, janitorInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.http.Run(ctx)
	})
	g.Go(func() error {
		return app.telegram.Run(ctx, meteredDispatcher{app.engine, app.sessions, app.metrics}, app.config.Workers, app.metrics)
	})

	err := g.Wait()
	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "db close failed", "error", cerr)
		}
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// meteredDispatcher keeps the active-session gauge current.
type meteredDispatcher struct {
	engine   *conversation.Engine
	sessions *conversation.Manager
	metrics  *observability.Metrics
}

func (d meteredDispatcher) Dispatch(ctx context.Context, ev chat.Event) error {
	err := d.engine.Dispatch(ctx, ev)
	d.metrics.ActiveSessions.Set(float64(d.sessions.ActiveCount()))
	return err
}

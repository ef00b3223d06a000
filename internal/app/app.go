package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/config"
	"github.com/BuzzLyutic/todo-api/internal/handler"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
)

type App struct {
	config config.Config
	logger *zap.Logger
	repo   repo.TodoRepository
	server *http.Server

	mu   sync.Mutex
	addr string
}

func New(cfg config.Config, logger *zap.Logger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Init connects the configured store and builds the HTTP server.
func (a *App) Init(ctx context.Context) error {
	r, err := OpenRepository(ctx, a.config)
	if err != nil {
		return fmt.Errorf("open %s store: %w", a.config.Store.Driver, err)
	}
	a.repo = r
	a.logger.Info("store connected", zap.String("driver", a.config.Store.Driver))

	todoService := service.NewTodoService(a.repo)
	todoHandler := handler.NewTodoHandler(todoService, a.logger)

	a.server = &http.Server{
		Addr: a.config.Addr(),
		Handler: handler.NewRouter(todoHandler, handler.RouterConfig{
			ServiceName:   a.config.Server.ServiceName,
			AllowedOrigin: a.config.Server.ClientOrigin,
			Logger:        a.logger,
		}),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts the server down and closes the store.
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("app: Run called before Init")
	}

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.closeRepo()
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	a.mu.Lock()
	a.addr = ln.Addr().String()
	a.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server started", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("shutdown: %w", err))
	}
	if err := a.repo.Close(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("close store: %w", err))
	}
	if runErr == nil {
		a.logger.Info("server stopped")
	}
	return runErr
}

// Addr is the bound listen address, empty until Run has started listening.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addr
}

func (a *App) closeRepo() {
	if err := a.repo.Close(context.Background()); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
}

// OpenRepository connects the engine selected by cfg.Store.Driver.
// The postgres engine is migrated before it is returned.
func OpenRepository(ctx context.Context, cfg config.Config) (repo.TodoRepository, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return repo.NewMemoryRepo(), nil
	case config.DriverMongo:
		r, err := repo.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.DriverPostgres:
		r, err := repo.ConnectPostgres(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return nil, err
		}
		if err := r.Migrate(ctx); err != nil {
			r.Close(ctx)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

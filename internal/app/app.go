package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/scorekeeper/internal/config"
	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/infrastructure/recorder"
	cacherepo "github.com/riskibarqy/scorekeeper/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/scorekeeper/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/scorekeeper/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/scorekeeper/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/scorekeeper/internal/platform/cache"
	idgen "github.com/riskibarqy/scorekeeper/internal/platform/id"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/scorekeeper/internal/platform/metrics"
	"github.com/riskibarqy/scorekeeper/internal/usecase"
)

// App is the wired service. Shutdown releases everything New acquired.
type App struct {
	Server  *http.Server
	Session *usecase.MatchSession

	logger   *logging.Logger
	hub      *httpapi.StreamHub
	recorder *recorder.Async
	db       *sqlx.DB
}

type storage struct {
	matches matchrecord.Repository
	active  matchrecord.ActiveStateRepository
	db      *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	logger = logging.OrDefault(logger)
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var recorderMetrics *metrics.Recorder
	if cfg.MetricsEnabled {
		recorderMetrics = metrics.NewRecorder(true)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	matchRepo := store.matches
	if cfg.CacheEnabled {
		matchRepo = cacherepo.NewMatchRepository(matchRepo, basecache.NewStore(cfg.CacheTTL))
	}

	asyncRecorder, err := recorder.NewAsync(matchRepo, recorder.Config{
		Workers:     cfg.RecorderWorkers,
		SaveTimeout: cfg.RecorderSaveTimeout,
	}, recorderMetrics, logger)
	if err != nil {
		closeDB(store.db, logger)
		return nil, fmt.Errorf("create match recorder: %w", err)
	}

	session := usecase.NewMatchSession(cfg.DefaultRules, idgen.NewUUIDGenerator(), asyncRecorder, store.active, logger.Named("session"))
	hub := httpapi.NewStreamHub(httpapi.StreamHubConfig{
		SendBuffer:     cfg.WSSendBuffer,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, recorderMetrics, logger)

	session.AddObserver(usecase.NewActiveStatePersister(store.active, cfg.ActiveSaveTimeout, logger))
	session.AddObserver(hub)
	if recorderMetrics != nil {
		session.AddObserver(usecase.NewMetricsObserver(recorderMetrics))
	}

	restored, err := session.Restore(ctx)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "restore active match failed, starting empty", "error", err)
	case restored:
		logger.InfoContext(ctx, "resumed active match")
	}

	routerCfg := httpapi.RouterConfig{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if recorderMetrics != nil {
		routerCfg.MetricsHandler = recorderMetrics.Handler()
	}

	handler := httpapi.NewHandler(session, usecase.NewHistoryService(matchRepo), hub, logger)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, routerCfg, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:   server,
		Session:  session,
		logger:   logger,
		hub:      hub,
		recorder: asyncRecorder,
		db:       store.db,
	}, nil
}

// Shutdown stops accepting requests, disconnects stream clients, drains
// pending match saves and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	a.hub.Close()
	if err := a.recorder.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close match recorder: %w", err))
	}
	closeDB(a.db, a.logger)
	return errors.Join(errs...)
}

func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return storage{}, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
		}
		logger.Info("storage ready", "driver", config.StoragePostgres, "db_name", dbNameFromDSN(cfg.DBURL))
		return storage{
			matches: postgres.NewMatchRepository(db),
			active:  postgres.NewActiveStateRepository(db),
			db:      db,
		}, nil
	default:
		logger.Info("storage ready", "driver", config.StorageMemory)
		return storage{
			matches: memory.NewMatchRepository(),
			active:  memory.NewActiveStateRepository(),
		}, nil
	}
}

func closeDB(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn("close database failed", "error", err)
	}
}

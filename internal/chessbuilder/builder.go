package chessbuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/api"
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/gamestore"
	"github.com/park285/cheese-chess/internal/match"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/notify"
)

type Deps struct {
	Manager *match.Manager
	Server  *api.Server
	Store   gamestore.Store
	Archive gamestore.Archive
	Catalog *msgcat.Catalog

	redis    *redis.Client
	postgres *gamestore.PostgresArchive
	ws       *notify.WSPublisher
}

// New wires the store, archive, publishers, catalog, rules, manager and HTTP server from cfg.
// Redis and Postgres are optional: without REDIS_URL games live in memory, without
// DATABASE_URL finished games are archived in memory.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (deps *Deps, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps = &Deps{}
	defer func() {
		if err != nil {
			deps.Close(context.Background())
			deps = nil
		}
	}()

	deps.Catalog, err = msgcat.New(cfg.MessagesDir)
	if err != nil {
		return deps, fmt.Errorf("load messages: %w", err)
	}

	// Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		deps.redis, err = gamestore.DialRedis(dctx, cfg.RedisURL)
		cancel()
		if err != nil {
			return deps, fmt.Errorf("init redis: %w", err)
		}
		deps.Store = gamestore.NewRedisStore(deps.redis, cfg.GameTTL())
		logger.Info("store_redis", zap.Duration("ttl", cfg.GameTTL()))
	} else {
		deps.Store = gamestore.NewMemoryStore()
		logger.Info("store_memory")
	}

	// Archive
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, oerr := gamestore.OpenPostgres(ctx, cfg.DatabaseURL)
		if oerr != nil {
			return deps, fmt.Errorf("init postgres: %w", oerr)
		}
		deps.postgres = gamestore.NewPostgresArchive(db)
		sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = deps.postgres.EnsureSchema(sctx)
		cancel()
		if err != nil {
			return deps, fmt.Errorf("ensure schema: %w", err)
		}
		deps.Archive = deps.postgres
		logger.Info("archive_postgres")
	} else {
		deps.Archive = gamestore.NewMemoryArchive()
		logger.Info("archive_memory")
	}

	// Notifications
	headers := notify.StaticHeaders(map[string]string{
		"X-User-ID":    cfg.XUserID,
		"X-Session-ID": cfg.XSessionID,
	})
	var pubs []notify.Publisher
	if deps.redis != nil {
		pubs = append(pubs, notify.NewRedisPublisher(deps.redis, cfg.NotifyChannelPrefix))
	}
	if cfg.NotifyWebhookURL != "" {
		pubs = append(pubs, notify.NewWebhookPublisher(cfg.NotifyWebhookURL,
			notify.WithTimeout(cfg.NotifyTimeout()),
			notify.WithRetry(cfg.NotifyRetry),
			notify.WithHeaderProvider(headers),
		))
	}
	if cfg.NotifyWSURL != "" {
		deps.ws = notify.NewWSPublisher(cfg.NotifyWSURL, logger,
			notify.WithWSHeaders(headers),
			notify.WithWriteTimeout(cfg.NotifyTimeout()),
		)
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if cerr := deps.ws.Connect(cctx); cerr != nil {
			logger.Warn("notify_ws_connect_error", zap.String("url", cfg.NotifyWSURL), zap.Error(cerr))
		}
		cancel()
		pubs = append(pubs, deps.ws)
	}
	fanout := notify.NewFanout(logger, pubs...)
	logger.Info("notify_publishers", zap.Int("count", fanout.Len()))

	rules := chess.NewRules(chess.WithHistoryLimit(cfg.ChessHistoryLimit))
	deps.Manager = match.NewManager(deps.Store, deps.Archive, rules,
		match.WithPublisher(fanout),
		match.WithCatalog(deps.Catalog),
		match.WithLogger(logger),
	)
	deps.Server, err = api.NewServer(deps.Manager, deps.Catalog, api.WithLogger(logger))
	if err != nil {
		return deps, err
	}
	return deps, nil
}

// Close releases the connections opened by New. It is safe on a partially built Deps.
func (d *Deps) Close(ctx context.Context) {
	if d == nil {
		return
	}
	if d.ws != nil {
		_ = d.ws.Close(ctx)
	}
	if d.postgres != nil {
		_ = d.postgres.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

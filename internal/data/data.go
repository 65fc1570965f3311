package data

import (
	"context"
	"database/sql"

	"assetguard/internal/biz"
	"assetguard/internal/conf"
	"assetguard/internal/pkg/store"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewRedisCache,
	NewAssetRepo,
	NewBlocklistRepo,
	NewDigestFilter,
	NewJudge,
	NewContentStore,
	NewDedupEngine,
	wire.Bind(new(biz.ContentStore), new(*store.Chain)),
)

// Data struct for db client
type Data struct {
	Pool *pgxpool.Pool // queries
	DB   *sql.DB       // database/sql for migrations
}

// NewData new a data instance
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	log := log.NewHelper(logger)
	ctx := context.Background()

	pgxConfig, err := newPgxPoolConfig(c)
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	if err := RunMigrate(c, db); err != nil {
		pool.Close()
		db.Close()
		return nil, nil, err
	}
	log.Info("database migrations applied")

	cleanup := func() {
		log.Info("closing db connections")
		pool.Close()
		db.Close()
	}

	return &Data{
		Pool: pool,
		DB:   db,
	}, cleanup, nil
}

// newPgxPoolConfig creates a pgxpool.Config from conf.Data
func newPgxPoolConfig(c *conf.Data) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.Database.Source)
	if err != nil {
		return nil, err
	}
	pool := c.Database.Pool
	if pool == nil {
		return cfg, nil
	}
	if pool.MaxOpenConns > 0 {
		cfg.MaxConns = pool.MaxOpenConns
	}
	if pool.MinIdleConns > 0 {
		cfg.MinConns = pool.MinIdleConns
	}
	if d := pool.MaxConnLifetime.AsDuration(); d > 0 {
		cfg.MaxConnLifetime = d
	}
	if d := pool.MaxConnIdleTime.AsDuration(); d > 0 {
		cfg.MaxConnIdleTime = d
	}
	return cfg, nil
}

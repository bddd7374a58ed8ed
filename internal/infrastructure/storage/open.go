// Package storage construye el kv.Store según KV_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/postgres"
	kvredis "github.com/jhoicas/ferreteria-api/internal/infrastructure/redis"
	"github.com/jhoicas/ferreteria-api/pkg/config"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

// Open abre el almacén configurado. Con postgres aplica antes las migraciones.
// El llamador es dueño del store y debe cerrarlo.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (kv.Store, error) {
	switch cfg.KV.Driver {
	case config.KVDriverMemory:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return kv.NewMemoryStore(), nil

	case config.KVDriverPostgres:
		dsn := cfg.DB.ConnectionString()
		log.Info().Str("dsn", postgres.RedactDSN(dsn)).Msg("conectando a PostgreSQL")
		if err := postgres.Migrate(dsn); err != nil {
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return postgres.NewKVStore(pool), nil

	case config.KVDriverRedis:
		log.Info().Str("url", postgres.RedactDSN(cfg.Redis.URL)).Msg("conectando a Redis")
		rdb, err := kvredis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		return kvredis.NewKVStore(rdb), nil
	}
	return nil, fmt.Errorf("KV_DRIVER desconocido %q", cfg.KV.Driver)
}

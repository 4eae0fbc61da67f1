package snapshot

import (
	"context"
	"fmt"

	"groupstay/internal/ledger"
	"groupstay/pkg/config"
)

// Open returns the store selected by STORE_DRIVER. The mongo driver connects
// through cfg.Client so the connection is closed by cfg.GracefulShutdown.
func Open(ctx context.Context, cfg *config.Config) (ledger.SnapshotStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory, "":
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.PostgresURL)
	case config.DriverMongo:
		if cfg.Client.Mongo == nil {
			cfg.SetMongo()
		}
		return NewMongoStore(cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.WriteTimeout), nil
	case config.DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			Prefix:    cfg.S3Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

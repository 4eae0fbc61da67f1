package main

import (
	"context"
	"time"

	"groupstay/internal/ledger/snapshot"
	mongoMigration "groupstay/internal/migrations/mongo"
	"groupstay/pkg/config"
)

const JobName = "migrate"

// The sql drivers migrate their schema when the store is opened, so the job
// only has to open and close it. Mongo gets its validator and indexes here.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown()
	cfg.Log.Info("Starting migration job", "driver", cfg.StoreDriver)

	switch cfg.StoreDriver {
	case config.DriverMongo:
		cfg.SetMongo()
		if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
			cfg.Log.Fatal("Migration failed", "error", err)
		}
	case config.DriverSQLite, config.DriverPostgres:
		store, err := snapshot.Open(ctx, cfg)
		if err != nil {
			cfg.Log.Fatal("Migration failed", "error", err)
		}
		if err := store.Close(); err != nil {
			cfg.Log.Error("Failed to close store", "error", err)
		}
	default:
		cfg.Log.Info("Driver has no schema to migrate")
		return
	}
	cfg.Log.Info("Migration completed successfully")
}

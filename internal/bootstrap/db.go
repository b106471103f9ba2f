package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/datakamer/datakamer-backend/config"
	"github.com/datakamer/datakamer-backend/internal/catalog/repository"
	"github.com/datakamer/datakamer-backend/internal/storage/sqldb"
)

// OpenStore connects to the configured database and, when enabled, creates
// missing catalog tables.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (*repository.Store, error) {
	db, err := sqldb.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	store := repository.NewStore(db, sqldb.DialectFor(cfg.Driver))

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		log.Printf("[info] schema ready driver=%s", cfg.Driver)
	}
	return store, nil
}

package storage

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/migrate"
	pkgredis "github.com/angelmondragon/storefront/pkg/redis"
)

// Open builds the backend selected by the storage driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Backend, error) {
	driver := cfg.Storage.DriverKind()
	if logg != nil {
		ctx = logg.WithField(ctx, "storage_driver", driver.String())
	}

	switch driver {
	case enums.StorageDriverMemory:
		return NewMemoryBackend(), nil

	case enums.StorageDriverRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, cfg.Storage.Namespace, logg)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client), nil

	case enums.StorageDriverSQLite, enums.StorageDriverPostgres:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewSQLBackend(client, cfg.Storage.Namespace), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

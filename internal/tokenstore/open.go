package tokenstore

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_backoffice/internal/config"
	"github.com/Skotchmaster/restaurant_backoffice/internal/db"
)

// Open builds the store selected by STORE_DRIVER. The returned closer
// releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (Store, io.Closer, error) {
	switch cfg.StoreDriver {
	case "memory":
		return NewMemoryStore(), nopCloser{}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisStore(client, cfg.RedisPrefix), client, nil
	case "sqlite", "postgres":
		var (
			gdb *gorm.DB
			err error
		)
		if cfg.StoreDriver == "postgres" {
			gdb, err = db.OpenPostgres(ctx, cfg.StoreDSN)
		} else {
			gdb, err = db.OpenSQLite(cfg.StorePath)
		}
		if err != nil {
			return nil, nil, err
		}
		store, err := NewGormStore(gdb)
		if err != nil {
			_ = db.Close(gdb)
			return nil, nil, err
		}
		return store, closerFunc(func() error { return db.Close(gdb) }), nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

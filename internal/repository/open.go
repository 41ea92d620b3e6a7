package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskquest/internal/config"
)

// Open returns the gateway selected by cfg.StorageBackend and a function that
// releases whatever Open created. The sqlite backend reuses db when it is not
// nil and opens cfg.DatabaseURL otherwise.
func Open(ctx context.Context, cfg config.Config, db *gorm.DB) (Gateway, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageBackend {
	case config.BackendSQLite, "":
		if db != nil {
			return NewSlotRepository(db, DefaultSlotName), noop, nil
		}
		opened, err := NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() error {
			sqlDB, err := opened.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return NewSlotRepository(opened, DefaultSlotName), closeDB, nil
	case config.BackendRedis:
		slot, err := OpenRedisSlot(ctx, cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot.Close, nil
	case config.BackendFile:
		return NewFileSlot(cfg.StorageFile), noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.StorageBackend)
	}
}

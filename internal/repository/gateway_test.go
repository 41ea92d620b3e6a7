package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskquest/internal/config"
	"taskquest/internal/model"
)

func sampleDocument() *model.Document {
	return &model.Document{Categories: []model.Category{
		{
			ID:         "c1",
			Name:       "Health",
			XP:         6,
			Level:      2,
			ColorOrder: append([]string{}, model.Palette[:]...),
			ColorIndex: 3,
			Tasks: []model.Task{
				{ID: "t1", Text: "Drink water", Done: true, Daily: true, LastCompleted: model.NewDate("2026-10-19"), Color: model.Palette[0]},
				{ID: "t2", Text: "Walk", Color: model.Palette[1]},
			},
		},
		{
			ID:         "c2",
			Name:       "Study",
			Level:      1,
			ColorOrder: append([]string{}, model.Palette[:]...),
			Tasks:      []model.Task{},
		},
	}}
}

type slotFixture struct {
	gateway Gateway
	corrupt func(t *testing.T, blob string)
}

func fixtures(t *testing.T) map[string]slotFixture {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "taskquest.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	filePath := filepath.Join(t.TempDir(), "doc.json")

	return map[string]slotFixture{
		"sqlite": {
			gateway: NewSlotRepository(db, ""),
			corrupt: func(t *testing.T, blob string) {
				require.NoError(t, db.Create(&model.Slot{Name: DefaultSlotName, Blob: blob}).Error)
			},
		},
		"redis": {
			gateway: NewRedisSlot(client, ""),
			corrupt: func(t *testing.T, blob string) {
				require.NoError(t, mr.Set(DefaultRedisKey, blob))
			},
		},
		"file": {
			gateway: NewFileSlot(filePath),
			corrupt: func(t *testing.T, blob string) {
				require.NoError(t, os.WriteFile(filePath, []byte(blob), 0o644))
			},
		},
	}
}

func TestGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, fx := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			got, err := fx.gateway.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, got, "empty slot loads nothing")

			doc := sampleDocument()
			require.NoError(t, fx.gateway.Save(ctx, doc))
			got, err = fx.gateway.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, doc, got)

			doc.Categories = doc.Categories[:1]
			doc.Categories[0].XP = 7
			require.NoError(t, fx.gateway.Save(ctx, doc))
			got, err = fx.gateway.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, doc, got, "last write wins")

			require.NoError(t, fx.gateway.Clear(ctx))
			got, err = fx.gateway.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)
			require.NoError(t, fx.gateway.Clear(ctx), "clearing twice is fine")
		})
	}
}

func TestGatewayCorruptBlob(t *testing.T) {
	ctx := context.Background()
	for name, fx := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			fx.corrupt(t, `{"categories": [ {"id": 12 ]`)
			got, err := fx.gateway.Load(ctx)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrCorruptDocument)
		})
	}
}

func TestGatewayRejectsBrokenInvariants(t *testing.T) {
	ctx := context.Background()
	fx := fixtures(t)["file"]
	fx.corrupt(t, `{"categories":[{"id":"c1","name":"Work","xp":-3,"level":1,"colorOrder":["#FF6B6B","#FFA94D","#FFD43B","#69DB7C","#4DABF7","#9775FA","#F783AC"],"colorIndex":0,"tasks":[]}]}`)

	_, err := fx.gateway.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptDocument)
	assert.ErrorIs(t, err, model.ErrInvalidDocument)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Config
		want any
	}{
		{name: "sqlite", cfg: config.Config{StorageBackend: config.BackendSQLite, DatabaseURL: filepath.Join(dir, "tq.db")}, want: &SlotRepository{}},
		{name: "redis", cfg: config.Config{StorageBackend: config.BackendRedis, RedisURL: "redis://" + mr.Addr() + "/0"}, want: &RedisSlot{}},
		{name: "file", cfg: config.Config{StorageBackend: config.BackendFile, StorageFile: filepath.Join(dir, "doc.json")}, want: &FileSlot{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, closeFn, err := Open(ctx, tt.cfg, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, gw)
			require.NoError(t, gw.Save(ctx, sampleDocument()))
			require.NoError(t, closeFn())
		})
	}

	_, _, err = Open(ctx, config.Config{StorageBackend: "mongo"}, nil)
	assert.ErrorIs(t, err, config.ErrUnknownBackend)

	_, _, err = Open(ctx, config.Config{StorageBackend: config.BackendRedis, RedisURL: "not a url"}, nil)
	assert.Error(t, err)
}

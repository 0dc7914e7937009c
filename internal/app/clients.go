package app

import (
	"fmt"
	"strings"

	"github.com/dmhernandez2525/learning-hall/internal/data/db"
	"github.com/dmhernandez2525/learning-hall/internal/platform/gcp"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/realtime/bus"
)

type Clients struct {
	DB             *db.Service
	Bus            bus.Bus
	TemplateBucket gcp.TemplateBucket
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		return Clients{}, fmt.Errorf("automigrate: %w", err)
	}

	// Redis
	var sseBus bus.Bus
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := bus.NewRedisBus(log, bus.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			_ = dbService.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		sseBus = b
	}

	// Gcs
	bucket, err := resolveTemplateBucket(log, cfg)
	if err != nil {
		if sseBus != nil {
			_ = sseBus.Close()
		}
		_ = dbService.Close()
		return Clients{}, fmt.Errorf("init template bucket: %w", err)
	}

	return Clients{DB: dbService, Bus: sseBus, TemplateBucket: bucket}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

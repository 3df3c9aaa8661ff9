package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dossier-llm/internal/config"
)

// Open elige el backend de persistencia segun la configuracion: Redis si esta
// configurado y responde, el directorio local en cualquier otro caso. Todos
// los binarios deben abrir el store por aca para terminar mirando el mismo
// expediente.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (KV, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(ctxPing).Err()
		cancel()
		if err != nil {
			logger.Warn("redis ping failed, falling back to file storage", zap.Error(err))
		} else {
			logger.Info("using redis storage", zap.String("addr", cfg.RedisAddr))
			return NewRedisKV(client), nil
		}
	}

	fileKV, err := NewFileKV(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("using file storage", zap.String("dir", cfg.DataDir))
	return fileKV, nil
}

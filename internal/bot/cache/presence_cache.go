package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// PresenceProvider - источник живого статуса пользователя.
type PresenceProvider interface {
	GetPresence(ctx context.Context, userID string) (models.Presence, error)
}

// RedisPresenceCache - декоратор над шлюзом с коротким TTL, чтобы не
// ходить за статусом одного пользователя на каждое упоминание подряд.
type RedisPresenceCache struct {
	provider PresenceProvider
	client   *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
}

func NewRedisPresenceCache(
	provider PresenceProvider,
	redisURL, password string,
	db int,
	ttl time.Duration,
	logger *slog.Logger,
) (*RedisPresenceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis для кэша статусов успешно установлено")

	return &RedisPresenceCache{
		provider: provider,
		client:   client,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

func (c *RedisPresenceCache) GetPresence(ctx context.Context, userID string) (models.Presence, error) {
	key := "presence:" + userID

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return models.ParsePresence(cached), nil
	}

	if err != redis.Nil {
		// Redis недоступен - статус берем напрямую у шлюза.
		c.logger.Warn("Ошибка при чтении статуса из Redis",
			"error", err,
			"userID", userID,
		)
	}

	presence, err := c.provider.GetPresence(ctx, userID)
	if err != nil {
		return models.PresenceUnknown, err
	}

	if setErr := c.client.Set(ctx, key, presence.String(), c.ttl).Err(); setErr != nil {
		c.logger.Warn("Ошибка при сохранении статуса в Redis",
			"error", setErr,
			"userID", userID,
		)
	}

	return presence, nil
}

func (c *RedisPresenceCache) Close() error {
	return c.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// RedisDigestCache накапливает отложенные уведомления по пользователям
// до момента доставки дайджеста. TTL страхует от вечных очередей, если
// доставка не состоялась.
type RedisDigestCache struct {
	client     *redis.Client
	ttl        time.Duration
	logger     *slog.Logger
	keyPattern string
}

func NewRedisDigestCache(
	ctx context.Context,
	redisURL, password string,
	db int,
	ttl time.Duration,
	logger *slog.Logger,
) (*RedisDigestCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis для кэша дайджестов успешно установлено")

	return &RedisDigestCache{
		client:     client,
		ttl:        ttl,
		logger:     logger,
		keyPattern: "digest:notifications:%s",
	}, nil
}

func (c *RedisDigestCache) AddNotification(ctx context.Context, userID string, notification *models.Notification) error {
	key := fmt.Sprintf(c.keyPattern, userID)

	notifications, err := c.GetNotifications(ctx, userID)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("ошибка при получении текущих уведомлений: %w", err)
	}

	notifications = append(notifications, notification)

	data, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для Redis: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении уведомлений в Redis: %w", err)
	}

	c.logger.Info("Уведомление добавлено в дайджест",
		"userID", userID,
		"count", len(notifications),
	)

	return nil
}

func (c *RedisDigestCache) GetNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	key := fmt.Sprintf(c.keyPattern, userID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("ошибка при получении уведомлений из Redis: %w", err)
	}

	var notifications []*models.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, fmt.Errorf("ошибка при десериализации данных из Redis: %w", err)
	}

	return notifications, nil
}

func (c *RedisDigestCache) ClearNotifications(ctx context.Context, userID string) error {
	key := fmt.Sprintf(c.keyPattern, userID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении уведомлений из Redis: %w", err)
	}

	return nil
}

// GetAllUserIDs возвращает пользователей с непустой очередью дайджеста.
func (c *RedisDigestCache) GetAllUserIDs(ctx context.Context) ([]string, error) {
	pattern := fmt.Sprintf(c.keyPattern, "*")
	prefix := fmt.Sprintf(c.keyPattern, "")

	var userIDs []string

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if len(key) > len(prefix) {
			userIDs = append(userIDs, key[len(prefix):])
		}
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при переборе ключей дайджеста: %w", err)
	}

	return userIDs, nil
}

func (c *RedisDigestCache) Close() error {
	return c.client.Close()
}

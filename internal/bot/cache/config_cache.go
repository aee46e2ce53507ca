package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/repository"
	"github.com/central-university-dev/go-MentionsRelay/internal/common/metrics"
	customerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// ConfigCache - сквозной кэш конфигураций поверх хранилища.
// Записи создаются при первом чтении (отсутствующая строка дает значение
// по умолчанию) и живут до конца процесса; сервис считается единственным
// писателем. Обновления идут write-through: сначала хранилище, затем
// замена записи в кэше. Если транзакция вокруг обновления не
// зафиксировалась, вызывающий обязан сбросить запись через
// InvalidateUser/InvalidateServer, иначе кэш разойдется с откатанным
// хранилищем.
type ConfigCache struct {
	repo    repository.ConfigRepository
	logger  *slog.Logger
	mu      sync.RWMutex
	users   map[string]models.UserConfig
	servers map[string]models.ServerConfig
}

func NewConfigCache(repo repository.ConfigRepository, logger *slog.Logger) *ConfigCache {
	return &ConfigCache{
		repo:    repo,
		logger:  logger,
		users:   make(map[string]models.UserConfig),
		servers: make(map[string]models.ServerConfig),
	}
}

func (c *ConfigCache) GetUser(ctx context.Context, id string) (models.UserConfig, error) {
	c.mu.RLock()
	cfg, ok := c.users[id]
	c.mu.RUnlock()

	if ok {
		metrics.RecordConfigCacheLookup("user", "hit")
		return cfg, nil
	}

	metrics.RecordConfigCacheLookup("user", "miss")

	cfg, found, err := c.repo.FetchUser(ctx, id)
	if err != nil {
		return models.UserConfig{}, &customerrors.ErrStorageUnavailable{Cause: err}
	}

	if !found {
		cfg = models.DefaultUserConfig()
	}

	c.mu.Lock()
	// Параллельное чтение могло уже заполнить запись; обновление поверх
	// безопасно, побеждает последняя запись.
	c.users[id] = cfg
	c.mu.Unlock()

	return cfg, nil
}

func (c *ConfigCache) GetServer(ctx context.Context, id string) (models.ServerConfig, error) {
	c.mu.RLock()
	cfg, ok := c.servers[id]
	c.mu.RUnlock()

	if ok {
		metrics.RecordConfigCacheLookup("server", "hit")
		return cfg, nil
	}

	metrics.RecordConfigCacheLookup("server", "miss")

	cfg, found, err := c.repo.FetchServer(ctx, id)
	if err != nil {
		return models.ServerConfig{}, &customerrors.ErrStorageUnavailable{Cause: err}
	}

	if !found {
		cfg = models.DefaultServerConfig()
	}

	c.mu.Lock()
	c.servers[id] = cfg
	c.mu.Unlock()

	return cfg, nil
}

// UpdateUser накладывает заполненные поля update на текущую конфигурацию,
// сохраняет результат в хранилище и заменяет запись в кэше.
func (c *ConfigCache) UpdateUser(ctx context.Context, id string, update models.UserConfigUpdate) error {
	current, err := c.GetUser(ctx, id)
	if err != nil {
		return err
	}

	updated := update.Apply(current)

	if err := c.repo.UpsertUser(ctx, id, updated); err != nil {
		return &customerrors.ErrStorageUnavailable{Cause: err}
	}

	c.mu.Lock()
	c.users[id] = updated
	c.mu.Unlock()

	c.logger.Info("Конфигурация пользователя обновлена",
		"userID", id,
		"mode", updated.MentionsMode.String(),
		"enabled", updated.Enabled.String(),
	)

	return nil
}

// InvalidateUser удаляет запись из кэша; следующее чтение пойдет в
// хранилище. Вызывается при откате транзакции с обновлением.
func (c *ConfigCache) InvalidateUser(id string) {
	c.mu.Lock()
	delete(c.users, id)
	c.mu.Unlock()
}

func (c *ConfigCache) InvalidateServer(id string) {
	c.mu.Lock()
	delete(c.servers, id)
	c.mu.Unlock()
}

func (c *ConfigCache) UpdateServer(ctx context.Context, id string, update models.ServerConfigUpdate) error {
	current, err := c.GetServer(ctx, id)
	if err != nil {
		return err
	}

	updated := update.Apply(current)

	if err := c.repo.UpsertServer(ctx, id, updated); err != nil {
		return &customerrors.ErrStorageUnavailable{Cause: err}
	}

	c.mu.Lock()
	c.servers[id] = updated
	c.mu.Unlock()

	c.logger.Info("Конфигурация сервера обновлена",
		"serverID", id,
		"enabled", updated.Enabled.String(),
	)

	return nil
}

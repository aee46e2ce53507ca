package repository

import (
	"context"

	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// ConfigRepository - долговременное хранилище настроек пользователей и серверов.
// Fetch-методы возвращают false вторым значением, если записи нет.
type ConfigRepository interface {
	FetchUser(ctx context.Context, id string) (models.UserConfig, bool, error)

	FetchServer(ctx context.Context, id string) (models.ServerConfig, bool, error)

	UpsertUser(ctx context.Context, id string, cfg models.UserConfig) error

	UpsertServer(ctx context.Context, id string, cfg models.ServerConfig) error
}

package service

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

type ConfigStore interface {
	ConfigProvider

	UpdateUser(ctx context.Context, id string, update models.UserConfigUpdate) error

	UpdateServer(ctx context.Context, id string, update models.ServerConfigUpdate) error

	InvalidateUser(id string)

	InvalidateServer(id string)
}

type PermissionChecker interface {
	HasManageGroupPermission(ctx context.Context, userID, groupID string) (bool, error)
}

type TxManager interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

// SettingsService - операции чтения и изменения настроек пользователей
// и серверов. Серверные настройки меняют только обладатели права
// управления сервером.
type SettingsService struct {
	configs     ConfigStore
	permissions PermissionChecker
	txManager   TxManager
	logger      *slog.Logger
}

func NewSettingsService(
	configs ConfigStore,
	permissions PermissionChecker,
	txManager TxManager,
	logger *slog.Logger,
) *SettingsService {
	return &SettingsService{
		configs:     configs,
		permissions: permissions,
		txManager:   txManager,
		logger:      logger,
	}
}

func (s *SettingsService) GetUserConfig(ctx context.Context, userID string) (models.UserConfig, error) {
	return s.configs.GetUser(ctx, userID)
}

func (s *SettingsService) UpdateUserConfig(ctx context.Context, userID string, update models.UserConfigUpdate) error {
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.configs.UpdateUser(ctx, userID, update)
	})
	if err != nil {
		// Кэш уже мог принять значение, которое транзакция откатила.
		s.configs.InvalidateUser(userID)
		return err
	}

	return nil
}

func (s *SettingsService) GetServerConfig(ctx context.Context, serverID string) (models.ServerConfig, error) {
	return s.configs.GetServer(ctx, serverID)
}

// UpdateServerConfig меняет серверную настройку от имени actorID.
func (s *SettingsService) UpdateServerConfig(ctx context.Context, actorID, serverID string, update models.ServerConfigUpdate) error {
	allowed, err := s.permissions.HasManageGroupPermission(ctx, actorID, serverID)
	if err != nil {
		return err
	}

	if !allowed {
		return &errors.ErrPermissionDenied{UserID: actorID, ServerID: serverID}
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.configs.UpdateServer(ctx, serverID, update)
	})
	if err != nil {
		s.configs.InvalidateServer(serverID)
		return err
	}

	return nil
}

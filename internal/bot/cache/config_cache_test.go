package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/cache"
	customerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

type mockConfigRepository struct {
	mock.Mock
}

func (m *mockConfigRepository) FetchUser(ctx context.Context, id string) (models.UserConfig, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.UserConfig), args.Bool(1), args.Error(2)
}

func (m *mockConfigRepository) FetchServer(ctx context.Context, id string) (models.ServerConfig, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ServerConfig), args.Bool(1), args.Error(2)
}

func (m *mockConfigRepository) UpsertUser(ctx context.Context, id string, cfg models.UserConfig) error {
	args := m.Called(ctx, id, cfg)
	return args.Error(0)
}

func (m *mockConfigRepository) UpsertServer(ctx context.Context, id string, cfg models.ServerConfig) error {
	args := m.Called(ctx, id, cfg)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigCache_GetUser_MissingRowGivesDefault(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	mockRepo.On("FetchUser", ctx, "user-1").Return(models.UserConfig{}, false, nil).Once()

	cfg, err := configCache.GetUser(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserConfig(), cfg)
	mockRepo.AssertExpectations(t)
}

func TestConfigCache_GetUser_SecondReadServedFromCache(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	stored := models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledYes}
	mockRepo.On("FetchUser", ctx, "user-1").Return(stored, true, nil).Once()

	first, err := configCache.GetUser(ctx, "user-1")
	require.NoError(t, err)

	second, err := configCache.GetUser(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, stored, first)
	assert.Equal(t, stored, second)
	mockRepo.AssertNumberOfCalls(t, "FetchUser", 1)
}

func TestConfigCache_GetUser_StorageErrorWrapped(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	mockRepo.On("FetchUser", ctx, "user-1").
		Return(models.UserConfig{}, false, errors.New("соединение закрыто"))

	_, err := configCache.GetUser(ctx, "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, &customerrors.ErrStorageUnavailable{})
}

func TestConfigCache_UpdateUser_WriteThrough(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	mockRepo.On("FetchUser", ctx, "user-1").Return(models.UserConfig{}, false, nil).Once()

	mode := models.ModeCatalog
	expected := models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledDefault}
	mockRepo.On("UpsertUser", ctx, "user-1", expected).Return(nil).Once()

	err := configCache.UpdateUser(ctx, "user-1", models.UserConfigUpdate{MentionsMode: &mode})
	require.NoError(t, err)

	// Последующее чтение обслуживается из кэша без обращения к хранилищу.
	cfg, err := configCache.GetUser(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, expected, cfg)
	mockRepo.AssertNumberOfCalls(t, "FetchUser", 1)
	mockRepo.AssertExpectations(t)
}

func TestConfigCache_UpdateUser_StorageErrorKeepsCacheIntact(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	stored := models.UserConfig{MentionsMode: models.ModeNormal, Enabled: models.EnabledYes}
	mockRepo.On("FetchUser", ctx, "user-1").Return(stored, true, nil).Once()
	mockRepo.On("UpsertUser", ctx, "user-1", mock.Anything).
		Return(errors.New("соединение закрыто"))

	enabled := models.EnabledNo
	err := configCache.UpdateUser(ctx, "user-1", models.UserConfigUpdate{Enabled: &enabled})

	require.Error(t, err)
	assert.ErrorIs(t, err, &customerrors.ErrStorageUnavailable{})

	// Кэш сохраняет прежнее значение при неудачной записи.
	cfg, err := configCache.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, stored, cfg)
}

func TestConfigCache_GetServer_MissingRowGivesDefault(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	mockRepo.On("FetchServer", ctx, "server-1").Return(models.ServerConfig{}, false, nil).Once()

	cfg, err := configCache.GetServer(ctx, "server-1")

	require.NoError(t, err)
	assert.Equal(t, models.DefaultServerConfig(), cfg)
	assert.False(t, cfg.IsEnabled())
}

func TestConfigCache_UpdateServer_WriteThrough(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	mockRepo.On("FetchServer", ctx, "server-1").Return(models.ServerConfig{}, false, nil).Once()

	enabled := models.EnabledYes
	expected := models.ServerConfig{Enabled: models.EnabledYes}
	mockRepo.On("UpsertServer", ctx, "server-1", expected).Return(nil).Once()

	err := configCache.UpdateServer(ctx, "server-1", models.ServerConfigUpdate{Enabled: &enabled})
	require.NoError(t, err)

	cfg, err := configCache.GetServer(ctx, "server-1")
	require.NoError(t, err)

	assert.True(t, cfg.IsEnabled())
	mockRepo.AssertNumberOfCalls(t, "FetchServer", 1)
}

func TestConfigCache_ConcurrentReads(t *testing.T) {
	mockRepo := new(mockConfigRepository)
	configCache := cache.NewConfigCache(mockRepo, testLogger())

	ctx := context.Background()

	stored := models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledYes}
	mockRepo.On("FetchUser", ctx, "user-1").Return(stored, true, nil)

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			cfg, err := configCache.GetUser(ctx, "user-1")
			assert.NoError(t, err)
			assert.Equal(t, stored, cfg)
		}()
	}

	wg.Wait()
}

package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/service"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

type mockConfigProvider struct {
	mock.Mock
}

func (m *mockConfigProvider) GetUser(ctx context.Context, id string) (models.UserConfig, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.UserConfig), args.Error(1)
}

func (m *mockConfigProvider) GetServer(ctx context.Context, id string) (models.ServerConfig, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ServerConfig), args.Error(1)
}

type mockPresenceProvider struct {
	mock.Mock
}

func (m *mockPresenceProvider) GetPresence(ctx context.Context, userID string) (models.Presence, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Presence), args.Error(1)
}

type recordingNotifier struct {
	mu       sync.Mutex
	notified []string
	failFor  map[string]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{failFor: make(map[string]error)}
}

func (n *recordingNotifier) Notify(_ context.Context, userID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err, ok := n.failFor[userID]; ok {
		return err
	}

	n.notified = append(n.notified, userID)

	return nil
}

func (n *recordingNotifier) notifiedUsers() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.notified...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	testGroupID = "group-1"
	testBotID   = "bot-user"
)

func newEvent(mentions ...string) *models.MessageEvent {
	return &models.MessageEvent{
		MessageID:   "msg-1",
		Text:        "всем привет",
		AuthorID:    "author-1",
		AuthorName:  "Автор",
		GroupID:     testGroupID,
		GroupName:   "Тестовый сервер",
		ChannelID:   "channel-1",
		ChannelName: "general",
		Mentions:    mentions,
	}
}

func TestMentionService_PrivateChannelIgnored(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	event := newEvent("user-1")
	event.Private = true

	err := svc.HandleMessage(context.Background(), event)

	require.NoError(t, err)
	assert.Empty(t, notifier.notifiedUsers())
	mockConfigs.AssertNotCalled(t, "GetServer", mock.Anything, mock.Anything)
}

func TestMentionService_NoMentions(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	err := svc.HandleMessage(context.Background(), newEvent())

	require.NoError(t, err)
	assert.Empty(t, notifier.notifiedUsers())
	mockConfigs.AssertNotCalled(t, "GetServer", mock.Anything, mock.Anything)
}

func TestMentionService_TooManyMentionsDropped(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	mentions := make([]string, 11)
	for i := range mentions {
		mentions[i] = "user-" + string(rune('a'+i))
	}

	err := svc.HandleMessage(context.Background(), newEvent(mentions...))

	require.NoError(t, err)
	assert.Empty(t, notifier.notifiedUsers())
	mockConfigs.AssertNotCalled(t, "GetServer", mock.Anything, mock.Anything)
}

func TestMentionService_CatalogModeAlwaysNotifies(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledYes}, nil)
	mockConfigs.On("GetUser", ctx, "user-1").
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledDefault}, nil)

	err := svc.HandleMessage(ctx, newEvent("user-1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, notifier.notifiedUsers())
	mockPresence.AssertNotCalled(t, "GetPresence", mock.Anything, mock.Anything)
}

func TestMentionService_NormalModeRespectsPresence(t *testing.T) {
	tests := []struct {
		name     string
		presence models.Presence
		notified bool
	}{
		{name: "онлайн не уведомляется", presence: models.PresenceOnline, notified: false},
		{name: "idle уведомляется", presence: models.PresenceIdle, notified: true},
		{name: "офлайн уведомляется", presence: models.PresenceOffline, notified: true},
		{name: "неизвестный статус не уведомляется", presence: models.PresenceUnknown, notified: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockConfigs := new(mockConfigProvider)
			mockPresence := new(mockPresenceProvider)
			notifier := newRecordingNotifier()

			svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

			ctx := context.Background()

			mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledYes}, nil)
			mockConfigs.On("GetUser", ctx, "user-1").
				Return(models.UserConfig{MentionsMode: models.ModeNormal, Enabled: models.EnabledDefault}, nil)
			mockPresence.On("GetPresence", ctx, "user-1").Return(tt.presence, nil)

			err := svc.HandleMessage(ctx, newEvent("user-1"))

			require.NoError(t, err)

			if tt.notified {
				assert.Equal(t, []string{"user-1"}, notifier.notifiedUsers())
			} else {
				assert.Empty(t, notifier.notifiedUsers())
			}
		})
	}
}

func TestMentionService_UserOptOutOverridesServer(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledYes}, nil)
	mockConfigs.On("GetUser", ctx, "user-1").
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledNo}, nil)

	err := svc.HandleMessage(ctx, newEvent("user-1"))

	require.NoError(t, err)
	assert.Empty(t, notifier.notifiedUsers())
}

func TestMentionService_UserOptInOverridesDisabledServer(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledNo}, nil)
	mockConfigs.On("GetUser", ctx, "user-1").
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledYes}, nil)

	err := svc.HandleMessage(ctx, newEvent("user-1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, notifier.notifiedUsers())
}

// Хранимое EnabledYes сервера дает true, EnabledNo и EnabledDefault на
// чтении не различаются: оба выключают унаследовавших пользователей.
func TestMentionService_ServerTriStateCollapse(t *testing.T) {
	tests := []struct {
		name          string
		serverEnabled models.MentionsEnabled
		notified      bool
	}{
		{name: "сервер включен", serverEnabled: models.EnabledYes, notified: true},
		{name: "сервер выключен", serverEnabled: models.EnabledNo, notified: false},
		{name: "сервер по умолчанию", serverEnabled: models.EnabledDefault, notified: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockConfigs := new(mockConfigProvider)
			mockPresence := new(mockPresenceProvider)
			notifier := newRecordingNotifier()

			svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

			ctx := context.Background()

			mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: tt.serverEnabled}, nil)
			mockConfigs.On("GetUser", ctx, "user-1").
				Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledDefault}, nil)

			err := svc.HandleMessage(ctx, newEvent("user-1"))

			require.NoError(t, err)

			if tt.notified {
				assert.Equal(t, []string{"user-1"}, notifier.notifiedUsers())
			} else {
				assert.Empty(t, notifier.notifiedUsers())
			}
		})
	}
}

func TestMentionService_BotMentionSkipped(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledYes}, nil)
	mockConfigs.On("GetUser", ctx, "user-1").
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledDefault}, nil)

	err := svc.HandleMessage(ctx, newEvent(testBotID, "user-1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, notifier.notifiedUsers())
	mockConfigs.AssertNotCalled(t, "GetUser", mock.Anything, testBotID)
}

func TestMentionService_UserConfigErrorSkipsOnlyThatRecipient(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledYes}, nil)
	mockConfigs.On("GetUser", ctx, "user-1").
		Return(models.UserConfig{}, &errors.ErrStorageUnavailable{})
	mockConfigs.On("GetUser", ctx, "user-2").
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledDefault}, nil)

	err := svc.HandleMessage(ctx, newEvent("user-1", "user-2"))

	require.NoError(t, err)
	assert.Equal(t, []string{"user-2"}, notifier.notifiedUsers())
}

func TestMentionService_ServerConfigErrorFallsBackToDefault(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{}, &errors.ErrStorageUnavailable{})
	// Явно включивший пользователь уведомляется даже без серверной конфигурации.
	mockConfigs.On("GetUser", ctx, "user-1").
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledYes}, nil)
	// Унаследовавший получает значение по умолчанию (выключено).
	mockConfigs.On("GetUser", ctx, "user-2").
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledDefault}, nil)

	err := svc.HandleMessage(ctx, newEvent("user-1", "user-2"))

	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, notifier.notifiedUsers())
}

func TestMentionService_DeliveryFailureDoesNotPropagate(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()
	notifier.failFor["user-1"] = &errors.ErrDeliveryFailed{UserID: "user-1"}

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledYes}, nil)
	mockConfigs.On("GetUser", ctx, mock.Anything).
		Return(models.UserConfig{MentionsMode: models.ModeCatalog, Enabled: models.EnabledDefault}, nil)

	err := svc.HandleMessage(ctx, newEvent("user-1", "user-2"))

	require.NoError(t, err)
	assert.Equal(t, []string{"user-2"}, notifier.notifiedUsers())
}

func TestMentionService_PresenceErrorSkipsRecipient(t *testing.T) {
	mockConfigs := new(mockConfigProvider)
	mockPresence := new(mockPresenceProvider)
	notifier := newRecordingNotifier()

	svc := service.NewMentionService(mockConfigs, mockPresence, notifier, testBotID, testLogger())

	ctx := context.Background()

	mockConfigs.On("GetServer", ctx, testGroupID).Return(models.ServerConfig{Enabled: models.EnabledYes}, nil)
	mockConfigs.On("GetUser", ctx, "user-1").
		Return(models.UserConfig{MentionsMode: models.ModeNormal, Enabled: models.EnabledDefault}, nil)
	mockPresence.On("GetPresence", ctx, "user-1").
		Return(models.PresenceUnknown, &errors.ErrPresenceUnavailable{UserID: "user-1"})

	err := svc.HandleMessage(ctx, newEvent("user-1"))

	require.NoError(t, err)
	assert.Empty(t, notifier.notifiedUsers())
}

package service

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/notify"
	"github.com/central-university-dev/go-MentionsRelay/internal/common/metrics"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// Сообщения с большим числом упоминаний отбрасываются как спам.
const maxMentionsPerMessage = 10

type ConfigProvider interface {
	GetUser(ctx context.Context, id string) (models.UserConfig, error)

	GetServer(ctx context.Context, id string) (models.ServerConfig, error)
}

type PresenceProvider interface {
	GetPresence(ctx context.Context, userID string) (models.Presence, error)
}

// MentionService решает, кому из упомянутых переслать личное уведомление,
// и немедленно инициирует доставку прошедшим проверку получателям.
type MentionService struct {
	configs   ConfigProvider
	presence  PresenceProvider
	notifier  notify.Notifier
	botUserID string
	logger    *slog.Logger
}

func NewMentionService(
	configs ConfigProvider,
	presence PresenceProvider,
	notifier notify.Notifier,
	botUserID string,
	logger *slog.Logger,
) *MentionService {
	return &MentionService{
		configs:   configs,
		presence:  presence,
		notifier:  notifier,
		botUserID: botUserID,
		logger:    logger,
	}
}

// HandleMessage обрабатывает одно входящее событие сообщения.
// Упоминания отслеживаются только в общих каналах; ошибка по одному
// получателю не мешает оценке остальных.
func (s *MentionService) HandleMessage(ctx context.Context, event *models.MessageEvent) error {
	if event.Private {
		return nil
	}

	if len(event.Mentions) == 0 {
		return nil
	}

	if len(event.Mentions) > maxMentionsPerMessage {
		dropErr := &errors.ErrTooManyMentions{Count: len(event.Mentions)}
		s.logger.Error("Сообщение отброшено",
			"error", dropErr,
			"messageID", event.MessageID,
			"groupID", event.GroupID,
		)
		metrics.RecordDroppedMessage("too_many_mentions")
		metrics.RecordMessageProcessed("dropped")

		return nil
	}

	serverEnabled := s.serverEnabled(ctx, event.GroupID)

	text := notify.FormatMention(event)

	var wg sync.WaitGroup

	var mu sync.Mutex

	var deliveryErr error

	for _, userID := range event.Mentions {
		if userID == s.botUserID {
			continue
		}

		if !s.shouldNotify(ctx, userID, serverEnabled) {
			continue
		}

		wg.Add(1)

		// Доставка по получателям независима: отказ или задержка одного
		// не блокирует остальных.
		go func(userID string) {
			defer wg.Done()

			if err := s.notifier.Notify(ctx, userID, text); err != nil {
				metrics.RecordNotification("failed")

				mu.Lock()
				deliveryErr = multierr.Append(deliveryErr, &errors.ErrDeliveryFailed{UserID: userID, Cause: err})
				mu.Unlock()

				return
			}

			metrics.RecordNotification("sent")
		}(userID)
	}

	wg.Wait()

	if deliveryErr != nil {
		// Доставка best-effort: ошибки не всплывают к транспорту.
		s.logger.Error("Часть уведомлений не доставлена",
			"error", deliveryErr,
			"messageID", event.MessageID,
		)
	}

	metrics.RecordMessageProcessed("ok")

	return nil
}

// serverEnabled возвращает флаг сервера; при недоступном хранилище
// действует значение по умолчанию (выключено), сообщение не прерывается.
func (s *MentionService) serverEnabled(ctx context.Context, groupID string) bool {
	serverCfg, err := s.configs.GetServer(ctx, groupID)
	if err != nil {
		s.logger.Warn("Не удалось получить конфигурацию сервера, применяется значение по умолчанию",
			"error", err,
			"serverID", groupID,
		)

		return models.DefaultServerConfig().IsEnabled()
	}

	return serverCfg.IsEnabled()
}

// shouldNotify - проверка политики для одного получателя: явная настройка
// пользователя важнее серверной, в режиме Normal уведомляем только idle
// или offline.
func (s *MentionService) shouldNotify(ctx context.Context, userID string, serverEnabled bool) bool {
	userCfg, err := s.configs.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Не удалось получить конфигурацию пользователя, получатель пропущен",
			"error", err,
			"userID", userID,
		)

		return false
	}

	if !userCfg.Enabled.Resolve(serverEnabled) {
		return false
	}

	if userCfg.MentionsMode == models.ModeCatalog {
		return true
	}

	presence, err := s.presence.GetPresence(ctx, userID)
	if err != nil {
		s.logger.Warn("Не удалось получить статус пользователя, получатель пропущен",
			"error", err,
			"userID", userID,
		)

		return false
	}

	return presence == models.PresenceIdle || presence == models.PresenceOffline
}

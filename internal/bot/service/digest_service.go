package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/central-university-dev/go-MentionsRelay/internal/bot/notify"
	"github.com/central-university-dev/go-MentionsRelay/internal/common/metrics"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

type DigestStore interface {
	GetNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	ClearNotifications(ctx context.Context, userID string) error
	GetAllUserIDs(ctx context.Context) ([]string, error)
}

// DigestService раз в сутки, в настроенное время, доставляет накопленные
// уведомления одним сообщением на пользователя.
type DigestService struct {
	digestStore  DigestStore
	sender       notify.PrivateMessageSender
	deliveryTime string
	logger       *slog.Logger
	scheduler    *gocron.Scheduler
}

func NewDigestService(
	digestStore DigestStore,
	sender notify.PrivateMessageSender,
	deliveryTime string,
	logger *slog.Logger,
) *DigestService {
	return &DigestService{
		digestStore:  digestStore,
		sender:       sender,
		deliveryTime: deliveryTime,
		logger:       logger,
		scheduler:    gocron.NewScheduler(time.UTC),
	}
}

func (s *DigestService) Start(ctx context.Context) {
	s.logger.Info("Запуск планировщика дайджестов",
		"deliveryTime", s.deliveryTime,
	)

	deliveryHour, deliveryMinute, err := parseDeliveryTime(s.deliveryTime)
	if err != nil {
		s.logger.Error("Некорректное время доставки дайджеста",
			"error", err,
			"value", s.deliveryTime,
		)

		return
	}

	_, err = s.scheduler.Every(1).Minute().Do(func() {
		now := time.Now()
		if now.Hour() != deliveryHour || now.Minute() != deliveryMinute {
			return
		}

		if err := s.sendDigests(ctx); err != nil {
			s.logger.Error("Ошибка при отправке дайджестов",
				"error", err,
			)
		}
	})

	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика дайджестов",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *DigestService) Stop() {
	s.logger.Info("Остановка планировщика дайджестов")
	s.scheduler.Stop()
}

func (s *DigestService) sendDigests(ctx context.Context) error {
	userIDs, err := s.digestStore.GetAllUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при получении очередей дайджеста: %w", err)
	}

	if len(userIDs) == 0 {
		return nil
	}

	s.logger.Info("Отправка дайджестов",
		"totalUsers", len(userIDs),
	)

	for _, userID := range userIDs {
		notifications, err := s.digestStore.GetNotifications(ctx, userID)
		if err != nil {
			s.logger.Error("Ошибка при получении уведомлений для дайджеста",
				"error", err,
				"userID", userID,
			)

			continue
		}

		if len(notifications) == 0 {
			continue
		}

		parts := make([]string, 0, len(notifications)+1)
		parts = append(parts, notify.FormatDigestHeader(len(notifications)))

		for _, notification := range notifications {
			parts = append(parts, notification.Text)
		}

		if err := s.sender.SendPrivateMessage(ctx, userID, strings.Join(parts, "\n\n")); err != nil {
			s.logger.Error("Ошибка при доставке дайджеста",
				"error", err,
				"userID", userID,
			)
			metrics.RecordNotification("digest_failed")

			continue
		}

		metrics.RecordNotification("digest_sent")

		if err := s.digestStore.ClearNotifications(ctx, userID); err != nil {
			s.logger.Error("Ошибка при очистке очереди дайджеста",
				"error", err,
				"userID", userID,
			)
		}
	}

	return nil
}

func parseDeliveryTime(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ожидается формат ЧЧ:ММ, получено %q", value)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("некорректный час в %q", value)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("некорректная минута в %q", value)
	}

	return hour, minute, nil
}

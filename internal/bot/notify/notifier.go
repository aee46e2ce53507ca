package notify

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// Notifier доставляет готовый текст уведомления получателю.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// PrivateMessageSender - исходящая способность шлюза чат-платформы.
type PrivateMessageSender interface {
	SendPrivateMessage(ctx context.Context, userID, text string) error
}

// InstantNotifier отправляет уведомление сразу, без повторов:
// доставка best-effort, не более одного раза.
type InstantNotifier struct {
	sender PrivateMessageSender
	logger *slog.Logger
}

func NewInstantNotifier(sender PrivateMessageSender, logger *slog.Logger) *InstantNotifier {
	return &InstantNotifier{
		sender: sender,
		logger: logger,
	}
}

func (n *InstantNotifier) Notify(ctx context.Context, userID, text string) error {
	n.logger.Debug("Отправка уведомления об упоминании",
		"userID", userID,
	)

	return n.sender.SendPrivateMessage(ctx, userID, text)
}

// DigestQueue - очередь отложенных уведомлений до времени доставки дайджеста.
type DigestQueue interface {
	AddNotification(ctx context.Context, userID string, notification *models.Notification) error
}

// DigestNotifier вместо отправки кладет уведомление в очередь;
// доставкой по расписанию занимается DigestService.
type DigestNotifier struct {
	queue  DigestQueue
	logger *slog.Logger
}

func NewDigestNotifier(queue DigestQueue, logger *slog.Logger) *DigestNotifier {
	return &DigestNotifier{
		queue:  queue,
		logger: logger,
	}
}

func (n *DigestNotifier) Notify(ctx context.Context, userID, text string) error {
	notification := &models.Notification{
		UserID: userID,
		Text:   text,
	}

	return n.queue.AddNotification(ctx, userID, notification)
}

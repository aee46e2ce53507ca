package notify

import (
	"fmt"

	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
)

// FormatMention собирает текст личного уведомления об упоминании.
// Нейтрализацией массовых упоминаний занимается транспортный уровень,
// здесь текст только верстается.
func FormatMention(event *models.MessageEvent) string {
	return fmt.Sprintf(
		"Вас упомянул(а) %s в канале #%s на сервере %s\n"+
			"(отправьте мне \"user mode disabled\", если не хотите получать такие сообщения)\n%s",
		event.AuthorName, event.ChannelName, event.GroupName, event.Text)
}

// FormatDigestHeader - заголовок ежедневного дайджеста упоминаний.
func FormatDigestHeader(count int) string {
	return fmt.Sprintf("Дайджест упоминаний за день (%d):", count)
}

package models

// Presence - статус пользователя, сообщаемый шлюзом чат-платформы.
type Presence int

const (
	PresenceUnknown Presence = iota
	PresenceOnline
	PresenceIdle
	PresenceOffline
)

func (p Presence) String() string {
	switch p {
	case PresenceOnline:
		return "online"
	case PresenceIdle:
		return "idle"
	case PresenceOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// ParsePresence разбирает строковую форму статуса из ответа шлюза.
func ParsePresence(s string) Presence {
	switch s {
	case "online":
		return PresenceOnline
	case "idle":
		return PresenceIdle
	case "offline":
		return PresenceOffline
	default:
		return PresenceUnknown
	}
}

// MessageEvent - нормализованное событие входящего сообщения.
// Упоминания уже разобраны платформой до попадания в сервис.
type MessageEvent struct {
	MessageID   string
	Text        string
	AuthorID    string
	AuthorName  string
	Private     bool
	GroupID     string
	GroupName   string
	ChannelID   string
	ChannelName string
	Mentions    []string
}

// Notification - подготовленное к доставке личное уведомление.
type Notification struct {
	UserID string
	Text   string
}

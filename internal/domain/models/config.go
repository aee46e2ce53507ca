package models

// MentionsMode определяет, какие упоминания пересылаются пользователю.
type MentionsMode int

const (
	// ModeCatalog - пересылать каждое упоминание, независимо от статуса.
	ModeCatalog MentionsMode = iota
	// ModeNormal - пересылать только когда пользователь idle или offline.
	ModeNormal
)

func (m MentionsMode) String() string {
	switch m {
	case ModeCatalog:
		return "catalog"
	case ModeNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// MentionsEnabled - трехзначный флаг включения уведомлений.
type MentionsEnabled int

const (
	// EnabledDefault - решение делегируется настройке сервера.
	EnabledDefault MentionsEnabled = iota
	EnabledYes
	EnabledNo
)

func (e MentionsEnabled) String() string {
	switch e {
	case EnabledDefault:
		return "default"
	case EnabledYes:
		return "enabled"
	case EnabledNo:
		return "disabled"
	default:
		return "unknown"
	}
}

// Resolve сводит трехзначный флаг к булеву: явное значение пользователя
// имеет приоритет, EnabledDefault наследует настройку сервера.
func (e MentionsEnabled) Resolve(serverEnabled bool) bool {
	switch e {
	case EnabledYes:
		return true
	case EnabledNo:
		return false
	default:
		return serverEnabled
	}
}

type UserConfig struct {
	MentionsMode MentionsMode
	Enabled      MentionsEnabled
}

// DefaultUserConfig - конфигурация пользователя, не сохранявшего настройки.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		MentionsMode: ModeNormal,
		Enabled:      EnabledDefault,
	}
}

type ServerConfig struct {
	Enabled MentionsEnabled
}

// DefaultServerConfig - конфигурация сервера без сохраненной записи.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Enabled: EnabledDefault,
	}
}

// IsEnabled сводит хранимое трехзначное значение к булеву.
// Только явное EnabledYes считается включением: EnabledNo и EnabledDefault
// на чтении неразличимы (поведение исходной версии сохранено намеренно).
func (c ServerConfig) IsEnabled() bool {
	return c.Enabled == EnabledYes
}

// UserConfigUpdate - частичное обновление: nil-поле остается без изменений.
type UserConfigUpdate struct {
	MentionsMode *MentionsMode
	Enabled      *MentionsEnabled
}

// Apply накладывает заполненные поля на текущую конфигурацию.
func (u UserConfigUpdate) Apply(current UserConfig) UserConfig {
	if u.MentionsMode != nil {
		current.MentionsMode = *u.MentionsMode
	}

	if u.Enabled != nil {
		current.Enabled = *u.Enabled
	}

	return current
}

type ServerConfigUpdate struct {
	Enabled *MentionsEnabled
}

func (u ServerConfigUpdate) Apply(current ServerConfig) ServerConfig {
	if u.Enabled != nil {
		current.Enabled = *u.Enabled
	}

	return current
}

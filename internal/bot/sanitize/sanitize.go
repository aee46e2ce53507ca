package sanitize

import (
	"regexp"
)

// MaxMessageLength - потолок длины сообщения на платформе.
const MaxMessageLength = 2000

// Токен с разделителем нулевой ширины внутри: выглядит так же,
// но не вызывает массовое уведомление.
const neutralizedEveryone = "@​everyone"

var everyonePattern = regexp.MustCompile(`(?i)@everyone`)

// Sanitize нейтрализует токены массового упоминания и обрезает текст до
// лимита платформы. Применяется к каждому исходящему сообщению без
// исключений.
func Sanitize(text string) string {
	text = everyonePattern.ReplaceAllString(text, neutralizedEveryone)

	runes := []rune(text)
	if len(runes) > MaxMessageLength {
		return string(runes[:MaxMessageLength])
	}

	return text
}

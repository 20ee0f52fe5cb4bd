package notifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Ограничение телеграма на длину одного сообщения
const maxMessageLen = 4096

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel постит дайджест в канал
type TelegramChannel struct {
	bot       messageSender
	channelID int64
}

func NewTelegramChannel(bot messageSender, channelID int64) *TelegramChannel {
	return &TelegramChannel{bot: bot, channelID: channelID}
}

func (t *TelegramChannel) Name() string {
	return "telegram"
}

func (t *TelegramChannel) Deliver(ctx context.Context, doc Document) error {
	for _, part := range splitMessage(doc.Markdown, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(t.channelID, part)
		// Даем понять телеграм, чтобы это сообщение парсилось как markdown сообщение
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.DisableWebPagePreview = true

		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("telegram: send to %d: %w", t.channelID, err)
		}
	}

	return nil
}

// Режем по строкам, чтобы не разорвать экранирование или ссылку посередине
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		// Одна строка длиннее лимита встречается только в вырожденных случаях
		for len(line) > limit {
			flush()
			cut := cutPoint(line, limit)
			parts = append(parts, line[:cut])
			line = line[cut:]
		}

		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}

	flush()

	return parts
}

// cutPoint ищет место разреза не дальше limit байт: на границе руны
// и не сразу после экранирующего обратного слэша
func cutPoint(line string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}

	// Нечетное число слэшей перед разрезом значит, что последний экранирует следующий символ
	slashes := 0
	for i := cut - 1; i >= 0 && line[i] == '\\'; i-- {
		slashes++
	}
	if slashes%2 == 1 {
		cut--
	}

	if cut <= 0 {
		// Лимит меньше одной экранированной руны, берем ее целиком
		_, size := utf8.DecodeRuneInString(line)
		if line[0] == '\\' && len(line) > size {
			_, next := utf8.DecodeRuneInString(line[size:])
			size += next
		}
		return size
	}

	return cut
}

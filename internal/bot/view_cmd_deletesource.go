package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
)

// Удаляет ленту, добавленную через бота. Ленты из конфига так удалить нельзя
func ViewCmdDeleteSource(storage SourceStorage) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		id, err := strconv.ParseInt(strings.TrimSpace(update.Message.CommandArguments()), 10, 64)
		if err != nil || id <= 0 {
			return replyText(bot, update, "Укажите ID источника, например: /deletesource 42")
		}

		source, err := storage.SourceByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return replyText(bot, update, fmt.Sprintf("Источник с ID %d не найден", id))
		}
		if err != nil {
			return err
		}

		if err := storage.Delete(ctx, id); err != nil {
			return err
		}

		return replyText(bot, update, fmt.Sprintf("Источник %s удален", source.Name))
	}
}

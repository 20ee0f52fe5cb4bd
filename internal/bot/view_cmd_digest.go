package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/model"
	"github.com/kovalyov-valentin/news-digest/internal/notifier"
)

type DigestBuilder interface {
	Build(ctx context.Context, day time.Time) (model.Selection, notifier.Document, error)
}

// Показывает дайджест за сегодня тому, кто спросил. В канал ничего не уходит
func ViewCmdDigest(builder DigestBuilder, now func() time.Time) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		sel, doc, err := builder.Build(ctx, now())
		if err != nil {
			return err
		}

		if sel.Empty() {
			return replyText(bot, update, "За сегодня подходящих новостей пока нет")
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, doc.Markdown)
		reply.ParseMode = tgbotapi.ModeMarkdownV2
		reply.DisableWebPagePreview = true

		_, err = bot.Send(reply)
		return err
	}
}

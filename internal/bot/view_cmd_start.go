package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
)

const helpText = `Я собираю деловые новости по ключевым словам и раз в день публикую дайджест.

/listsources - список лент
/addsource {"name":"...","url":"...","kind":"rss|gofeed"} - добавить ленту
/deletesource 42 - удалить ленту по ID
/digest - показать дайджест за сегодня`

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, bot botkit.API, update tgbotapi.Update) error {
		_, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, helpText))
		return err
	}
}

package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/botkit/markup"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

type SourceLister interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

func ViewCmdListSources(lister SourceLister) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		sources, err := lister.Sources(ctx)
		if err != nil {
			return err
		}

		var (
			sourceInfos = lo.Map(sources, func(source model.Source, _ int) string {
				return formatSource(source)
			})
			msgText = fmt.Sprintf(
				"Список источников \\(всего %d\\):\n\n%s",
				len(sources),
				strings.Join(sourceInfos, "\n\n"),
			)
		)

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, msgText)
		reply.ParseMode = tgbotapi.ModeMarkdownV2
		reply.DisableWebPagePreview = true

		_, err = bot.Send(reply)
		return err
	}
}

// Источники из конфига не имеют ID, их нельзя удалить командой
func formatSource(source model.Source) string {
	id := "из конфига"
	if source.ID != 0 {
		id = fmt.Sprintf("`%d`", source.ID)
	}

	name := source.Name
	if name == "" {
		name = source.FeedURL
	}

	return fmt.Sprintf(
		"🌐 *%s*\nID: %s\nТип: %s\nURL фида: %s",
		markup.EscapeForMarkdown(name),
		id,
		markup.EscapeForMarkdown(source.Kind),
		markup.EscapeForMarkdown(source.FeedURL),
	)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/news-digest/internal/botkit"
	"github.com/kovalyov-valentin/news-digest/internal/model"
)

type SourceStorage interface {
	Add(ctx context.Context, source model.Source) (int64, error)
	SourceByID(ctx context.Context, id int64) (*model.Source, error)
	Delete(ctx context.Context, id int64) error
}

// Добавляет ленту в БД. Следующий прогон сборщика ее подхватит
func ViewCmdAddSource(storage SourceStorage) botkit.ViewFunc {
	type addSourceArgs struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Kind string `json:"kind"`
	}

	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addSourceArgs](update.Message.CommandArguments())
		if err != nil {
			return replyText(bot, update, `Не получилось разобрать аргументы. Пример: /addsource {"name":"Reuters","url":"https://...","kind":"rss"}`)
		}

		source, err := newSource(args.Name, args.URL, args.Kind)
		if err != nil {
			return replyText(bot, update, err.Error())
		}

		sourceID, err := storage.Add(ctx, source)
		if err != nil {
			return err
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, fmt.Sprintf(
			"Источник добавлен с ID: `%d`\\. Используйте этот ID для управления источником\\.",
			sourceID,
		))
		reply.ParseMode = tgbotapi.ModeMarkdownV2

		_, err = bot.Send(reply)
		return err
	}
}

func newSource(name, rawURL, kind string) (model.Source, error) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	kind = strings.ToLower(strings.TrimSpace(kind))

	if name == "" {
		return model.Source{}, errors.New("Укажите name")
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.Source{}, fmt.Errorf("Некорректный url: %q", rawURL)
	}

	switch kind {
	case "":
		kind = model.SourceKindGofeed
	case model.SourceKindRSS, model.SourceKindGofeed:
	default:
		return model.Source{}, fmt.Errorf("Неизвестный kind %q, ожидается rss или gofeed", kind)
	}

	return model.Source{Name: name, FeedURL: rawURL, Kind: kind}, nil
}

func replyText(bot botkit.API, update tgbotapi.Update, text string) error {
	_, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, text))
	return err
}

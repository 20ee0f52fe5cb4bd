package botkit

import (
	"context"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Сколько даем одной view на обработку апдейта
const updateTimeout = 10 * time.Second

// API часть клиента телеграма, которая нужна view. *tgbotapi.BotAPI подходит
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
}

// Update здесь это любой эвент, который приходит от телеграма при взаимодействии пользователя с ботом.
// Это функция которая будет реагировать на определенную команду
type ViewFunc func(ctx context.Context, bot API, update tgbotapi.Update) error

type Bot struct {
	// Инстанс апи телеграма
	api *tgbotapi.BotAPI
	// Мапа в которой будем хранить view
	cmdViews map[string]ViewFunc
	log      *zap.Logger
}

func New(api *tgbotapi.BotAPI, log *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		cmdViews: make(map[string]ViewFunc),
		log:      log,
	}
}

// Метод для регистрации View для команды
func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[cmd] = view
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			updateCtx, updateCancel := context.WithTimeout(ctx, updateTimeout)
			Dispatch(updateCtx, b.api, b.cmdViews, update, b.log)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dispatch роутит команду на view. Паника во view не роняет бота
func Dispatch(ctx context.Context, api API, views map[string]ViewFunc, update tgbotapi.Update, log *zap.Logger) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic recovered", zap.Any("panic", p), zap.String("stack", string(debug.Stack())))
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	// Вытаскиваем команду из сообщения, так сообщение может содержать не только команду
	cmd := update.Message.Command()

	view, ok := views[cmd]
	if !ok {
		return
	}

	if err := view(ctx, api, update); err != nil {
		log.Error("failed to handle update", zap.String("cmd", cmd), zap.Error(err))

		if _, err := api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			log.Error("failed to send message", zap.Error(err))
		}
	}
}

package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutritrack/pkg/logger"
)

// api is the part of *tgbotapi.BotAPI the bot uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramBot delivers reminders and answers /start with the chat id users
// paste into their reminder settings.
type TelegramBot struct {
	bot      api
	username string
	logger   *logger.Logger
}

func NewTelegramBot(token string, log *logger.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log = log.Named("telegram")
	log.Infow("Authorized on Telegram", "username", bot.Self.UserName)

	return &TelegramBot{bot: bot, username: bot.Self.UserName, logger: log}, nil
}

// Start begins receiving updates from Telegram via polling
func (t *TelegramBot) Start(ctx context.Context) error {
	// Polling does not work while a webhook is set
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := t.bot.GetUpdatesChan(updateConfig)

	t.logger.Info("Started receiving Telegram updates")
	go t.handleUpdates(ctx, updates)

	return nil
}

func (t *TelegramBot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(update)
		}
	}
}

func (t *TelegramBot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorw("Recovered from panic while processing update", "error", r)
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	msg := replyFor(update.Message)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Errorw("Failed to send reply", "chat_id", msg.ChatID, "error", err)
	}
}

// replyFor answers bot commands.
func replyFor(message *tgbotapi.Message) tgbotapi.MessageConfig {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		return tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"Hi! Your chat id is %d.\nEnter it in the reminder settings of the app to get a daily summary of your calories here.",
			chatID,
		))
	case "help":
		return tgbotapi.NewMessage(chatID, "I send your daily nutrition reminders. Use /start to see your chat id.")
	default:
		return tgbotapi.NewMessage(chatID, "Unknown command. Use /start to see your chat id.")
	}
}

// Notify sends a plain text message to the chat.
func (t *TelegramBot) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// Stop gracefully shuts down the bot
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.bot.StopReceivingUpdates()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

// Package telegram provides the Telegram chat adapter.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/normanking/pia/internal/channels"
	"github.com/normanking/pia/internal/config"
)

// Adapter implements channels.Channel for Telegram via long polling.
type Adapter struct {
	*channels.BaseChannel

	cfg    *config.Config
	bot    *tgbotapi.BotAPI
	logger *slog.Logger

	running bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// New creates a Telegram adapter.
func New(cfg *config.Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		BaseChannel: channels.NewBaseChannel("telegram", cfg.TelegramEnabled),
		cfg:         cfg,
		logger:      logger.With("channel", "telegram"),
	}
}

// Start authorizes the bot and begins the update loop.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}
	if a.cfg.TelegramToken == "" {
		return fmt.Errorf("telegram token not configured")
	}

	bot, err := tgbotapi.NewBotAPI(a.cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	a.bot = bot
	a.logger.Info("telegram bot authorized", "username", bot.Self.UserName)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true

	go a.receiveUpdates(ctx)
	return nil
}

// Stop stops the update loop.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.bot != nil {
		a.bot.StopReceivingUpdates()
	}
	a.running = false
	a.logger.Info("telegram adapter stopped")
	return nil
}

// Send delivers text to the given chat id.
func (a *Adapter) Send(channelID, text string) (bool, string) {
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return false, fmt.Sprintf("invalid telegram chat id %q", channelID)
	}
	if a.bot == nil {
		return false, "telegram not connected"
	}

	sent, err := a.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return false, err.Error()
	}

	if a.cfg.AutoDeleteAfter > 0 {
		a.scheduleDelete(chatID, sent.MessageID)
	}
	return true, "sent"
}

// Broadcast sends text to the configured chat.
func (a *Adapter) Broadcast(text string) (bool, string) {
	if a.cfg.TelegramChatID == 0 {
		return false, "telegram chat not configured"
	}
	return a.Send(strconv.FormatInt(a.cfg.TelegramChatID, 10), text)
}

// ClearBotMessages is not available through the bot API: Telegram offers no
// way to list a chat's history, so there is nothing to iterate over.
func (a *Adapter) ClearBotMessages(channelID string) (int, error) {
	return 0, channels.ErrNotSupported
}

// scheduleDelete removes a sent message again after the configured delay.
func (a *Adapter) scheduleDelete(chatID int64, messageID int) {
	delay := time.Duration(a.cfg.AutoDeleteAfter) * time.Second
	time.AfterFunc(delay, func() {
		if _, err := a.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
			a.logger.Warn("auto-delete failed", "message_id", messageID, "error", err)
		}
	})
}

// receiveUpdates long-polls for updates and normalizes them.
func (a *Adapter) receiveUpdates(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			// When a chat is configured, everything else is ignored.
			if a.cfg.TelegramChatID != 0 && update.Message.Chat.ID != a.cfg.TelegramChatID {
				continue
			}

			a.EnqueueMessage(&channels.InboundMessage{
				ID:          strconv.Itoa(update.Message.MessageID),
				UserID:      strconv.FormatInt(update.Message.From.ID, 10),
				UserName:    update.Message.From.UserName,
				ChannelName: "telegram",
				ChannelID:   strconv.FormatInt(update.Message.Chat.ID, 10),
				Content:     update.Message.Text,
				ReceivedAt:  time.Unix(int64(update.Message.Date), 0),
			})
		}
	}
}

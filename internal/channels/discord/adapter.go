// Package discord provides the Discord chat adapter.
//
// Outbound sends go through a single worker goroutine: callers enqueue a
// request with a reply channel and wait with a bounded timeout, so a slow
// or wedged gateway call can never block a command handler or the reminder
// loop. Each request is processed under its own recover.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/normanking/pia/internal/channels"
	"github.com/normanking/pia/internal/config"
)

const (
	enqueueTimeout = 2 * time.Second
	sendTimeout    = 10 * time.Second
	clearScanLimit = 100
)

// Adapter implements channels.Channel for Discord.
type Adapter struct {
	*channels.BaseChannel

	cfg      *config.Config
	session  *discordgo.Session
	logger   *slog.Logger
	requests chan *sendRequest

	running bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

type sendRequest struct {
	channelID string
	text      string
	done      chan sendResult // buffered, capacity 1
}

type sendResult struct {
	messageID string
	err       error
}

// New creates a Discord adapter.
func New(cfg *config.Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		BaseChannel: channels.NewBaseChannel("discord", cfg.DiscordEnabled),
		cfg:         cfg,
		logger:      logger.With("channel", "discord"),
		requests:    make(chan *sendRequest, 100),
	}
}

// Start opens the gateway connection and launches the send worker.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}
	if a.cfg.DiscordBotToken == "" {
		return fmt.Errorf("discord token not configured")
	}

	session, err := discordgo.New("Bot " + a.cfg.DiscordBotToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	session.AddHandler(a.handleMessageCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}

	a.session = session
	a.logger.Info("discord bot connected", "username", session.State.User.Username)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true

	go a.sendWorker(ctx)
	return nil
}

// Stop closes the gateway connection.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.session != nil {
		a.session.Close()
	}
	a.running = false
	a.logger.Info("discord adapter stopped")
	return nil
}

// Send delivers text to the given Discord channel through the worker.
func (a *Adapter) Send(channelID, text string) (bool, string) {
	if channelID == "" {
		return false, "discord channel not configured"
	}

	req := &sendRequest{
		channelID: channelID,
		text:      text,
		done:      make(chan sendResult, 1),
	}

	select {
	case a.requests <- req:
	case <-time.After(enqueueTimeout):
		return false, "discord send queue full"
	}

	select {
	case res := <-req.done:
		if res.err != nil {
			return false, res.err.Error()
		}
		return true, "sent"
	case <-time.After(sendTimeout):
		return false, "discord send timed out"
	}
}

// Broadcast sends text to the configured channel.
func (a *Adapter) Broadcast(text string) (bool, string) {
	return a.Send(a.cfg.DiscordChannelID, text)
}

// ClearBotMessages deletes the assistant's own messages among the most
// recent ones in the given channel.
func (a *Adapter) ClearBotMessages(channelID string) (int, error) {
	if channelID == "" {
		channelID = a.cfg.DiscordChannelID
	}
	if a.session == nil || channelID == "" {
		return 0, fmt.Errorf("discord not connected")
	}

	messages, err := a.session.ChannelMessages(channelID, clearScanLimit, "", "", "")
	if err != nil {
		return 0, fmt.Errorf("failed to list messages: %w", err)
	}

	deleted := 0
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.ID != a.session.State.User.ID {
			continue
		}
		if err := a.session.ChannelMessageDelete(channelID, msg.ID); err != nil {
			a.logger.Warn("failed to delete message", "message_id", msg.ID, "error", err)
			continue
		}
		deleted++
	}

	a.logger.Info("cleared bot messages", "channel_id", channelID, "count", deleted)
	return deleted, nil
}

// sendWorker serializes all outbound gateway calls.
func (a *Adapter) sendWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.requests:
			a.process(req)
		}
	}
}

// process executes one send. The recover keeps a panicking gateway call
// from killing the worker; the buffered done channel means a caller that
// already timed out never blocks the reply.
func (a *Adapter) process(req *sendRequest) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("discord send panicked", "panic", r)
			req.done <- sendResult{err: fmt.Errorf("discord send panicked: %v", r)}
		}
	}()

	msg, err := a.session.ChannelMessageSend(req.channelID, req.text)
	if err != nil {
		req.done <- sendResult{err: err}
		return
	}

	if a.cfg.AutoDeleteAfter > 0 {
		a.scheduleDelete(req.channelID, msg.ID)
	}
	req.done <- sendResult{messageID: msg.ID}
}

// scheduleDelete removes a sent message again after the configured delay.
func (a *Adapter) scheduleDelete(channelID, messageID string) {
	delay := time.Duration(a.cfg.AutoDeleteAfter) * time.Second
	time.AfterFunc(delay, func() {
		if err := a.session.ChannelMessageDelete(channelID, messageID); err != nil {
			a.logger.Warn("auto-delete failed", "message_id", messageID, "error", err)
		}
	})
}

// handleMessageCreate normalizes incoming Discord messages.
func (a *Adapter) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if m.Content == "" {
		return
	}
	// When a channel is configured, everything else is ignored.
	if a.cfg.DiscordChannelID != "" && m.ChannelID != a.cfg.DiscordChannelID {
		return
	}

	a.EnqueueMessage(&channels.InboundMessage{
		ID:          m.ID,
		UserID:      m.Author.ID,
		UserName:    m.Author.Username,
		ChannelName: "discord",
		ChannelID:   m.ChannelID,
		Content:     m.Content,
		ReceivedAt:  m.Timestamp,
	})
}

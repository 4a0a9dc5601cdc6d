// Package slack provides the Slack chat adapter using Socket Mode.
package slack

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/normanking/pia/internal/channels"
	"github.com/normanking/pia/internal/config"
)

// Adapter implements channels.Channel for Slack.
type Adapter struct {
	*channels.BaseChannel

	cfg    *config.Config
	client *slack.Client
	socket *socketmode.Client
	logger *slog.Logger

	running bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// New creates a Slack adapter.
func New(cfg *config.Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		BaseChannel: channels.NewBaseChannel("slack", cfg.SlackEnabled),
		cfg:         cfg,
		logger:      logger.With("channel", "slack"),
	}
}

// Start connects the Socket Mode client and begins the event loop.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}
	if a.cfg.SlackToken == "" {
		return fmt.Errorf("slack bot token not configured")
	}
	if a.cfg.SlackAppToken == "" {
		return fmt.Errorf("slack app token required for socket mode")
	}

	a.client = slack.New(
		a.cfg.SlackToken,
		slack.OptionAppLevelToken(a.cfg.SlackAppToken),
	)
	a.socket = socketmode.New(
		a.client,
		socketmode.OptionDebug(false),
	)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true

	go a.handleEvents(ctx)
	go func() {
		if err := a.socket.Run(); err != nil {
			a.logger.Error("socket mode error", "error", err)
		}
	}()

	a.logger.Info("slack adapter started")
	return nil
}

// Stop shuts the adapter down.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.running = false
	a.logger.Info("slack adapter stopped")
	return nil
}

// Send posts text to the given Slack channel.
func (a *Adapter) Send(channelID, text string) (bool, string) {
	if a.client == nil {
		return false, "slack not connected"
	}
	if channelID == "" {
		return false, "slack channel not configured"
	}

	_, ts, err := a.client.PostMessage(channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return false, err.Error()
	}

	if a.cfg.AutoDeleteAfter > 0 {
		a.scheduleDelete(channelID, ts)
	}
	return true, "sent"
}

// Broadcast posts text to the configured channel.
func (a *Adapter) Broadcast(text string) (bool, string) {
	return a.Send(a.cfg.SlackChannelID, text)
}

// ClearBotMessages is not implemented for Slack: listing conversation
// history needs extra scopes the bot does not request.
func (a *Adapter) ClearBotMessages(channelID string) (int, error) {
	return 0, channels.ErrNotSupported
}

// scheduleDelete removes a posted message again after the configured delay.
func (a *Adapter) scheduleDelete(channelID, ts string) {
	delay := time.Duration(a.cfg.AutoDeleteAfter) * time.Second
	time.AfterFunc(delay, func() {
		if _, _, err := a.client.DeleteMessage(channelID, ts); err != nil {
			a.logger.Warn("auto-delete failed", "ts", ts, "error", err)
		}
	})
}

// handleEvents processes incoming Socket Mode events.
func (a *Adapter) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-a.socket.Events:
			switch evt.Type {
			case socketmode.EventTypeEventsAPI:
				a.handleEventsAPI(evt)
			case socketmode.EventTypeConnecting:
				a.logger.Debug("connecting to slack")
			case socketmode.EventTypeConnected:
				a.logger.Info("connected to slack")
			case socketmode.EventTypeConnectionError:
				a.logger.Error("slack connection error")
			}
		}
	}
}

func (a *Adapter) handleEventsAPI(evt socketmode.Event) {
	eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	a.socket.Ack(*evt.Request)

	if eventsAPIEvent.Type != slackevents.CallbackEvent {
		return
	}

	ev, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return
	}
	// Ignore bot messages and message edits.
	if ev.BotID != "" || ev.SubType != "" || ev.Text == "" {
		return
	}
	// When a channel is configured, everything else is ignored.
	if a.cfg.SlackChannelID != "" && ev.Channel != a.cfg.SlackChannelID {
		return
	}

	a.EnqueueMessage(&channels.InboundMessage{
		ID:          ev.TimeStamp,
		UserID:      ev.User,
		ChannelName: "slack",
		ChannelID:   ev.Channel,
		Content:     ev.Text,
		ReceivedAt:  time.Now(),
	})
}

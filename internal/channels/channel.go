// Package channels provides the unified chat channel abstraction.
//
// A Channel is one connected chat platform (Discord, Telegram, Slack).
// Each adapter turns platform messages into InboundMessages and exposes a
// uniform send surface; the Router aggregates every adapter's inbound
// stream into a single channel and fans outbound broadcasts back out.
package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/normanking/pia/internal/apperr"
)

// Common errors
var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrNotSupported    = errors.New("operation not supported on this channel")
)

// Channel is the interface all chat adapters implement.
type Channel interface {
	// Lifecycle
	Name() string
	Start(ctx context.Context) error
	Stop() error
	IsEnabled() bool

	// Messaging
	Send(channelID, text string) (ok bool, detail string)
	Broadcast(text string) (ok bool, detail string)
	Incoming() <-chan *InboundMessage

	// ClearBotMessages deletes the assistant's own recent messages in the
	// given platform channel and returns how many were removed. Adapters
	// whose platform cannot do this return ErrNotSupported.
	ClearBotMessages(channelID string) (int, error)
}

// InboundMessage is one incoming chat message, normalized across platforms.
type InboundMessage struct {
	ID          string
	UserID      string
	UserName    string
	ChannelName string // "discord", "telegram", "slack"
	ChannelID   string // platform-specific channel/chat id
	Content     string
	ReceivedAt  time.Time
}

// BaseChannel carries the state every adapter shares: the name, the enabled
// flag and the buffered inbound queue. Adapters embed it.
type BaseChannel struct {
	name     string
	enabled  bool
	incoming chan *InboundMessage
}

// NewBaseChannel creates the shared adapter state.
func NewBaseChannel(name string, enabled bool) *BaseChannel {
	return &BaseChannel{
		name:     name,
		enabled:  enabled,
		incoming: make(chan *InboundMessage, 100),
	}
}

// Name returns the adapter name.
func (b *BaseChannel) Name() string {
	return b.name
}

// IsEnabled reports whether the adapter is enabled in configuration.
func (b *BaseChannel) IsEnabled() bool {
	return b.enabled
}

// Incoming returns the adapter's inbound message stream.
func (b *BaseChannel) Incoming() <-chan *InboundMessage {
	return b.incoming
}

// EnqueueMessage adds a message to the inbound queue. A full queue drops
// the message rather than blocking the platform callback.
func (b *BaseChannel) EnqueueMessage(msg *InboundMessage) {
	select {
	case b.incoming <- msg:
	default:
	}
}

// Close closes the inbound queue.
func (b *BaseChannel) Close() {
	close(b.incoming)
}

// Router manages the registered channels: one fan-in inbound stream, and
// broadcast plus administrative operations fanned out to the adapters.
type Router struct {
	mu       sync.RWMutex
	channels map[string]Channel
	incoming chan *InboundMessage
	done     chan struct{}
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		channels: make(map[string]Channel),
		incoming: make(chan *InboundMessage, 100),
		done:     make(chan struct{}),
	}
}

// Register adds a channel to the router.
func (r *Router) Register(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[ch.Name()] = ch
}

// Get retrieves a channel by name.
func (r *Router) Get(name string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// All returns all registered channels.
func (r *Router) All() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	return channels
}

// Enabled reports whether at least one enabled channel is registered.
func (r *Router) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.channels {
		if ch.IsEnabled() {
			return true
		}
	}
	return false
}

// Incoming returns the unified stream of messages from all channels.
func (r *Router) Incoming() <-chan *InboundMessage {
	return r.incoming
}

// StartAll starts every enabled channel and begins message aggregation.
func (r *Router) StartAll(ctx context.Context) error {
	r.mu.RLock()
	channels := make([]Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		if ch.IsEnabled() {
			channels = append(channels, ch)
		}
	}
	r.mu.RUnlock()

	for _, ch := range channels {
		if err := ch.Start(ctx); err != nil {
			return err
		}
	}

	for _, ch := range channels {
		go r.aggregateMessages(ctx, ch)
	}
	return nil
}

// aggregateMessages forwards one adapter's inbound stream to the unified one.
func (r *Router) aggregateMessages(ctx context.Context, ch Channel) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case msg, ok := <-ch.Incoming():
			if !ok {
				return
			}
			select {
			case r.incoming <- msg:
			case <-ctx.Done():
				return
			case <-r.done:
				return
			}
		}
	}
}

// StopAll stops all channels.
func (r *Router) StopAll() error {
	close(r.done)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var lastErr error
	for _, ch := range r.channels {
		if err := ch.Stop(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Send delivers text to a specific channel and platform channel id.
func (r *Router) Send(channelName, channelID, text string) (bool, string) {
	ch, ok := r.Get(channelName)
	if !ok {
		return false, ErrChannelNotFound.Error()
	}
	return ch.Send(channelID, text)
}

// Broadcast sends text to every enabled channel's configured destination.
// It succeeds when at least one channel delivered; the detail string
// collects the failures so callers can annotate their responses.
func (r *Router) Broadcast(text string) (bool, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := false
	var failures []string
	for _, ch := range r.channels {
		if !ch.IsEnabled() {
			continue
		}
		if ok, detail := ch.Broadcast(text); ok {
			delivered = true
		} else {
			failures = append(failures, ch.Name()+": "+detail)
		}
	}

	if delivered {
		return true, "delivered"
	}
	if len(failures) == 0 {
		return false, "no chat channel enabled"
	}
	return false, joinDetails(failures)
}

// ClearMessages clears the assistant's messages on the named channel.
// Failures come back with user-facing messages attached.
func (r *Router) ClearMessages(channelName, channelID string) (int, error) {
	ch, ok := r.Get(channelName)
	if !ok {
		return 0, apperr.Wrap(apperr.KindDelivery, "Clearing messages is only available in chat", ErrChannelNotFound)
	}

	count, err := ch.ClearBotMessages(channelID)
	if errors.Is(err, ErrNotSupported) {
		return 0, apperr.Wrap(apperr.KindDisabled, fmt.Sprintf("Clearing messages is not supported on %s", channelName), err)
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.KindDelivery, "Failed to clear messages", err)
	}
	return count, nil
}

func joinDetails(details []string) string {
	out := details[0]
	for _, d := range details[1:] {
		out += "; " + d
	}
	return out
}

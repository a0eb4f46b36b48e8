package bus

import "time"

// Kind discriminates what an inbound message carries.
type Kind string

const (
	KindCommand Kind = "command"
	KindVoice   Kind = "voice"
)

// InboundMessage represents a message received from a channel (e.g., Telegram).
type InboundMessage struct {
	Channel  string
	SenderID string
	ChatID   string
	Kind     Kind

	// Command fields (Kind == KindCommand)
	Command string // command name without the leading slash, e.g. "compile"
	Args    string

	// Voice fields (Kind == KindVoice)
	VoiceURL   string        // direct download URL for the audio file
	Duration   time.Duration // reported length of the recording
	ReceivedAt time.Time     // wall clock when the recording arrived
}

// OutboundMessage represents a message to be sent back to a channel.
type OutboundMessage struct {
	Channel string
	ChatID  string
	Content string
}

// MessageBus routes messages between channels and the bot core.
type MessageBus struct {
	Inbound  chan InboundMessage
	Outbound chan OutboundMessage
}

// NewMessageBus creates a new initialized MessageBus.
func NewMessageBus() *MessageBus {
	return &MessageBus{
		Inbound:  make(chan InboundMessage, 100),
		Outbound: make(chan OutboundMessage, 100),
	}
}

func (b *MessageBus) SendInbound(msg InboundMessage) {
	b.Inbound <- msg
}

func (b *MessageBus) SendOutbound(msg OutboundMessage) {
	b.Outbound <- msg
}

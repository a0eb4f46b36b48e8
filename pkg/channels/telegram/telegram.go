// Package telegram is the chat channel the bot listens on. Authorization is
// enforced here: only the single configured user reaches the core.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"voiceblog/pkg/bus"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Channel represents the Telegram integration.
type Channel struct {
	bot         *tgbotapi.BotAPI
	bus         *bus.MessageBus
	token       string
	allowedUser string
}

// NewChannel creates a new Telegram channel restricted to one user ID.
func NewChannel(token, allowedUser string, messageBus *bus.MessageBus) *Channel {
	return &Channel{
		token:       token,
		allowedUser: allowedUser,
		bus:         messageBus,
	}
}

// Start connects to Telegram and begins long polling for updates.
func (t *Channel) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("failed to init bot: %w", err)
	}
	t.bot = bot

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil {
					continue
				}

				userID := strconv.FormatInt(update.Message.From.ID, 10)
				chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

				if userID != t.allowedUser {
					log.Warn("rejected message from unauthorized user", "user", userID)
					t.send(chatID, "Sorry, you are not authorized to use this bot.")
					continue
				}

				t.handleIncoming(update, userID, chatID)
			}
		}
	}()

	return nil
}

func (t *Channel) handleIncoming(update tgbotapi.Update, userID, chatID string) {
	msg := update.Message

	if msg.IsCommand() {
		t.bus.SendInbound(bus.InboundMessage{
			Channel:  "telegram",
			SenderID: userID,
			ChatID:   chatID,
			Kind:     bus.KindCommand,
			Command:  msg.Command(),
			Args:     msg.CommandArguments(),
		})
		return
	}

	if msg.Voice != nil {
		fileURL, err := t.bot.GetFileDirectURL(msg.Voice.FileID)
		if err != nil {
			log.Error("failed to resolve voice file URL", "err", err)
			t.send(chatID, "Sorry, I couldn't fetch that voice message from Telegram.")
			return
		}

		t.bus.SendInbound(bus.InboundMessage{
			Channel:    "telegram",
			SenderID:   userID,
			ChatID:     chatID,
			Kind:       bus.KindVoice,
			VoiceURL:   fileURL,
			Duration:   time.Duration(msg.Voice.Duration) * time.Second,
			ReceivedAt: time.Now(),
		})
		return
	}

	// Plain text is not part of the workflow.
	log.Debug("ignoring non-voice message", "chat", chatID)
}

// SendMessage sends a response back to the Telegram chat.
func (t *Channel) SendMessage(ctx context.Context, chatID, content string) error {
	return t.send(chatID, content)
}

func (t *Channel) send(chatID, content string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	msg := tgbotapi.NewMessage(id, content)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Package bot is the core that sits between the chat channel and the daily
// pipeline: it routes commands, ingests voice recordings and reports results.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"voiceblog/pkg/bus"
	"voiceblog/pkg/pipeline"
	"voiceblog/pkg/providers"
	"voiceblog/pkg/publish"
	"voiceblog/pkg/transcript"

	"github.com/charmbracelet/log"
)

const (
	downloadTimeout   = 60 * time.Second
	transcribeTimeout = 2 * time.Minute

	welcomeText = "👋 Welcome to your Voice Blog Bot!\n\n" +
		"Send me voice messages throughout the day, and I'll compile them into a blog post every evening.\n\n" +
		"Commands:\n" +
		"/start - Show this message\n" +
		"/compile - Manually compile today's voice messages into a blog post\n" +
		"/status - Check how many voice messages you've sent today"
)

// CommandHandler produces the reply for one chat command.
type CommandHandler func(ctx context.Context, msg bus.InboundMessage) string

// Core owns the transcript store, the transcriber and the pipeline runner.
type Core struct {
	store       *transcript.Store
	transcriber providers.TranscriptionProvider
	runner      *pipeline.Runner
	msgBus      *bus.MessageBus
	client      *http.Client
	commands    map[string]CommandHandler
	now         func() time.Time
}

// NewCore wires the core and registers the built-in commands.
func NewCore(store *transcript.Store, transcriber providers.TranscriptionProvider, runner *pipeline.Runner, msgBus *bus.MessageBus) *Core {
	c := &Core{
		store:       store,
		transcriber: transcriber,
		runner:      runner,
		msgBus:      msgBus,
		client:      &http.Client{Timeout: downloadTimeout},
		commands:    make(map[string]CommandHandler),
		now:         time.Now,
	}

	c.Register("start", c.startCommand)
	c.Register("compile", c.compileCommand)
	c.Register("status", c.statusCommand)

	return c
}

// Register binds a command name (without the slash) to its handler.
func (c *Core) Register(name string, handler CommandHandler) {
	c.commands[name] = handler
}

// HandleInbound processes one message from the channel. It is safe to call
// from its own goroutine per message.
func (c *Core) HandleInbound(ctx context.Context, msg bus.InboundMessage) {
	switch msg.Kind {
	case bus.KindVoice:
		c.reply(msg, "🎤 Received your voice message! I'll add it to today's compilation.")
		c.ingestVoice(ctx, msg)
	case bus.KindCommand:
		handler, ok := c.commands[msg.Command]
		if !ok {
			log.Debug("ignoring unknown command", "command", msg.Command)
			return
		}
		if text := handler(ctx, msg); text != "" {
			c.reply(msg, text)
		}
	}
}

func (c *Core) reply(msg bus.InboundMessage, text string) {
	c.msgBus.SendOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: text,
	})
}

func (c *Core) startCommand(ctx context.Context, msg bus.InboundMessage) string {
	return welcomeText
}

func (c *Core) statusCommand(ctx context.Context, msg bus.InboundMessage) string {
	dayKey := transcript.DayKeyFor(c.now())
	count, err := c.store.Count(dayKey)
	if err != nil {
		log.Error("status: failed to count fragments", "day", dayKey, "err", err)
		return "Sorry, I couldn't read today's voice notes."
	}
	return fmt.Sprintf("You've sent %d voice messages today.", count)
}

func (c *Core) compileCommand(ctx context.Context, msg bus.InboundMessage) string {
	c.reply(msg, "Starting to compile today's voice messages...")
	c.CompileDay(ctx, transcript.DayKeyFor(c.now()), msg.Channel, msg.ChatID)
	return ""
}

// CompileDay runs the pipeline for a day and reports every outcome back to
// the chat. An empty chatID (scheduled run with nobody to notify) only logs.
func (c *Core) CompileDay(ctx context.Context, dayKey, channel, chatID string) {
	report, err := c.runner.Run(ctx, dayKey)
	if err != nil {
		var text string
		switch {
		case errors.Is(err, pipeline.ErrEmptyDay):
			text = "No voice messages were recorded today."
		case errors.Is(err, pipeline.ErrBusy):
			text = "A compilation is already running. Please wait for it to finish."
		case errors.Is(err, publish.ErrPersistence):
			text = fmt.Sprintf("❌ Could not save the blog post locally, aborting: %s", err)
		default:
			text = fmt.Sprintf("❌ Error during compilation: %s", err)
		}
		log.Info("compilation result", "day", dayKey, "result", text)
		c.notify(channel, chatID, text)
		return
	}

	preview := fmt.Sprintf("📝 Here's your blog post for %s:\n\n%s...\n\n(Processing for publishing...)",
		dayKey, truncate(report.Document.Body, 1000))
	c.notify(channel, chatID, preview)

	var text string
	switch report.Publish.Outcome {
	case publish.OutcomePublished:
		text = fmt.Sprintf("✅ Blog post published successfully! %s", report.Publish.Locator)
	case publish.OutcomeSkipped:
		text = fmt.Sprintf("📄 Blog post saved locally (publishing skipped: %s).", report.Publish.Reason)
	case publish.OutcomeFailed:
		text = fmt.Sprintf("❌ Failed to publish: %s", report.Publish.Reason)
	}
	log.Info("compilation result", "day", dayKey, "result", text)
	c.notify(channel, chatID, text)
}

func (c *Core) notify(channel, chatID, text string) {
	if chatID == "" || channel == "" {
		return
	}
	c.msgBus.SendOutbound(bus.OutboundMessage{Channel: channel, ChatID: chatID, Content: text})
}

// ingestVoice downloads the recording, transcribes it and appends the
// fragment. Transcription problems become a stored failure sentinel so the
// day's compilation can see the gap.
func (c *Core) ingestVoice(ctx context.Context, msg bus.InboundMessage) {
	captureTime := msg.ReceivedAt
	if captureTime.IsZero() {
		captureTime = c.now()
	}

	audioPath := c.store.AudioPath(captureTime)
	if err := c.download(ctx, msg.VoiceURL, audioPath); err != nil {
		log.Error("failed to download voice message", "err", err)
		c.appendFragment(captureTime, providers.FailureSentinel(err))
		return
	}
	log.Info("voice message saved", "file", audioPath, "duration", msg.Duration)

	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	text, err := c.transcriber.Transcribe(tctx, audioPath)
	if err != nil {
		log.Error("transcription failed", "file", audioPath, "err", err)
		c.appendFragment(captureTime, providers.FailureSentinel(err))
		return
	}

	// Prefix with the local capture time so the narrative keeps the day's
	// chronology visible.
	c.appendFragment(captureTime, fmt.Sprintf("[%s] %s", captureTime.Format("3:04 PM"), text))
}

func (c *Core) appendFragment(captureTime time.Time, text string) {
	frag := transcript.NewFragment(captureTime, text)
	if err := c.store.Append(frag); err != nil {
		log.Error("failed to store transcript", "day", frag.DayKey, "err", err)
		return
	}
	log.Info("transcript stored", "day", frag.DayKey, "time", captureTime.Format("15:04:05"))
}

func (c *Core) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

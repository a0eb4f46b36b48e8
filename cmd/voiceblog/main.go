package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voiceblog/pkg/archive"
	"voiceblog/pkg/bot"
	"voiceblog/pkg/bus"
	"voiceblog/pkg/channels/telegram"
	"voiceblog/pkg/config"
	"voiceblog/pkg/narrative"
	"voiceblog/pkg/pipeline"
	"voiceblog/pkg/providers"
	"voiceblog/pkg/publish"
	"voiceblog/pkg/schedule"
	"voiceblog/pkg/transcript"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func loadConfig() *config.Config {
	// Config file first, .env fallback (the original setup).
	cfg, err := config.Load()
	if err != nil {
		if err := godotenv.Load(); err != nil {
			log.Debug("no .env file found", "err", err)
		}
		cfg = config.FromEnv()
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	return cfg
}

func newTranscriber(cfg *config.Config) providers.TranscriptionProvider {
	switch cfg.TranscriptionBackend {
	case "groq":
		return providers.NewGroqTranscriptionProvider(cfg.TranscriptionAPIKey)
	case "whisper-cli":
		return providers.NewWhisperCLIProvider(cfg.TranscriptionModel)
	default:
		return providers.NewWhisperAPIProvider("", cfg.TranscriptionAPIKey, cfg.TranscriptionModel)
	}
}

// buildRunner assembles the daily pipeline from configuration.
func buildRunner(cfg *config.Config) (*pipeline.Runner, *transcript.Store, error) {
	store, err := transcript.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	arch, err := archive.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	dest, err := publish.ParseDestination(cfg.BlogPlatform)
	if err != nil {
		return nil, nil, err
	}

	chat := providers.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.NarrativeModel)
	generator := narrative.NewGenerator(chat, arch)
	publisher := publish.New(dest, cfg.BlogAPIURL, cfg.BlogAPIKey, arch)
	aggregator := pipeline.NewAggregator(store)

	return pipeline.NewRunner(aggregator, generator, publisher), store, nil
}

// runOnce compiles today's notes without starting the bot.
func runOnce() {
	cfg := loadConfig()

	runner, _, err := buildRunner(cfg)
	if err != nil {
		log.Fatal("failed to build pipeline", "err", err)
	}

	dayKey := transcript.DayKeyFor(time.Now())
	report, err := runner.Run(context.Background(), dayKey)
	switch {
	case errors.Is(err, pipeline.ErrEmptyDay):
		fmt.Println("No voice messages were recorded today.")
	case err != nil:
		log.Fatal("compilation failed", "err", err)
	default:
		outcome := string(report.Publish.Outcome)
		if report.Publish.Locator != "" {
			outcome += " " + report.Publish.Locator
		}
		if report.Publish.Reason != "" {
			outcome += " (" + report.Publish.Reason + ")"
		}
		fmt.Printf("Compiled %d notes for %s: %s\n", report.FragmentCount, dayKey, outcome)
	}
}

func main() {
	log.SetReportTimestamp(true)
	log.SetTimeFormat("15:04:05")
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}

	if len(os.Args) > 1 && os.Args[1] == "compile" {
		runOnce()
		return
	}

	log.Info("starting Voice Blog Bot")

	cfg := loadConfig()

	runner, store, err := buildRunner(cfg)
	if err != nil {
		log.Fatal("failed to build pipeline", "err", err)
	}

	msgBus := bus.NewMessageBus()
	core := bot.NewCore(store, newTranscriber(cfg), runner, msgBus)
	tgChannel := telegram.NewChannel(cfg.TelegramToken, cfg.TelegramAllowedUser, msgBus)
	janitor := bot.NewJanitor(store, cfg.RetentionDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go janitor.Start(ctx)

	// Scheduled compiles report to the allowed user's private chat.
	sched := schedule.New()
	if err := sched.Daily(cfg.CompileAt, func() {
		dayKey := transcript.DayKeyFor(time.Now())
		core.CompileDay(ctx, dayKey, "telegram", cfg.TelegramAllowedUser)
	}); err != nil {
		log.Fatal("failed to schedule daily compilation", "err", err)
	}
	sched.Start(ctx)

	if err := tgChannel.Start(ctx); err != nil {
		log.Fatal("failed to start Telegram channel", "err", err)
	}
	log.Info("Telegram channel started, listening for messages")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case inMsg := <-msgBus.Inbound:
				log.Debug("inbound message", "kind", inMsg.Kind, "chat", inMsg.ChatID)
				go core.HandleInbound(ctx, inMsg)

			case outMsg := <-msgBus.Outbound:
				if outMsg.Channel == "telegram" {
					if err := tgChannel.SendMessage(ctx, outMsg.ChatID, outMsg.Content); err != nil {
						log.Error("failed to send Telegram message", "err", err)
					}
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	cancel()
}

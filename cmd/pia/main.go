// Pia - personal assistant
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/normanking/pia/internal/bot"
	"github.com/normanking/pia/internal/channels"
	"github.com/normanking/pia/internal/channels/discord"
	"github.com/normanking/pia/internal/channels/slack"
	"github.com/normanking/pia/internal/channels/telegram"
	"github.com/normanking/pia/internal/command"
	"github.com/normanking/pia/internal/config"
	"github.com/normanking/pia/internal/llm"
	"github.com/normanking/pia/internal/logging"
	"github.com/normanking/pia/internal/notify"
	"github.com/normanking/pia/internal/scheduler"
	"github.com/normanking/pia/internal/shell"
	"github.com/normanking/pia/internal/speech"
	"github.com/normanking/pia/internal/store"
	"github.com/normanking/pia/internal/system"
	"github.com/normanking/pia/internal/tui"
	"github.com/normanking/pia/internal/voice"
	"github.com/normanking/pia/internal/weather"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	mode := flag.String("mode", "shell", "Front-end mode: shell, tui or voice")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Pia v%s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Default()
		logging.New().Warn("config not loaded, using defaults", "error", err)
	}

	logger := logging.FromConfig(cfg)
	defer logger.Close()
	logger.Info("starting pia", "version", version, "mode", *mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	if err := run(ctx, cfg, logger, *mode); err != nil {
		logger.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, mode string) error {
	st := store.New(cfg.NotesPath(), cfg.RemindersPath(), logger.Logger)

	var speaker speech.Speaker
	if cfg.SpeechEnabled || mode == "voice" {
		speaker = speech.NewSpeaker(cfg.Language)
	}

	ai := llm.New(cfg.LLMBaseURL(), cfg.LLMEnabled)
	warnStartup(ctx, cfg, ai, logger)

	router := channels.NewRouter()
	if cfg.DiscordEnabled {
		router.Register(discord.New(cfg, logger.Logger))
	}
	if cfg.TelegramEnabled {
		router.Register(telegram.New(cfg, logger.Logger))
	}
	if cfg.SlackEnabled {
		router.Register(slack.New(cfg, logger.Logger))
	}
	if err := router.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start chat channels: %w", err)
	}
	defer router.StopAll()

	interpreter := command.New(command.Options{
		Config:  cfg,
		Store:   st,
		Weather: weather.New(cfg.OpenWeatherAPIKey, cfg.Language),
		AI:      ai,
		Volume:  system.NewVolumeController(),
		Speaker: speaker,
		Chat:    router,
		Logger:  logger.Logger,
	})

	// Reminder notifications go to every configured destination.
	sinks := notify.NewSet()
	if speaker != nil {
		sinks.Add(notify.NewSpeechSink(speaker, logger.Logger))
	}
	if router.Enabled() {
		sinks.Add(notify.NewChatSink(router, logger.Logger))
	}
	sched := scheduler.New(st, sinks, time.Duration(cfg.PollInterval)*time.Second, logger.Logger)
	go sched.Run(ctx)

	if router.Enabled() {
		gateway := bot.New(cfg, router, interpreter, logger.Logger)
		go gateway.Run(ctx)
	}

	switch mode {
	case "shell":
		sh := shell.New(interpreter, speaker, os.Stdin, os.Stdout, logger.Logger)
		return sh.Run(ctx)

	case "tui":
		return runTUI(ctx, interpreter, logger)

	case "voice":
		recognizer := speech.NewRecognizer(cfg.SttCommand)
		if recognizer == nil {
			return fmt.Errorf("voice mode needs stt_command configured")
		}
		loop := voice.New(cfg, interpreter, recognizer, speaker, logger.Logger)
		return loop.Run(ctx)

	default:
		return fmt.Errorf("unknown mode %q (use shell, tui or voice)", mode)
	}
}

func runTUI(ctx context.Context, interpreter *command.Interpreter, logger *logging.Logger) error {
	t := tui.New()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-t.Messages():
				if msg == "" {
					continue
				}
				res := interpreter.Interpret(ctx, msg, command.Origin{Channel: "tui"})
				if res.Terminate {
					t.Quit()
					return
				}
				t.SendResponse(res.Text)
			}
		}
	}()

	return t.Run(ctx)
}

// warnStartup surfaces configuration problems that would otherwise only
// show up when the affected command runs.
func warnStartup(ctx context.Context, cfg *config.Config, ai *llm.Client, logger *logging.Logger) {
	if cfg.LLMEnabled {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := ai.Ping(pingCtx); err != nil {
			logger.Warn("AI server not reachable, 'ask' will fail until it is up", "error", err)
		}
	}
	if cfg.DiscordEnabled && cfg.DiscordBotToken == "" {
		logger.Warn("discord enabled but no token configured")
	}
	if cfg.TelegramEnabled && cfg.TelegramToken == "" {
		logger.Warn("telegram enabled but no token configured")
	}
	if cfg.SlackEnabled && (cfg.SlackToken == "" || cfg.SlackAppToken == "") {
		logger.Warn("slack enabled but tokens incomplete")
	}
	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("no weather API key configured, 'weather' is disabled")
	}
}

// ABOUTME: Entry point for the finance chat bot.
// ABOUTME: Validates config, wires the session to the interpreter, and runs until killed.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mdp/qrterminal/v3"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/config"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/credentials"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/dedupe"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/handler"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/router"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/session"
	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/whatsapp"
)

const banner = `
    ╭──────────────────────────────────╮
    │                                  │
    │   ┏━╸╻┏┓╻┏━┓┏┓╻┏━╸┏━╸   ┏┓ ┏━┓╺┳╸│
    │   ┣╸ ┃┃┗┫┣━┫┃┗┫┃  ┣╸    ┣┻┓┃ ┃ ┃ │
    │   ╹  ╹╹ ╹╹ ╹╹ ╹┗━╸┗━╸   ┗━┛┗━┛ ╹ │
    │                                  │
    │         finance chat bot         │
    │                                  │
    ╰──────────────────────────────────╯
`

// dedupWindow is how long a routed message key stays remembered.
// Reconnects can redeliver a few minutes of recent history.
const dedupWindow = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	reset := flag.Bool("reset", false, "wipe stored session credentials and exit")
	flag.Parse()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	creds, err := credentials.Open(ctx, cfg.SessionDBPath, logger)
	if err != nil {
		return err
	}
	defer creds.Close()

	if *reset {
		if err := creds.Wipe(ctx); err != nil {
			return err
		}
		fmt.Println("Credentials wiped; the next start will require pairing.")
		return nil
	}

	// Print startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Bot number:  %s\n", cfg.BotPhoneNumber)
	green.Print("    ▶ ")
	fmt.Printf("Session db:  %s\n", cfg.SessionDBPath)
	green.Print("    ▶ ")
	fmt.Printf("Spreadsheet: %s\n", cfg.SpreadsheetID)
	green.Print("    ▶ ")
	fmt.Printf("Allowed:     %d chat(s)\n", cfg.Allowed.Len())
	fmt.Println()

	var h handler.Handler
	if cfg.HandlerURL != "" {
		h = handler.NewHTTP(cfg.HandlerURL)
	} else {
		logger.Warn("HANDLER_URL not set, echoing messages back")
		h = handler.Echo()
	}

	seen := dedupe.New(dedupWindow, 10_000, time.Minute)
	defer seen.Close()

	transport := whatsapp.NewTransport(creds, logger)
	sess := session.New(transport, session.DefaultPolicy(cfg.ReconnectDelay), logger)
	rt := router.New(cfg.Allowed, h, sess, seen, cfg.HandlerTimeout, logger)

	sess.OnMessage(rt.HandleInbound)
	sess.OnPairing(displayPairingCode)

	logger.Info("starting session",
		"reconnect_delay", cfg.ReconnectDelay,
		"allowed_chats", cfg.Allowed.Len(),
	)

	err = sess.Run(ctx)
	if errors.Is(err, session.ErrLoggedOut) {
		return fmt.Errorf("logged out by the remote party; run with -reset (store: %s) and pair again", creds.Path())
	}
	return err
}

// displayPairingCode renders the pairing payload in the terminal, as a
// scannable QR block and as raw text.
func displayPairingCode(code string) {
	fmt.Println("\nScan this code from WhatsApp > Linked Devices:")
	qrterminal.GenerateHalfBlock(code, qrterminal.L, os.Stdout)
	fmt.Printf("Raw pairing code:\n%s\n\n", code)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

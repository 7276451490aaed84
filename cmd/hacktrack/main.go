// Command hacktrack is a terminal chat client for the hacktrack event
// assistant.
//
// Usage:
//
//	hacktrack [flags] [chat]
//	hacktrack signin-url
//
// Settings are read from the environment (and a .env file, if present) and
// can be overridden by flags. See config.go for the variables.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/hacktrack"
	bt "github.com/fwojciec/hacktrack/bubbletea"
	"github.com/fwojciec/hacktrack/google"
	hthttp "github.com/fwojciec/hacktrack/http"
	"github.com/fwojciec/hacktrack/ical"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "hacktrack: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "hacktrack",
		Usage:  "Chat with the hacktrack assistant about hackathons and events.",
		Flags:  flags(),
		Action: runChat,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "Run the chat client (default).",
				Action: runChat,
			},
			{
				Name:   "signin-url",
				Usage:  "Print the URL to visit to sign in.",
				Action: printSignInURL,
			},
		},
	}
}

func runChat(c *cli.Context) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	cfg = applyFlags(cfg, c)

	logger, closeLog, err := setupLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	session := hacktrack.NewSession()
	client := hthttp.New(cfg.BaseURL, session.TokenSource(), hthttp.WithLogger(logger))

	var shareOpts []ical.Option
	if cfg.ShareDir != "" {
		shareOpts = append(shareOpts, ical.WithDir(cfg.ShareDir))
	}
	sharer := ical.New(cfg.BaseURL, shareOpts...)

	var chatOpts []hacktrack.ChatOption
	if cfg.RequireSignIn {
		chatOpts = append(chatOpts, hacktrack.WithChatPolicy(hacktrack.ChatRequireSignIn))
	}
	chat := hacktrack.NewChat(client, session, chatOpts...)
	dispatcher := hacktrack.NewDispatcher(client, session, sharer)

	m := bt.New(chat, dispatcher, session, identityProvider(cfg), hacktrack.DefaultTheme(), bt.Config{
		Logger:        logger,
		ParseIdentity: google.ParseIdentity,
		ReplyHold:     cfg.ReplyHold,
	})

	var initial []tea.Msg
	if cfg.IDToken != "" {
		initial = append(initial, bt.SignInMsg{Identity: startupIdentity(cfg.IDToken)})
	}

	logger.Info("starting", "base_url", cfg.BaseURL, "require_signin", cfg.RequireSignIn)
	if err := bt.Run(ctx, m, initial...); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

func printSignInURL(c *cli.Context) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	cfg = applyFlags(cfg, c)
	provider := identityProvider(cfg)
	if provider == nil {
		return errors.New("GOOGLE_CLIENT_ID is not set")
	}
	fmt.Fprintln(c.App.Writer, provider.SignInURL(uuid.NewString()))
	return nil
}

// identityProvider returns the Google sign-in flow, or nil when no client is
// configured.
func identityProvider(cfg config) hacktrack.IdentityProvider {
	if cfg.ClientID == "" {
		return nil
	}
	return google.New(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL)
}

// startupIdentity decodes display claims from raw, keeping it opaque when it
// is not a JWT.
func startupIdentity(raw string) hacktrack.Identity {
	id, err := google.ParseIdentity(raw)
	if err != nil {
		return hacktrack.Identity{Token: raw}
	}
	return id
}

// setupLogger opens path for appending and returns a text logger writing to
// it at level. An empty path discards logs.
func setupLogger(level, path string) (*slog.Logger, func(), error) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
	return logger, func() { _ = f.Close() }, nil
}

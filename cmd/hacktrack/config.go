package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/urfave/cli/v2"
)

// config holds the settings read from the environment. Flags override
// values that were set on the command line.
type config struct {
	BaseURL       string        `env:"HACKTRACK_BASE_URL" envDefault:"http://localhost:5000"`
	ClientID      string        `env:"GOOGLE_CLIENT_ID"`
	ClientSecret  string        `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL   string        `env:"HACKTRACK_REDIRECT_URL" envDefault:"http://localhost"`
	IDToken       string        `env:"HACKTRACK_ID_TOKEN"`
	RequireSignIn bool          `env:"HACKTRACK_REQUIRE_SIGNIN_FOR_CHAT" envDefault:"false"`
	ShareDir      string        `env:"HACKTRACK_SHARE_DIR"`
	ReplyHold     time.Duration `env:"HACKTRACK_REPLY_HOLD" envDefault:"15s"`
	LogFile       string        `env:"HACKTRACK_LOG_FILE"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// loadConfig parses environ (KEY -> value) into a config. A nil environ
// reads the process environment.
func loadConfig(environ map[string]string) (config, error) {
	var cfg config
	var opts env.Options
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.Parse(&cfg, opts); err != nil {
		return config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile()
	}
	return cfg, nil
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".hacktrack", "hacktrack.log")
}

// flags returns the global flags. They have no defaults of their own so an
// unset flag leaves the environment value in place.
func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "base-url", Usage: "Backend base URL."},
		&cli.StringFlag{Name: "redirect-url", Usage: "OAuth redirect URL."},
		&cli.StringFlag{Name: "id-token", Usage: "Sign in with this ID token on start."},
		&cli.BoolFlag{Name: "require-signin", Usage: "Refuse to chat while signed out."},
		&cli.StringFlag{Name: "share-dir", Usage: "Write .ics files for shared events here."},
		&cli.StringFlag{Name: "log-file", Usage: "Log file path."},
		&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error."},
	}
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cfg config, c *cli.Context) config {
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("redirect-url") {
		cfg.RedirectURL = c.String("redirect-url")
	}
	if c.IsSet("id-token") {
		cfg.IDToken = c.String("id-token")
	}
	if c.IsSet("require-signin") {
		cfg.RequireSignIn = c.Bool("require-signin")
	}
	if c.IsSet("share-dir") {
		cfg.ShareDir = c.String("share-dir")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg
}

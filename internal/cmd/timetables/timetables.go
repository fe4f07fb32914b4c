// Package timetables parses the server configuration and runs the MCP
// timetables service on the selected transport.
package timetables

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	platformcmd "github.com/louisbranch/db-timetables-mcp/internal/platform/cmd"
	"github.com/louisbranch/db-timetables-mcp/internal/platform/logging"
	"github.com/louisbranch/db-timetables-mcp/internal/services/mcp/service"
	"github.com/louisbranch/db-timetables-mcp/internal/services/timetable/client"
)

// ErrMissingCredentials reports that the upstream client id or secret is unset.
var ErrMissingCredentials = errors.New("missing DB_TIMETABLE_CLIENT_ID or DB_TIMETABLE_CLIENT_SECRET")

// Config holds the server configuration.
type Config struct {
	ClientID     string `env:"DB_TIMETABLE_CLIENT_ID"`
	ClientSecret string `env:"DB_TIMETABLE_CLIENT_SECRET"`
	BaseURL      string `env:"DB_TIMETABLE_BASE_URL"      envDefault:"https://apis.deutschebahn.com/db-api-marketplace/apis/timetables/v1"`

	Transport string `env:"DB_TIMETABLE_TRANSPORT" envDefault:"stdio"`
	HTTPAddr  string `env:"DB_TIMETABLE_HTTP_ADDR" envDefault:"localhost"`
	Port      int    `env:"DB_TIMETABLE_PORT"      envDefault:"8080"`
	Endpoint  string `env:"DB_TIMETABLE_ENDPOINT"  envDefault:"/sse"`

	LogLevel  string `env:"DB_TIMETABLE_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"DB_TIMETABLE_LOG_FORMAT" envDefault:"text"`
	Locale    string `env:"DB_TIMETABLE_LOCALE"     envDefault:"en-US"`

	// HTTPTimeout bounds each upstream request; zero leaves it unbounded.
	HTTPTimeout  time.Duration `env:"DB_TIMETABLE_HTTP_TIMEOUT"      envDefault:"0s"`
	AllowedHosts []string      `env:"DB_TIMETABLE_MCP_ALLOWED_HOSTS" envSeparator:","`
	AuthToken    string        `env:"DB_TIMETABLE_MCP_AUTH_TOKEN"`
}

// ParseConfig parses the process environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	return parseConfig(fs, args, nil)
}

// parseConfig reads environ instead of the process environment when it is
// not nil. Flags win over the environment.
func parseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg, environ); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "timetables API base URL")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport type: stdio, sse or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "listener host for network transports")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "listener port for network transports")
	fs.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "listener path for network transports")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "language of client-facing error messages")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration problem.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return ErrMissingCredentials
	}
	if _, err := service.ParseTransportKind(c.Transport); err != nil {
		return err
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative")
	}
	return nil
}

// NewLogger builds the process logger from the log settings.
func (c Config) NewLogger() (*slog.Logger, error) {
	return logging.New(logging.Config{Level: c.LogLevel, Format: c.LogFormat})
}

// ListenAddr joins the listener host and port.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(strings.TrimSpace(c.HTTPAddr), strconv.Itoa(c.Port))
}

// Run starts the MCP server and blocks until ctx ends.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	transport, err := service.ParseTransportKind(cfg.Transport)
	if err != nil {
		return err
	}

	apiClient, err := client.New(client.Config{
		BaseURL:      cfg.BaseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.HTTPTimeout,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("create timetables client: %w", err)
	}

	return platformcmd.Run(ctx, platformcmd.ServiceMCP, platformcmd.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{
			Transport:    transport,
			HTTPAddr:     cfg.ListenAddr(),
			Endpoint:     cfg.Endpoint,
			AllowedHosts: cfg.AllowedHosts,
			AuthToken:    cfg.AuthToken,
			Locale:       cfg.Locale,
		}, apiClient, logger)
	})
}

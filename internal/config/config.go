package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	ServiceName string        `env:"SERVICE_NAME" envDefault:"campaign-dashboard"`
	ResultsPath string        `env:"RESULTS_PATH" envDefault:"results.json"` // archivo local o URL http(s)
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`

	DemoMode    bool          `env:"DEMO_MODE" envDefault:"false"`
	RevealDelay time.Duration `env:"REVEAL_DELAY" envDefault:"5s"`

	DefaultSelectionSize int    `env:"DEFAULT_SELECTION_SIZE" envDefault:"5"`
	InlineActions        int    `env:"INLINE_ACTIONS" envDefault:"3"`
	LeaderboardSize      int    `env:"LEADERBOARD_SIZE" envDefault:"3"`
	SecondaryMetric      string `env:"CHART_SECONDARY_METRIC" envDefault:"ctr"`

	AgentURL     string  `env:"AGENT_RUN_URL"`
	AgentRPS     float64 `env:"AGENT_RUN_RPS" envDefault:"0.2"`
	AgentCommand string  `env:"AGENT_RUN_HINT" envDefault:"py -m backend.main"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.InlineActions < 0 {
		cfg.InlineActions = 0
	}
	if cfg.DefaultSelectionSize < 0 {
		cfg.DefaultSelectionSize = 0
	}
	if cfg.LeaderboardSize < 0 {
		cfg.LeaderboardSize = 0
	}
	return cfg, nil
}

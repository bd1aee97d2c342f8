package config

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string `envconfig:"DB_PATH" default:"vct_status.db" validate:"required"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal disabled"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080" validate:"required,numeric"`

	BaseURL       string        `envconfig:"VLR_BASE_URL" default:"https://www.vlr.gg" validate:"required,url"`
	UserAgent     string        `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
	FetchTimeout  time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s" validate:"gt=0"`
	FetchCooldown time.Duration `envconfig:"FETCH_COOLDOWN" default:"1500ms" validate:"gte=0"`

	ImageOutputDir     string `envconfig:"IMAGE_OUTPUT_DIR" default:"./generated_images"`
	FontPath           string `envconfig:"FONT_PATH"`
	LogoDir            string `envconfig:"LOGO_DIR" default:"./logos"`
	ReportImageBaseURL string `envconfig:"REPORT_IMAGE_BASE_URL" default:"https://web.haojiao.cc" validate:"required,url"`
	ExpectedPlayers    int    `envconfig:"EXPECTED_PLAYERS" default:"10" validate:"gte=1"`

	WatchSchedule string `envconfig:"WATCH_SCHEDULE" default:"@every 30m" validate:"required"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, crerr.Wrap(err, "failed to read environment")
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, crerr.Wrap(err, "invalid configuration")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("base_url", cfg.BaseURL).
		Str("log_level", cfg.LogLevel).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Dur("fetch_cooldown", cfg.FetchCooldown).
		Msg("configuration loaded")

	return &cfg, nil
}

var Module = fx.Provide(Load)

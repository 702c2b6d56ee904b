package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SignalScout/internal/model"
	"SignalScout/internal/screener"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"`
		FileEnabled   bool   `yaml:"file_enabled"`
		FilePath      string `yaml:"file_path"`
		RotationSize  int    `yaml:"rotation_size"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"log"`
	DataSource struct {
		Provider  string        `yaml:"provider"` // yahoo, rest, mock
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		CachePath string        `yaml:"cache_path"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
	} `yaml:"data_source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DayTradeCron string `yaml:"daytrade_cron"`
		SwingCron    string `yaml:"swing_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Predictor struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"predictor"`
	Screening struct {
		DayTrade ScreeningConfig `yaml:"daytrade"`
		Swing    ScreeningConfig `yaml:"swing"`
	} `yaml:"screening"`
	Proxy string `yaml:"proxy"`
}

// ScreeningConfig overrides the mode defaults of a screener.Policy.
// Zero values keep the default.
type ScreeningConfig struct {
	Symbols        []string `yaml:"symbols"`
	LookbackMonths int      `yaml:"lookback_months"`
	MAVariant      int      `yaml:"ma_variant"`
	RSIThreshold   float64  `yaml:"rsi_threshold"`
	ScoreCutoff    int      `yaml:"score_cutoff"`
	MaxCandidates  int      `yaml:"max_candidates"`
	LiquidityGate  *bool    `yaml:"liquidity_gate"`
	MinVolatility  float64  `yaml:"min_volatility"`
	Concurrency    int      `yaml:"concurrency"`
}

// Load reads config from a YAML file, then .env, then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("DATA_PROVIDER", &c.DataSource.Provider)
	setString("BARS_BASE_URL", &c.DataSource.BaseURL)
	setString("BARS_API_KEY", &c.DataSource.APIKey)
	setString("SQLITE_PATH", &c.DataSource.CachePath)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("CRON_DAYTRADE", &c.Schedule.DayTradeCron)
	setString("CRON_SWING", &c.Schedule.SwingCron)
	setString("SERVER_ADDR", &c.Server.Addr)
	setString("PREDICTOR_URL", &c.Predictor.URL)
	setString("HTTPS_PROXY", &c.Proxy)

	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DataSource.CacheTTL = d
		}
	}
	if v := os.Getenv("MAX_CANDIDATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Screening.DayTrade.MaxCandidates = n
			c.Screening.Swing.MaxCandidates = n
		}
	}
	if v := os.Getenv("SCREEN_SYMBOLS"); v != "" {
		symbols := splitSymbols(v)
		c.Screening.DayTrade.Symbols = symbols
		c.Screening.Swing.Symbols = symbols
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = "logs"
	}
	if c.Log.RotationSize == 0 {
		c.Log.RotationSize = 50
	}
	if c.Log.RetentionDays == 0 {
		c.Log.RetentionDays = 14
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.CachePath == "" {
		c.DataSource.CachePath = "data/signalscout.db"
	}
	if c.DataSource.CacheTTL == 0 {
		c.DataSource.CacheTTL = 6 * time.Hour
	}
	// Asia/Taipei market hours: day-trade screen before the open, swing after the close.
	if c.Schedule.DayTradeCron == "" {
		c.Schedule.DayTradeCron = "0 30 8 * * 1-5"
	}
	if c.Schedule.SwingCron == "" {
		c.Schedule.SwingCron = "0 0 14 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Predictor.Timeout == 0 {
		c.Predictor.Timeout = 5 * time.Second
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	if c.DataSource.CacheTTL < 0 {
		return fmt.Errorf("data_source.cache_ttl must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	for _, mode := range []model.ScreenMode{model.ModeDayTrade, model.ModeSwing} {
		p, err := c.Policy(mode)
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("screening.%s: %w", mode, err)
		}
	}
	return nil
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Policy builds the screening policy of a mode from its defaults and overrides.
func (c *Config) Policy(mode model.ScreenMode) (screener.Policy, error) {
	p, err := screener.PolicyFor(mode)
	if err != nil {
		return p, err
	}
	sc := c.Screening.DayTrade
	if mode == model.ModeSwing {
		sc = c.Screening.Swing
	}
	if len(sc.Symbols) > 0 {
		p.Symbols = sc.Symbols
	}
	if sc.LookbackMonths != 0 {
		p.Lookback = model.Lookback(sc.LookbackMonths)
	}
	if sc.MAVariant != 0 {
		p.Variant = model.MAVariant(sc.MAVariant)
	}
	if sc.RSIThreshold != 0 {
		p.RSIThreshold = sc.RSIThreshold
	}
	if sc.ScoreCutoff != 0 {
		p.ScoreCutoff = sc.ScoreCutoff
	}
	if sc.MaxCandidates != 0 {
		p.MaxCandidates = sc.MaxCandidates
	}
	if sc.LiquidityGate != nil {
		p.SkipLiquidityGate = !*sc.LiquidityGate
	}
	if sc.MinVolatility != 0 {
		p.MinVolatility = sc.MinVolatility
	}
	if sc.Concurrency != 0 {
		p.Concurrency = sc.Concurrency
	}
	return p, nil
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

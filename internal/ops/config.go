package ops

import (
	stderrors "errors"
	"io/fs"
	"os"
	"time"

	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/exchange"

	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
)

// Config is the runner configuration. Defaults come from the env tags, the
// environment overrides them and a JSON file, when given, overrides both.
type Config struct {
	Host               string `env:"EXCHANGE_HOST" envDefault:"localhost" json:"host"`
	InfoPort           int    `env:"EXCHANGE_INFO_PORT" envDefault:"7001" json:"infoPort"`
	ExecPort           int    `env:"EXCHANGE_EXEC_PORT" envDefault:"8001" json:"execPort"`
	MaxTradeHistory    int    `env:"EXCHANGE_MAX_TRADE_HISTORY" envDefault:"100" json:"maxTradeHistory"`
	FullMessageLogging bool   `env:"EXCHANGE_FULL_MESSAGE_LOGGING" json:"fullMessageLogging"`
	DialAttempts       int    `env:"EXCHANGE_DIAL_ATTEMPTS" envDefault:"3" json:"dialAttempts"`
	InfoOnly           bool   `env:"EXCHANGE_INFO_ONLY" json:"infoOnly"`

	Username      string `env:"EXCHANGE_USERNAME" json:"username"`
	Password      string `env:"EXCHANGE_PASSWORD" json:"password"`
	AdminPassword string `env:"EXCHANGE_ADMIN_PASSWORD" json:"adminPassword"`

	// ReportInterval is nanoseconds in JSON.
	ReportInterval time.Duration `env:"REPORT_INTERVAL" envDefault:"5s" json:"reportInterval"`
	MetricsAddr    string        `env:"METRICS_ADDR" json:"metricsAddr"`
	PyroscopeAddr  string        `env:"PYROSCOPE_ADDR" json:"pyroscopeAddr"`
	JournalDSN     string        `env:"JOURNAL_DSN" json:"journalDsn"`
}

// Load reads envFile (skipped when missing), the environment and the JSON file
// at path (skipped when empty), then validates the result.
func Load(envFile, path string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "load env file %s", envFile)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{}); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := sonic.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "decode config %s", path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.Wrap(exception.ErrInvalidConfig, "host is empty")
	}
	if !validPort(c.InfoPort) {
		return errors.Wrapf(exception.ErrInvalidConfig, "info port %d out of range", c.InfoPort)
	}
	if !validPort(c.ExecPort) {
		return errors.Wrapf(exception.ErrInvalidConfig, "exec port %d out of range", c.ExecPort)
	}
	if c.MaxTradeHistory <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "max trade history must be > 0, got %d", c.MaxTradeHistory)
	}
	if c.DialAttempts <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "dial attempts must be > 0, got %d", c.DialAttempts)
	}
	if !c.InfoOnly && c.Username == "" {
		return errors.Wrap(exception.ErrInvalidConfig, "username is required unless info only")
	}
	if c.ReportInterval <= 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "report interval must be > 0")
	}
	return nil
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

// Exchange resolves the connection part of the configuration.
func (c Config) Exchange() exchange.Config {
	cfg := exchange.DefaultConfig()
	cfg.Host = c.Host
	cfg.InfoPort = c.InfoPort
	cfg.ExecPort = c.ExecPort
	cfg.MaxTradeHistory = c.MaxTradeHistory
	cfg.FullMessageLogging = c.FullMessageLogging
	cfg.DialAttempts = c.DialAttempts
	return cfg
}

func (c Config) Credentials() exchange.Credentials {
	return exchange.Credentials{
		Username:      c.Username,
		Password:      c.Password,
		AdminPassword: c.AdminPassword,
	}
}

package config

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/dtm-tools/internal/fetcher"
	"github.com/sells-group/dtm-tools/internal/model"
	"github.com/sells-group/dtm-tools/internal/report"
)

// Config holds the full application configuration.
type Config struct {
	Compare CompareConfig `yaml:"compare" mapstructure:"compare"`
	Load    LoadConfig    `yaml:"load" mapstructure:"load"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CompareConfig configures labeling and the columns read from each table.
type CompareConfig struct {
	Policy          string `yaml:"policy" mapstructure:"policy"`
	TagColumn       string `yaml:"tag_column" mapstructure:"tag_column"`
	VarexColumn     string `yaml:"varex_column" mapstructure:"varex_column"`
	RationaleColumn string `yaml:"rationale_column" mapstructure:"rationale_column"`
	Format          string `yaml:"format" mapstructure:"format"`
}

// LoadConfig configures table parsing.
type LoadConfig struct {
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`
}

// FetchConfig configures remote table sources.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// BatchConfig configures the batch subcommand.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DTM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("compare.policy", string(model.PolicyThreeWay))
	v.SetDefault("compare.tag_column", "classification_tags")
	v.SetDefault("compare.varex_column", "variance explained")
	v.SetDefault("compare.rationale_column", "rationale")
	v.SetDefault("compare.format", string(report.FormatText))
	v.SetDefault("load.delimiter", "")
	v.SetDefault("load.encoding", "utf-8")
	v.SetDefault("load.sheet", "")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 1)
	v.SetDefault("fetch.user_agent", "dtm-tools/1.0")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate rejects values the comparison cannot use.
func (c *Config) Validate() error {
	if _, err := model.ParseLabelPolicy(c.Compare.Policy); err != nil {
		return eris.Wrap(err, "config: compare.policy")
	}
	if _, err := report.ParseFormat(c.Compare.Format); err != nil {
		return eris.Wrap(err, "config: compare.format")
	}
	if _, err := c.Load.DelimiterRune(); err != nil {
		return err
	}
	if c.Batch.Concurrency < 1 {
		return eris.Errorf("config: batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	return nil
}

// DelimiterRune converts the configured delimiter. Empty means auto-detect;
// "tab" and `\t` name the tab character.
func (l LoadConfig) DelimiterRune() (rune, error) {
	switch l.Delimiter {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "comma":
		return ',', nil
	}
	if utf8.RuneCountInString(l.Delimiter) != 1 {
		return 0, eris.Errorf("config: load.delimiter must be a single character, got %q", l.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(l.Delimiter)
	return r, nil
}

// FetcherOptions builds the remote fetcher options.
func (f FetchConfig) FetcherOptions() fetcher.Options {
	timeout := time.Duration(f.TimeoutSecs) * time.Second
	return fetcher.Options{
		HTTP: fetcher.HTTPOptions{
			UserAgent:  f.UserAgent,
			Timeout:    timeout,
			MaxRetries: f.MaxRetries,
		},
		FTP: fetcher.FTPOptions{Timeout: timeout},
	}
}

// InitLogger initializes the global zap logger. Logs go to stderr so that the
// report on stdout stays clean.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

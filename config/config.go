// Package config loads engine, action, HTTP and logging settings from YAML or
// JSON.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/executor"
	"github.com/goliatone/go-uiflow/httpclient"
	"github.com/goliatone/go-uiflow/logging"
	"github.com/goliatone/go-uiflow/render"
)

const CodeInvalidConfig = "INVALID_CONFIG"

var ErrInvalidConfig = apperrors.New("invalid configuration", apperrors.CategoryValidation).
	WithTextCode(CodeInvalidConfig)

type Config struct {
	Engine  EngineConfig  `yaml:"engine" json:"engine"`
	Actions ActionsConfig `yaml:"actions" json:"actions"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

type EngineConfig struct {
	SupportedVersions string `yaml:"supported_versions" json:"supported_versions"`
	StrictProperties  bool   `yaml:"strict_properties" json:"strict_properties"`
	BindProperties    bool   `yaml:"bind_properties" json:"bind_properties"`
}

type ActionsConfig struct {
	ResponseKey string `yaml:"response_key" json:"response_key"`
}

type HTTPConfig struct {
	BaseURL    string            `yaml:"base_url" json:"base_url"`
	Timeout    Duration          `yaml:"timeout" json:"timeout"`
	MaxRetries int               `yaml:"max_retries" json:"max_retries"`
	RateLimit  float64           `yaml:"rate_limit" json:"rate_limit"`
	Burst      int               `yaml:"burst" json:"burst"`
	Headers    map[string]string `yaml:"headers" json:"headers"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Duration accepts Go duration strings ("1.5s") or a number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			SupportedVersions: render.DefaultSupportedVersions,
			BindProperties:    true,
		},
		Actions: ActionsConfig{ResponseKey: executor.DefaultResponseKey},
		HTTP: HTTPConfig{
			Timeout: Duration(httpclient.DefaultTimeout),
			Burst:   1,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Parse decodes YAML or JSON on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		// yaml handles JSON too, so a single attempt is fine
		return cfg, uiflow.NewError(ErrInvalidConfig, "config does not parse", err, nil)
	}
	return cfg, cfg.Validate()
}

// Load reads path; "-" reads stdin.
func Load(path string) (Config, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Default(), uiflow.NewError(ErrInvalidConfig, "cannot read config "+path, err, map[string]any{"path": path})
	}
	return Parse(data)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Engine.SupportedVersions) != "" {
		if _, err := semver.NewConstraint(c.Engine.SupportedVersions); err != nil {
			return invalid("engine.supported_versions", err.Error())
		}
	}
	if strings.TrimSpace(c.Actions.ResponseKey) == "" {
		return invalid("actions.response_key", "must not be empty")
	}
	if c.HTTP.BaseURL != "" {
		u, err := url.Parse(c.HTTP.BaseURL)
		if err != nil || !u.IsAbs() {
			return invalid("http.base_url", "must be an absolute url")
		}
	}
	if c.HTTP.Timeout < 0 {
		return invalid("http.timeout", "must not be negative")
	}
	if c.HTTP.MaxRetries < 0 {
		return invalid("http.max_retries", "must not be negative")
	}
	if c.HTTP.RateLimit < 0 {
		return invalid("http.rate_limit", "must not be negative")
	}
	if c.HTTP.Burst < 0 {
		return invalid("http.burst", "must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return invalid("log.format", "must be json or console")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return invalid("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	return nil
}

func invalid(field, msg string) error {
	return uiflow.NewError(ErrInvalidConfig, field+" "+msg, nil, map[string]any{"field": field})
}

// Logger builds the configured logger writing to w.
func (c Config) Logger(w io.Writer) logging.Logger {
	return logging.New(logging.Options{Level: c.Log.Level, Format: c.Log.Format, Writer: w})
}

// RenderOptions maps the engine section onto render options.
func (c Config) RenderOptions() []render.Option {
	return []render.Option{
		render.WithSupportedVersions(c.Engine.SupportedVersions),
		render.WithStrictProperties(c.Engine.StrictProperties),
		render.WithPropertyBinding(c.Engine.BindProperties),
	}
}

// HTTPOptions maps the http section onto client options.
func (c Config) HTTPOptions() []httpclient.Option {
	return []httpclient.Option{
		httpclient.WithBaseURL(c.HTTP.BaseURL),
		httpclient.WithTimeout(c.HTTP.Timeout.Std()),
		httpclient.WithMaxRetries(c.HTTP.MaxRetries),
		httpclient.WithRateLimit(c.HTTP.RateLimit, c.HTTP.Burst),
		httpclient.WithHeaders(c.HTTP.Headers),
	}
}

// ExecutorOptions maps the actions section onto executor options.
func (c Config) ExecutorOptions() []executor.Option {
	return []executor.Option{executor.WithResponseKey(c.Actions.ResponseKey)}
}

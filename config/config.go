package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "BOTWERK"

	ResponderTemplate = "template"
	ResponderOpenAI   = "openai"
)

type Config struct {
	Port         string
	DBPath       string
	JWTSecret    string
	LogLevel     string
	Responder    string
	OpenAIAPIKey string
	OpenAIModel  string
	ReplyTimeout time.Duration
	HistoryLimit int
	CORSOrigins  []string
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// BindFlags declares the server flags on cmd and lets viper resolve each key
// from flag, BOTWERK_* environment variable or default, in that order.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.Flags()
	flags.StringP("port", "p", "8080", "HTTP listen port")
	flags.String("db-path", "./botwerk.db", "sqlite database file")
	flags.String("jwt-secret", "", "secret used to sign session tokens")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("responder", ResponderTemplate, "reply strategy: template or openai")
	flags.String("openai-model", "", "OpenAI chat model")
	flags.Duration("reply-timeout", 20*time.Second, "maximum time to generate one reply")
	flags.Int("history-limit", 10, "previous messages passed to the responder")
	flags.StringSlice("cors-origins", []string{"*"}, "allowed CORS origins")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("openai-api-key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_KEY"); err != nil {
		return err
	}
	return v.BindPFlags(flags)
}

// LoadDotEnv reads a .env file into the process environment if one exists.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:         v.GetString("port"),
		DBPath:       v.GetString("db-path"),
		JWTSecret:    v.GetString("jwt-secret"),
		LogLevel:     v.GetString("log-level"),
		Responder:    strings.ToLower(v.GetString("responder")),
		OpenAIAPIKey: v.GetString("openai-api-key"),
		OpenAIModel:  v.GetString("openai-model"),
		ReplyTimeout: v.GetDuration("reply-timeout"),
		HistoryLimit: v.GetInt("history-limit"),
		CORSOrigins:  splitList(v.GetStringSlice("cors-origins")),
	}

	switch cfg.Responder {
	case ResponderTemplate, ResponderOpenAI:
	default:
		return nil, fmt.Errorf("unknown responder %q", cfg.Responder)
	}
	if cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("history limit must not be negative")
	}
	if cfg.ReplyTimeout <= 0 {
		return nil, fmt.Errorf("reply timeout must be positive")
	}
	return cfg, nil
}

// splitList accepts both repeated values and a single comma separated environment value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ConfigureLogging applies the configured level to the standard logrus logger.
func ConfigureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

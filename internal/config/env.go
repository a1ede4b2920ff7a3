package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment variable overrides.
type Env struct {
	Token      string `env:"HEATZY_TOKEN"`
	LogLevel   string `env:"HEATZY_LOG_LEVEL"`
	Output     string `env:"HEATZY_OUTPUT"`
	ConfigPath string `env:"HEATZY_CONFIG"`
}

// LoadEnv reads the HEATZY_* environment variables.
func LoadEnv() (Env, error) {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// Flags are the values given on the command line. Empty means unset.
type Flags struct {
	Token      string
	LogLevel   string
	Output     string
	ConfigPath string
}

// Settings are the effective values after layering flags, environment and file.
type Settings struct {
	Token       string
	TokenSource string // "flag", "env", "config" or ""
	LogLevel    string
	Output      string
	ConfigPath  string
}

// ResolveConfigPath picks the config file location: flag, then HEATZY_CONFIG.
// Empty means the default location.
func ResolveConfigPath(flags Flags, e Env) string {
	return firstNonEmpty(flags.ConfigPath, e.ConfigPath)
}

// Resolve layers flags over environment over the config file.
func Resolve(flags Flags, e Env, cfg *Config) Settings {
	s := Settings{ConfigPath: ResolveConfigPath(flags, e)}

	switch {
	case flags.Token != "":
		s.Token, s.TokenSource = flags.Token, "flag"
	case e.Token != "":
		s.Token, s.TokenSource = e.Token, "env"
	case cfg != nil && cfg.Token() != "":
		s.Token, s.TokenSource = cfg.Token(), "config"
	}

	var prefs Preferences
	if cfg != nil && cfg.Preferences != nil {
		prefs = *cfg.Preferences
	}

	s.LogLevel = firstNonEmpty(flags.LogLevel, e.LogLevel, prefs.LogLevel)
	s.Output = strings.ToLower(firstNonEmpty(flags.Output, e.Output, prefs.Output, OutputTable))

	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

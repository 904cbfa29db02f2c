// Package config resolves modcheck settings from defaults, an optional
// config file, MODCHECK_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/frederic-klein/modcheck/internal/portal"
	"github.com/frederic-klein/modcheck/internal/report"
)

const (
	AppName   = "modcheck"
	EnvPrefix = "MODCHECK"
)

// Keys shared by the config file, environment and flags.
const (
	KeyPortalURL    = "portal_url"
	KeyAuthURL      = "auth_url"
	KeyVerifyPath   = "verify_path"
	KeyTimeout      = "timeout"
	KeyRequireLogin = "require_login"
	KeyUser         = "user"
	KeyToken        = "token"
	KeyOutput       = "output"
)

// Config is the resolved configuration.
type Config struct {
	PortalURL    string        `mapstructure:"portal_url"`
	AuthURL      string        `mapstructure:"auth_url"`
	VerifyPath   string        `mapstructure:"verify_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RequireLogin bool          `mapstructure:"require_login"`
	User         string        `mapstructure:"user"`
	Token        string        `mapstructure:"token"`
	Output       string        `mapstructure:"output"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		PortalURL:  portal.DefaultPortalURL,
		AuthURL:    portal.DefaultAuthURL,
		VerifyPath: portal.DefaultVerifyPath,
		Timeout:    portal.DefaultTimeout,
		Output:     report.FormatText,
	}
}

// LoadOptions control where Load looks.
type LoadOptions struct {
	// ConfigFile is used exclusively when set and must exist.
	ConfigFile string
	// ConfigDir overrides the default search directory.
	ConfigDir string
	// Flags are bound by name to the matching keys. Only flags the user
	// changed take precedence over file and environment values.
	Flags *pflag.FlagSet
}

// Dir returns the default config directory, $XDG_CONFIG_HOME/modcheck.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// Load resolves the configuration.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyPortalURL, defaults.PortalURL)
	v.SetDefault(KeyAuthURL, defaults.AuthURL)
	v.SetDefault(KeyVerifyPath, defaults.VerifyPath)
	v.SetDefault(KeyTimeout, defaults.Timeout)
	v.SetDefault(KeyRequireLogin, defaults.RequireLogin)
	v.SetDefault(KeyUser, "")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyOutput, defaults.Output)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts); err != nil {
		return Config{}, err
	}

	if opts.Flags != nil {
		for _, key := range []string{KeyPortalURL, KeyAuthURL, KeyTimeout, KeyRequireLogin, KeyUser, KeyToken, KeyOutput} {
			if f := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, opts LoadOptions) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", opts.ConfigFile, err)
		}
		return nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			// No home directory: run on defaults and environment only.
			return nil
		}
	}
	v.SetConfigName("config")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config in %s: %w", dir, err)
	}
	return nil
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	for key, raw := range map[string]string{KeyPortalURL: c.PortalURL, KeyAuthURL: c.AuthURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q: want an absolute URL", key, raw)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid %s %v: must be positive", KeyTimeout, c.Timeout)
	}
	for _, f := range report.Formats {
		if strings.EqualFold(c.Output, f) {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q: want one of %s", KeyOutput, c.Output, strings.Join(report.Formats, ", "))
}

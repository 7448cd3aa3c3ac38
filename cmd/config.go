/*
Copyright © 2025 Logicos Software

config.go loads sshenv settings with viper.

Settings come from, in increasing precedence: built-in defaults, the
sshenv.yaml config file, SSHENV_* environment variables and command-line
flags. The config file is searched in the user config directory
(~/.config/sshenv on Linux) and the current directory, unless --config
names one explicitly.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sshenv/internal/sshsig"
)

// Engine names accepted by the "engine" setting.
const (
	EngineNative    = "native"
	EngineSSHKeygen = "ssh-keygen"
)

// Config holds the resolved settings.
type Config struct {
	Namespace string `mapstructure:"namespace"`
	Engine    string `mapstructure:"engine"`
	SSHKeygen string `mapstructure:"ssh-keygen"`
	Hash      string `mapstructure:"hash"`
	LogLevel  string `mapstructure:"log-level"`
	Reader    string `mapstructure:"reader"`
}

func configDefaults() map[string]any {
	return map[string]any{
		"namespace":  sshsig.DefaultNamespace,
		"engine":     EngineNative,
		"ssh-keygen": sshsig.DefaultKeygenProgram,
		"hash":       sshsig.DefaultHashAlgorithm,
		"log-level":  "warn",
		"reader":     "",
	}
}

// userConfigDir returns the directory searched for sshenv.yaml.
func userConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "sshenv"), nil
}

// LoadConfig resolves settings for a command. configFile, if non-empty,
// must exist. Flags that share a name with a setting override it when set.
func LoadConfig(flags *pflag.FlagSet, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range configDefaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("sshenv")
	v.SetConfigType("yaml")
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return c, err
		}
		v.SetConfigFile(configFile)
	}
	if dir, err := userConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("sshenv")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c Config) validate() error {
	switch c.Engine {
	case EngineNative, EngineSSHKeygen:
	default:
		return ErrUnknownEngine(c.Engine)
	}
	switch c.Hash {
	case sshsig.HashSHA256, sshsig.HashSHA512:
	default:
		return ErrInvalidSetting("hash", c.Hash, "use sha256 or sha512")
	}
	return nil
}

// engine returns the sign/verify engine selected by the settings.
func (a *app) engine() sshsig.Engine {
	if a.cfg.Engine == EngineSSHKeygen {
		return sshsig.Keygen{Program: a.cfg.SSHKeygen, Logger: a.logger}
	}
	return a.native()
}

func (a *app) native() sshsig.Native {
	return sshsig.Native{HashAlgorithm: a.cfg.Hash}
}

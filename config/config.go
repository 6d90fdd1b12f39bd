package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug             = "debug"
	ConfigBoardRows         = "board-rows"
	ConfigBoardCols         = "board-cols"
	ConfigHiddenRows        = "hidden-rows"
	ConfigLookahead         = "lookahead"
	ConfigMaxLookahead      = "max-lookahead"
	ConfigSearchPolicy      = "search-policy"
	ConfigSearchThreads     = "search-threads"
	ConfigSearchLeafCache   = "search-leaf-cache"
	ConfigNatsURL           = "nats-url"
	ConfigBotChannel        = "bot-channel"
	ConfigBotTimeout        = "bot-timeout"
	ConfigBotMaxRows        = "bot-max-rows"
	ConfigBotMaxCols        = "bot-max-cols"
	ConfigAutoplayMaxPieces = "autoplay-max-pieces"
	ConfigAutoplayBoards    = "autoplay-boards-file"
	ConfigShellHistoryFile  = "shell-history-file"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
)

const (
	envPrefix  = "tetrad"
	configName = "config"
	configType = "yaml"
	homeDir    = ".tetrad"
)

// Config is the process configuration. Values come from, in order of
// precedence: command-line flags, TETRAD_* environment variables, a
// config.yaml in the working directory or ~/.tetrad, and the defaults.
type Config struct {
	*viper.Viper
	args []string
}

// Load reads every configuration source. Arguments that are not flags are
// kept and returned by Args.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	fs := pflag.NewFlagSet("tetrad", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigBoardRows, 20, "visible rows of the playfield")
	fs.Int(ConfigBoardCols, 10, "columns of the playfield")
	fs.Int(ConfigHiddenRows, 2, "rows above the visible playfield where pieces spawn")
	fs.Int(ConfigLookahead, 2, "number of pieces the bot searches")
	fs.Int(ConfigMaxLookahead, 3, "largest lookahead a search will accept")
	fs.String(ConfigSearchPolicy, "max-first", "which plies maximise: min-first, max-first or self")
	fs.Int(ConfigSearchThreads, 1, "goroutines sharing the root of a search")
	fs.Bool(ConfigSearchLeafCache, true, "memoise leaf scores within a search")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "NATS server for the bot service")
	fs.String(ConfigBotChannel, "tetrad.bot", "NATS subject the bot listens on")
	fs.Duration(ConfigBotTimeout, 10*time.Second, "how long the client waits for the bot")
	fs.Int(ConfigBotMaxRows, 64, "largest grid height the bot accepts in a request")
	fs.Int(ConfigBotMaxCols, 32, "largest grid width the bot accepts in a request")
	fs.Int(ConfigAutoplayMaxPieces, 500, "pieces after which an autoplay game is stopped")
	fs.String(ConfigAutoplayBoards, "", "write the final board of every autoplay game to this file")
	fs.String(ConfigShellHistoryFile, "", "readline history file; empty for ~/.tetrad/history")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a heap profile to this file on exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName(configName)
	c.SetConfigType(configType)
	c.AddConfigPath(".")
	c.AddConfigPath(filepath.Join("$HOME", homeDir))
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// Args returns the non-flag arguments left over from Load.
func (c *Config) Args() []string {
	return c.args
}

// Write saves the current settings to the config file that was read, or to
// ~/.tetrad/config.yaml if there was none.
func (c *Config) Write() error {
	if c.ConfigFileUsed() != "" {
		return c.WriteConfig()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, homeDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, configName+"."+configType)
	if err := c.WriteConfigAs(path); err != nil {
		return err
	}
	c.SetConfigFile(path)
	return nil
}

// HistoryFile is where the shell keeps its readline history.
func (c *Config) HistoryFile() string {
	if f := c.GetString(ConfigShellHistoryFile); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tetrad-history")
	}
	return filepath.Join(home, homeDir, "history")
}

// SanitizedSettings are the settings safe to log.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	if u, ok := settings[ConfigNatsURL].(string); ok && strings.Contains(u, "@") {
		settings[ConfigNatsURL] = "<redacted>"
	}
	return settings
}

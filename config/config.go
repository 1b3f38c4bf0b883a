package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	*viper.Viper
}

const (
	ConfigDebug              = "debug"
	ConfigCPUProfile         = "cpu-profile"
	ConfigMemProfile         = "mem-profile"
	ConfigStrategy           = "strategy"
	ConfigStrategyFile       = "strategy-file"
	ConfigTimeLimit          = "time-limit"
	ConfigMaxDepth           = "max-depth"
	ConfigTTFractionOfMemory = "tt-fraction-of-memory"
	ConfigAutoplayThreads    = "autoplay-threads"
	ConfigAutoplayMaxPlies   = "autoplay-max-plies"
)

// DefaultConfig returns a config with only the defaults set; no flags or
// environment are consulted.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
	c.SetDefault(ConfigStrategy, "expectimax")
	c.SetDefault(ConfigStrategyFile, "")
	c.SetDefault(ConfigTimeLimit, 1.0)
	c.SetDefault(ConfigMaxDepth, 50)
	c.SetDefault(ConfigTTFractionOfMemory, 0.05)
	c.SetDefault(ConfigAutoplayThreads, 0)
	c.SetDefault(ConfigAutoplayMaxPlies, 200)
}

// Load reads the config from flags in args and from JIEQI_* environment
// variables, in that order of precedence.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("jieqi", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.String(ConfigStrategy, "expectimax", "default strategy for best and autoplay")
	fs.String(ConfigStrategyFile, "", "YAML file with extra or overriding strategies")
	fs.Float64(ConfigTimeLimit, 1.0, "seconds per search")
	fs.Int(ConfigMaxDepth, 50, "maximum iterative deepening depth")
	fs.Float64(ConfigTTFractionOfMemory, 0.05, "fraction of system memory for the transposition table")
	fs.Int(ConfigAutoplayThreads, 0, "autoplay worker count; 0 means one per CPU")
	fs.Int(ConfigAutoplayMaxPlies, 200, "autoplay games are drawn after this many plies")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("jieqi")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return nil
}

// SanitizedSettings is the settings map, fit for a log line.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}

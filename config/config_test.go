package config

import (
	"testing"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetString(ConfigStrategy), "expectimax")
	is.Equal(cfg.GetFloat64(ConfigTimeLimit), 1.0)
	is.Equal(cfg.GetInt(ConfigMaxDepth), 50)
	is.Equal(cfg.GetFloat64(ConfigTTFractionOfMemory), 0.05)
	is.True(!cfg.GetBool(ConfigDebug))
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	err := cfg.Load([]string{"--strategy=greedy", "--time-limit=2.5", "--debug"})
	is.NoErr(err)
	is.Equal(cfg.GetString(ConfigStrategy), "greedy")
	is.Equal(cfg.GetFloat64(ConfigTimeLimit), 2.5)
	is.True(cfg.GetBool(ConfigDebug))
	is.Equal(cfg.GetInt(ConfigMaxDepth), 50)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("JIEQI_MAX_DEPTH", "7")
	cfg := &Config{}
	is.NoErr(cfg.Load(nil))
	is.Equal(cfg.GetInt(ConfigMaxDepth), 7)
}

func TestLoadBadFlag(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	err := cfg.Load([]string{"--no-such-flag"})
	is.True(err != nil)
}

package cache

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/jieqi/config"
)

func TestLoadOnce(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	calls := 0
	loader := func(cfg *config.Config, key string) (any, error) {
		calls++
		return key + "-obj", nil
	}
	obj, err := Load(cfg, "test:a", loader)
	is.NoErr(err)
	is.Equal(obj.(string), "test:a-obj")
	obj, err = Load(cfg, "test:a", loader)
	is.NoErr(err)
	is.Equal(obj.(string), "test:a-obj")
	is.Equal(calls, 1)

	Forget("test:a")
	_, err = Load(cfg, "test:a", loader)
	is.NoErr(err)
	is.Equal(calls, 2)
}

func TestLoadErrorNotCached(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	boom := errors.New("boom")
	_, err := Load(cfg, "test:bad", func(*config.Config, string) (any, error) {
		return nil, boom
	})
	is.True(errors.Is(err, boom))
	obj, err := Load(cfg, "test:bad", func(*config.Config, string) (any, error) {
		return 3, nil
	})
	is.NoErr(err)
	is.Equal(obj.(int), 3)
}

package strategy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/domino14/jieqi/cache"
	"github.com/domino14/jieqi/config"
)

//go:embed presets.yaml
var presetsYAML []byte

type policyFile struct {
	Strategies []yaml.Node `yaml:"strategies"`
}

// ParsePolicies reads a strategy file. An entry's base may name a policy in
// known or one defined earlier in the same file.
func ParsePolicies(r io.Reader, known map[string]Policy) (map[string]Policy, error) {
	var f policyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Policy{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBadPolicy, err)
	}
	out := make(map[string]Policy, len(f.Strategies))
	for i := range f.Strategies {
		node := &f.Strategies[i]
		var hdr struct {
			Name string `yaml:"name"`
			Base string `yaml:"base"`
		}
		if err := node.Decode(&hdr); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrBadPolicy, i, err)
		}
		var p Policy
		if hdr.Base != "" {
			base, ok := out[hdr.Base]
			if !ok {
				base, ok = known[hdr.Base]
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s: base %q", ErrUnknownStrategy, hdr.Name, hdr.Base)
			}
			p = base
			p.Description = ""
		}
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPolicy, hdr.Name, err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out[p.Name] = p
	}
	return out, nil
}

var presets = sync.OnceValue(func() map[string]Policy {
	ps, err := ParsePolicies(bytes.NewReader(presetsYAML), nil)
	if err != nil {
		panic("embedded strategy presets: " + err.Error())
	}
	return ps
})

// Presets returns a copy of the built-in policies.
func Presets() map[string]Policy {
	return maps.Clone(presets())
}

// StrategyFileLoadFunc is a cache loadFunc for keys of the form
// strategyfile:<path>.
func StrategyFileLoadFunc(cfg *config.Config, key string) (any, error) {
	kind, path, ok := strings.Cut(key, ":")
	if !ok || kind != "strategyfile" {
		return nil, errors.New("strategyfileloadfunc - bad cache key: " + key)
	}
	f, err := cache.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePolicies(f, presets())
}

// Policies are the presets overlaid with the configured strategy file.
func Policies(cfg *config.Config) (map[string]Policy, error) {
	all := Presets()
	if cfg == nil {
		return all, nil
	}
	path := cfg.GetString(config.ConfigStrategyFile)
	if path == "" {
		return all, nil
	}
	obj, err := cache.Load(cfg, "strategyfile:"+path, StrategyFileLoadFunc)
	if err != nil {
		return nil, err
	}
	maps.Copy(all, obj.(map[string]Policy))
	return all, nil
}

// Lookup finds a policy by name.
func Lookup(cfg *config.Config, name string) (Policy, error) {
	all, err := Policies(cfg)
	if err != nil {
		return Policy{}, err
	}
	p, ok := all[name]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return p, nil
}

// Names lists the known policies in order.
func Names(cfg *config.Config) ([]string, error) {
	all, err := Policies(cfg)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(all)), nil
}

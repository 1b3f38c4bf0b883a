// Package strategy turns named search policies into move choices. A policy
// is one of a closed set of kinds plus the switches handed to the searcher.
package strategy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/domino14/jieqi/equity"
)

var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrBadPolicy       = errors.New("bad strategy policy")
)

// Kind is the family a policy belongs to.
type Kind uint8

const (
	KindRandom Kind = iota
	KindGreedy
	KindPVS
	KindExpectimax
)

var kindNames = map[Kind]string{
	KindRandom:     "random",
	KindGreedy:     "greedy",
	KindPVS:        "pvs",
	KindExpectimax: "expectimax",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: kind %q", ErrBadPolicy, s)
}

func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Searches reports whether the kind runs the tree search.
func (k Kind) Searches() bool {
	return k == KindPVS || k == KindExpectimax
}

// Policy is a named strategy. Fields left out of a YAML entry keep the value
// of its base policy.
type Policy struct {
	Name string `yaml:"name" json:"name"`
	// Base names the policy this one starts from.
	Base string `yaml:"base,omitempty" json:"base,omitempty"`
	Kind Kind   `yaml:"kind" json:"kind"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Depth caps iterative deepening; 0 uses the configured maximum.
	Depth int `yaml:"depth" json:"depth"`
	// TimeLimit is in seconds; 0 uses the configured limit.
	TimeLimit float64 `yaml:"time_limit" json:"time_limit"`
	// Hidden is "expected" or "fixed".
	Hidden string `yaml:"hidden" json:"hidden"`

	Chance             bool `yaml:"chance" json:"chance"`
	Quiescence         bool `yaml:"quiescence" json:"quiescence"`
	QuiescenceDepth    int  `yaml:"quiescence_depth" json:"quiescence_depth"`
	LMR                bool `yaml:"lmr" json:"lmr"`
	PVS                bool `yaml:"pvs" json:"pvs"`
	TranspositionTable bool `yaml:"transposition_table" json:"transposition_table"`
	CheckExtension     bool `yaml:"check_extension" json:"check_extension"`
	RevealExtension    bool `yaml:"reveal_extension" json:"reveal_extension"`
	MaxExtensions      int  `yaml:"max_extensions" json:"max_extensions"`

	// Randomness in [0, 1] adds up to Randomness*100 to every move score.
	Randomness float64 `yaml:"randomness" json:"randomness"`
}

// Validate checks the ranges of the policy's fields.
func (p Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrBadPolicy)
	}
	if _, err := p.Valuation(); err != nil {
		return err
	}
	if p.Depth < 0 || p.QuiescenceDepth < 0 || p.MaxExtensions < 0 {
		return fmt.Errorf("%w: %s: negative depth", ErrBadPolicy, p.Name)
	}
	if p.TimeLimit < 0 {
		return fmt.Errorf("%w: %s: negative time limit", ErrBadPolicy, p.Name)
	}
	if p.Randomness < 0 || p.Randomness > 1 {
		return fmt.Errorf("%w: %s: randomness must be in [0, 1]", ErrBadPolicy, p.Name)
	}
	return nil
}

// Valuation is the hidden-piece valuation the policy evaluates with.
func (p Policy) Valuation() (equity.HiddenValuation, error) {
	switch strings.ToLower(p.Hidden) {
	case "", "expected":
		return equity.HiddenExpected, nil
	case "fixed":
		return equity.HiddenFixed, nil
	}
	return 0, fmt.Errorf("%w: %s: hidden valuation %q", ErrBadPolicy, p.Name, p.Hidden)
}

// TimeBudget converts TimeLimit, falling back to def when unset.
func (p Policy) TimeBudget(def time.Duration) time.Duration {
	if p.TimeLimit <= 0 {
		return def
	}
	return time.Duration(p.TimeLimit * float64(time.Second))
}

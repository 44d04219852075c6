package app

import (
	"errors"
	"fmt"
	"log"
	"os"

	"sbparse/alg/transition"
	"sbparse/nlp/parser/dependency/english"
	dep "sbparse/nlp/parser/dependency/transition"
	nlp "sbparse/nlp/types"
	"sbparse/util/conf"

	"gopkg.in/yaml.v3"
)

var (
	ErrBadConfig    = errors.New("app: bad configuration")
	ErrUnknownLabel = errors.New("app: model predicts an unknown label")
)

// Config holds the decoding parameters of a parse run:
//
//	beam: 4
//	margin: 0.5
//	concurrent: true
//	pre bonus: 100
//	second pos votes: 1
//	max transitions: 0
//	labels: [nsubj, dobj, prep, pobj]
type Config struct {
	Beam           int      `yaml:"beam"`
	Margin         float64  `yaml:"margin"`
	Concurrent     bool     `yaml:"concurrent"`
	PreBonus       float64  `yaml:"pre bonus"`
	SecondPOSVotes int      `yaml:"second pos votes"`
	MaxTransitions int      `yaml:"max transitions"`
	Labels         []string `yaml:"labels"`

	ShowConsiderations bool `yaml:"-"`
	ShowCorrections    bool `yaml:"-"`
	ShowForks          bool `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Beam:           1,
		Margin:         0.5,
		PreBonus:       100,
		SecondPOSVotes: 1,
	}
}

// ReadConfig overlays data on the defaults
func ReadConfig(data []byte) (*Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadConfigFile reads filename, or returns the defaults when it is empty
func ReadConfigFile(filename string) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ReadConfig(data)
}

func (c *Config) Validate() error {
	switch {
	case c.Beam < 1:
		return fmt.Errorf("%w: beam %d", ErrBadConfig, c.Beam)
	case c.Margin < 0:
		return fmt.Errorf("%w: margin %v", ErrBadConfig, c.Margin)
	case c.SecondPOSVotes < 0:
		return fmt.Errorf("%w: second pos votes %d", ErrBadConfig, c.SecondPOSVotes)
	case c.MaxTransitions < 0:
		return fmt.Errorf("%w: max transitions %d", ErrBadConfig, c.MaxTransitions)
	}
	return nil
}

// AddLabelsFile appends the labels listed one per line in filename
func (c *Config) AddLabelsFile(filename string) error {
	labels, err := conf.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed reading labels file %s: %w", filename, err)
	}
	c.Labels = append(c.Labels, labels.Values...)
	return nil
}

// CheckLabels verifies that every deprel is a known label. Without a label
// set every deprel is accepted.
func (c *Config) CheckLabels(deprels []string) error {
	if len(c.Labels) == 0 {
		return nil
	}
	known := make(map[string]bool, len(c.Labels)+1)
	known[nlp.ROOT_LABEL] = true
	for _, l := range c.Labels {
		known[l] = true
	}
	for _, d := range deprels {
		if !known[d] {
			return fmt.Errorf("%w: %s", ErrUnknownLabel, d)
		}
	}
	return nil
}

// Parser builds an English parser over m
func (c *Config) Parser(m transition.Model) *dep.Parser {
	return &dep.Parser{
		Model:              m,
		Policy:             &english.Policy{Log: c.ShowCorrections},
		BeamSize:           c.Beam,
		Margin:             c.Margin,
		ConcurrentBeam:     c.Concurrent,
		PreBonus:           c.PreBonus,
		SecondPOSVotes:     c.SecondPOSVotes,
		MaxTransitions:     c.MaxTransitions,
		ShowConsiderations: c.ShowConsiderations,
		Log:                c.ShowForks,
	}
}

func ParseConfigOut(c *Config) {
	log.Println("Configuration")
	log.Printf("Beam Size:\t\t%d", c.Beam)
	log.Printf("Margin:\t\t\t%v", c.Margin)
	log.Printf("Beam Concurrent:\t%v", c.Concurrent)
	log.Printf("Pre Bonus:\t\t%v", c.PreBonus)
	log.Printf("Second POS Votes:\t%d", c.SecondPOSVotes)
	if c.MaxTransitions > 0 {
		log.Printf("Max Transitions:\t%d", c.MaxTransitions)
	}
	log.Printf("# Labels:\t\t%d", len(c.Labels))
}

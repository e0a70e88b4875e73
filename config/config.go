// Package config loads the training configuration file whose criterion
// section feeds the criterion factory.
package config

import (
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"criteria/criterion"
)

type Config struct {
	Criterion criterion.Config `json:"criterion"`
	Logging   LoggingConfig    `json:"logging"`
}

// Load reads a YAML or JSON config file, applies CRITERIA_-prefixed
// environment overrides (CRITERIA_LOGGING__LEVEL=debug sets logging.level)
// and validates the result. The criterion section stays an opaque mapping;
// it is the factory's job to interpret it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, errors.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("CRITERIA_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "criteria_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Criterion) == 0 {
		return nil, errors.New("criterion section is required")
	}
	return &cfg, nil
}

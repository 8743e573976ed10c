//go:build !tinygo

package keypad

import (
	"os"

	"gopkg.in/yaml.v3"

	"keymatrix-go/errcode"
)

// LoadConfig reads a YAML board file. See ParseConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errcode.Wrap(errcode.InvalidParams, "config", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig, so fields the document leaves
// out keep their defaults. The result is normalised and validated.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errcode.Wrap(errcode.InvalidParams, "config", err)
	}
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

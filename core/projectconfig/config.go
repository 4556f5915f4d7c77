package projectconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

const DefaultPath = ".contextcore/config.yaml"

// Config carries CLI defaults only; nothing here reaches the cache format or
// the selection pipeline.
type Config struct {
	Build  BuildDefaults  `yaml:"build"`
	Select SelectDefaults `yaml:"select"`
}

type BuildDefaults struct {
	Root string `yaml:"root"`
	Out  string `yaml:"out"`
}

type SelectDefaults struct {
	Cache        string `yaml:"cache"`
	BudgetTokens int    `yaml:"budget_tokens"`
	ReceiptDir   string `yaml:"receipt_dir"`
}

func Load(path string, allowMissing bool) (Config, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return Config{}, fmt.Errorf("project config path is required")
	}

	// #nosec G304 -- project config path is explicit local user input.
	content, err := os.ReadFile(trimmedPath)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read project config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return Config{}, nil
	}

	var configuration Config
	if err := yaml.Unmarshal(content, &configuration); err != nil {
		return Config{}, fmt.Errorf("parse project config: %w", err)
	}
	configuration.normalize()
	if configuration.Select.BudgetTokens < 0 {
		return Config{}, fmt.Errorf("select.budget_tokens must be >= 0")
	}
	return configuration, nil
}

func (configuration *Config) normalize() {
	configuration.Build.Root = strings.TrimSpace(configuration.Build.Root)
	configuration.Build.Out = strings.TrimSpace(configuration.Build.Out)
	configuration.Select.Cache = strings.TrimSpace(configuration.Select.Cache)
	configuration.Select.ReceiptDir = strings.TrimSpace(configuration.Select.ReceiptDir)
}

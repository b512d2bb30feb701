package rates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// SourceCache loads and caches per-source YAML configuration files. One file
// per rate source, named <source>.yml inside the sources directory.
type SourceCache struct {
	sourcesDir  string
	defaultTopN int
	cache       map[string]*SourceConfig
	mu          sync.RWMutex
}

// NewSourceCache creates a cache over sourcesDir. defaultTopN applies to
// sources without an explicit settings.top_n; non-positive falls back to
// DefaultTopN.
func NewSourceCache(sourcesDir string, defaultTopN int) *SourceCache {
	if defaultTopN <= 0 {
		defaultTopN = DefaultTopN
	}
	return &SourceCache{
		sourcesDir:  sourcesDir,
		defaultTopN: defaultTopN,
		cache:       make(map[string]*SourceConfig),
	}
}

func (sc *SourceCache) Run() error {
	if _, err := os.Stat(sc.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(sc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		sourceName := fileName[:len(fileName)-4] // Remove .yml extension

		config, err := sc.LoadConfig(sourceName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", sourceName,
			"type", string(config.Type), "mode", config.Mode, "enabled", config.Settings.Enabled)
	}

	return nil
}

func (sc *SourceCache) LoadConfig(sourceName string) (*SourceConfig, error) {
	configFile := filepath.Join(sc.sourcesDir, sourceName+".yml")
	config, err := sc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = sourceName

	if err := sc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache[config.Name] = config

	return config, nil
}

func (sc *SourceCache) GetConfig(sourceName string) (*SourceConfig, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	config, ok := sc.cache[sourceName]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", sourceName)
	}
	return config, nil
}

func (sc *SourceCache) GetConfigs() map[string]*SourceConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	configsCopy := make(map[string]*SourceConfig, len(sc.cache))
	for k, v := range sc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (sc *SourceCache) GetEnabledConfigs() map[string]*SourceConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	enabled := make(map[string]*SourceConfig)
	for k, v := range sc.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (sc *SourceCache) GetConfigCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.cache)
}

func (sc *SourceCache) parseConfig(configFile string) (*SourceConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}
	if config.Settings.TopN == 0 {
		config.Settings.TopN = sc.defaultTopN
	}

	return &config, nil
}

func (sc *SourceCache) validateConfig(config *SourceConfig) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if config.URL == "" {
		return fmt.Errorf("source URL is required")
	}

	switch config.Type {
	case Gas, Electric:
	default:
		return fmt.Errorf("invalid utility type: %q", config.Type)
	}

	switch config.Mode {
	case ModeCSV, ModeWeb:
	default:
		return fmt.Errorf("invalid mode: %q (expected %q or %q)", config.Mode, ModeCSV, ModeWeb)
	}

	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if config.Settings.TopN < 0 {
		return fmt.Errorf("top_n must be non-negative")
	}

	return nil
}

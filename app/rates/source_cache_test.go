package rates

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}
}

func TestSourceCache_LoadsAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "pa-electric", `type: electric
mode: csv
url: https://example.com/offers.csv
settings:
  enabled: true
`)

	cache := NewSourceCache(dir, 0)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cache.GetConfigCount() != 1 {
		t.Fatalf("Expected 1 config, got %d", cache.GetConfigCount())
	}

	config, err := cache.GetConfig("pa-electric")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	if config.Name != "pa-electric" {
		t.Errorf("name = %q, want pa-electric", config.Name)
	}
	if config.Type != Electric {
		t.Errorf("type = %q, want electric", config.Type)
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("default timeout = %d, want 30", config.Settings.Timeout)
	}
	if config.Settings.TopN != DefaultTopN {
		t.Errorf("default top_n = %d, want %d", config.Settings.TopN, DefaultTopN)
	}
}

func TestSourceCache_ExtractionRulesFallback(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "pa-gas", `type: gas
mode: web
url: https://example.com/shop
settings:
  enabled: true
extraction:
  supplier_card: ".offer-card"
`)

	cache := NewSourceCache(dir, 0)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	config, err := cache.GetConfig("pa-gas")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	rules := config.Rules()
	if rules.SupplierCardSelector != ".offer-card" {
		t.Errorf("supplier selector = %q, want override", rules.SupplierCardSelector)
	}
	if rules.CardPhrase != "Term Length" {
		t.Errorf("card phrase = %q, want default", rules.CardPhrase)
	}
	if rules.SupplierCardLimit != 3 {
		t.Errorf("card limit = %d, want default 3", rules.SupplierCardLimit)
	}
}

func TestSourceCache_GlobalTopNDefault(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "plain", `type: gas
mode: csv
url: https://example.com/a.csv
settings:
  enabled: true
`)
	writeSourceFile(t, dir, "explicit", `type: gas
mode: csv
url: https://example.com/b.csv
settings:
  enabled: true
  top_n: 2
`)

	cache := NewSourceCache(dir, 5)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	plain, err := cache.GetConfig("plain")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if plain.Settings.TopN != 5 {
		t.Errorf("unset top_n = %d, want global default 5", plain.Settings.TopN)
	}

	explicit, err := cache.GetConfig("explicit")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if explicit.Settings.TopN != 2 {
		t.Errorf("explicit top_n = %d, want 2", explicit.Settings.TopN)
	}
}

func TestSourceCache_GetEnabledConfigs(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "active", `type: gas
mode: csv
url: https://example.com/a.csv
settings:
  enabled: true
`)
	writeSourceFile(t, dir, "paused", `type: gas
mode: csv
url: https://example.com/b.csv
settings:
  enabled: false
`)

	cache := NewSourceCache(dir, 0)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	enabled := cache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["active"]; !ok {
		t.Error("Expected 'active' in enabled configs")
	}
	if len(cache.GetConfigs()) != 2 {
		t.Errorf("Expected 2 total configs, got %d", len(cache.GetConfigs()))
	}
}

func TestSourceCache_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing url", "type: gas\nmode: csv\n"},
		{"bad type", "type: water\nmode: csv\nurl: https://example.com\n"},
		{"bad mode", "type: gas\nmode: rss\nurl: https://example.com\n"},
		{"negative timeout", "type: gas\nmode: csv\nurl: https://example.com\nsettings:\n  timeout: -5\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSourceFile(t, dir, "broken", tc.content)

			cache := NewSourceCache(dir, 0)
			if err := cache.Run(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestSourceCache_MissingDirectoryIsNotAnError(t *testing.T) {
	cache := NewSourceCache(filepath.Join(t.TempDir(), "does-not-exist"), 0)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected nil for missing sources dir, got %v", err)
	}
	if cache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", cache.GetConfigCount())
	}
}

func TestSourceCache_UnknownSourceName(t *testing.T) {
	cache := NewSourceCache(t.TempDir(), 0)
	if _, err := cache.GetConfig("nope"); err == nil {
		t.Error("Expected error for unknown source name")
	}
}

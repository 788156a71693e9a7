package config

import (
	"os"
	"testing"
)

func TestConfigLoad_ProviderDefaults(t *testing.T) {
	_ = os.Unsetenv("TRAVEL_AGENT_COMPLETION_MODEL")
	_ = os.Unsetenv("TRAVEL_AGENT_SEARCH_RESULT_LIMIT")
	_ = os.Unsetenv("TRAVEL_AGENT_STORE_DRIVER")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.CompletionModel != "llama-3.1-8b-instant" || cfg.CompletionTemperature != 0.7 || cfg.CompletionMaxTokens != 2000 {
		t.Fatalf("unexpected completion defaults: %+v", cfg)
	}
	if cfg.SearchResultLimit != 6 || cfg.SearchTimeoutSeconds != 10 || cfg.CompletionTimeoutSeconds != 30 {
		t.Fatalf("unexpected provider limits: %+v", cfg)
	}
	if cfg.StoreDriver != "memory" || cfg.CacheDriver != "memory" {
		t.Fatalf("unexpected drivers: store=%s cache=%s", cfg.StoreDriver, cfg.CacheDriver)
	}
}

func TestConfigLoad_BareProviderKeys(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("SERP_API_KEY", "serp_test")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.CompletionAPIKey != "gsk_test" || cfg.SearchAPIKey != "serp_test" {
		t.Fatalf("bare provider keys not picked up: %q %q", cfg.CompletionAPIKey, cfg.SearchAPIKey)
	}
}

func TestConfigLoad_PrefixedKeyWins(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "bare")
	t.Setenv("TRAVEL_AGENT_GROQ_API_KEY", "prefixed")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.CompletionAPIKey != "prefixed" {
		t.Fatalf("expected prefixed key, got %q", cfg.CompletionAPIKey)
	}
}

func TestResolveDefaults_Drivers(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"memory", func(c *Config) { c.StoreDriver = "" }, false},
		{"sqlite", func(c *Config) { c.StoreDriver = "sqlite"; c.SQLitePath = "x.db" }, false},
		{"sqlite without path", func(c *Config) { c.StoreDriver = "sqlite"; c.SQLitePath = "" }, true},
		{"postgres without dsn", func(c *Config) { c.StoreDriver = "postgres" }, true},
		{"unknown store", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"redis", func(c *Config) { c.CacheDriver = "redis"; c.RedisAddr = "localhost:6379" }, false},
		{"unknown cache", func(c *Config) { c.CacheDriver = "memcached" }, true},
		{"zero result limit", func(c *Config) { c.SearchResultLimit = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewForTesting()
			tc.mutate(cfg)
			err := cfg.ResolveDefaults()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveDefaults_Limits(t *testing.T) {
	cfg := NewForTesting()
	cfg.SessionRateLimitPerMinute = -1
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("negative session limit accepted")
	}

	cfg = NewForTesting()
	cfg.SessionRateLimitBurst = 0
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionRateLimitBurst != 1 {
		t.Fatalf("burst not defaulted: %d", cfg.SessionRateLimitBurst)
	}
}

func TestResolveDefaults_TrustedProxies(t *testing.T) {
	cfg := NewForTesting()
	cfg.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.1"}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.TrustedProxies = []string{"not-an-ip"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("invalid proxy accepted")
	}
}

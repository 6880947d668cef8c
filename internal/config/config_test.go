package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "docflow_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr())
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Burst == 0 {
		t.Fatalf("rate limit defaults missing: %+v", cfg.RateLimit)
	}
	if cfg.Stats.CacheTTL == 0 {
		t.Fatalf("stats cache TTL default missing")
	}
}

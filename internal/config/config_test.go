package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.WorldSeed != 42 {
		t.Fatalf("WorldSeed = %d", cfg.WorldSeed)
	}
	if cfg.DBPath != "leaguesim.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.LLMProvider != ProviderLocal {
		t.Fatalf("LLMProvider = %q", cfg.LLMProvider)
	}
	if !cfg.StrictReplay {
		t.Fatal("StrictReplay should default to true")
	}
	if cfg.SoftStateTimeout != 30*time.Second {
		t.Fatalf("SoftStateTimeout = %v", cfg.SoftStateTimeout)
	}
}

func TestLoad_WorldSeedParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WORLD_SEED", "18446744073709551615")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorldSeed != 18446744073709551615 {
		t.Fatalf("WorldSeed = %d", cfg.WorldSeed)
	}

	t.Setenv("WORLD_SEED", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid WORLD_SEED")
	}
}

func TestLoad_LLMProviderValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("LLM_PROVIDER", "openai")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown LLM_PROVIDER")
	}
}

func TestLoad_WorkerCountBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WORKER_COUNT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for WORKER_COUNT=0")
	}
}

func TestLoad_CORSList(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

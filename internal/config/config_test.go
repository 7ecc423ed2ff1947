package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("ENGINE", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("WORKER_POOL_SIZE", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.Engine != "auto" {
		t.Fatalf("expected default engine auto, got %q", cfg.Engine)
	}
	if cfg.NATSSubject != "conversions.progress" {
		t.Fatalf("expected default progress subject, got %q", cfg.NATSSubject)
	}
	if cfg.WorkerPoolSize != 0 {
		t.Fatalf("expected pool size 0 (GOMAXPROCS), got %d", cfg.WorkerPoolSize)
	}
	if !cfg.PersistOutcomes || !cfg.ProgressEnabled {
		t.Fatalf("expected persistence and progress enabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("ENGINE", "baseline")
	t.Setenv("WORKER_POOL_SIZE", "8")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_RATE_LIMIT_BURST", "5")
	t.Setenv("PERSIST_OUTCOMES", "false")

	cfg := Load()
	if cfg.Engine != "baseline" {
		t.Fatalf("expected engine override, got %q", cfg.Engine)
	}
	if cfg.WorkerPoolSize != 8 {
		t.Fatalf("expected pool size 8, got %d", cfg.WorkerPoolSize)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5 rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIRateLimitBurst != 5 {
		t.Fatalf("expected burst 5, got %d", cfg.APIRateLimitBurst)
	}
	if cfg.PersistOutcomes {
		t.Fatalf("expected outcome persistence disabled")
	}
}

func TestLoadMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("WORKER_POOL_SIZE", "many")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.WorkerPoolSize != 0 {
		t.Fatalf("expected fallback pool size, got %d", cfg.WorkerPoolSize)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected fallback rate limit, got %v", cfg.APIRateLimitRPS)
	}
}

package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Upstream: UpstreamConfig{BaseURL: "https://hound.example.com"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingUpstreamBaseURL(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing upstream base_url")
	}
}

func TestValidate_BatchSmallerThanPage(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Upstream: UpstreamConfig{BaseURL: "https://hound.example.com"},
		Browse:   BrowseConfig{PageSize: 50, BatchSize: 20},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when batch_size < page_size")
	}

	expected := "browse.batch_size must be >= browse.page_size, got 20 < 50"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Upstream.TimeoutSec != 10 {
		t.Errorf("expected upstream TimeoutSec=10, got %d", cfg.Upstream.TimeoutSec)
	}
	if cfg.Upstream.Retries != 1 {
		t.Errorf("expected upstream Retries=1, got %d", cfg.Upstream.Retries)
	}
	if cfg.Browse.PageSize != 20 {
		t.Errorf("expected PageSize=20, got %d", cfg.Browse.PageSize)
	}
	if cfg.Browse.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Browse.BatchSize)
	}
	if cfg.Browse.SessionTTLSec != 1800 {
		t.Errorf("expected SessionTTLSec=1800, got %d", cfg.Browse.SessionTTLSec)
	}
	if cfg.Browse.SessionSweepSec != 60 {
		t.Errorf("expected SessionSweepSec=60, got %d", cfg.Browse.SessionSweepSec)
	}
	if cfg.Browse.MaxSessions != 10000 {
		t.Errorf("expected MaxSessions=10000, got %d", cfg.Browse.MaxSessions)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Upstream: UpstreamConfig{TimeoutSec: 15, Retries: 3},
		Browse:   BrowseConfig{PageSize: 50, BatchSize: 200, SessionTTLSec: 600},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Upstream.TimeoutSec != 15 {
		t.Errorf("expected upstream TimeoutSec=15, got %d", cfg.Upstream.TimeoutSec)
	}
	if cfg.Browse.PageSize != 50 {
		t.Errorf("expected PageSize=50, got %d", cfg.Browse.PageSize)
	}
	if cfg.Browse.SessionTTLSec != 600 {
		t.Errorf("expected SessionTTLSec=600, got %d", cfg.Browse.SessionTTLSec)
	}
}

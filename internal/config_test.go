package internal

import (
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 9090}
	if err := cfg.Validate(); err != nil {
		t.Errorf("port 9090 should pass: %v", err)
	}
}

func TestStoreConfig_PathRequired(t *testing.T) {
	cfg := StoreConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty store path should fail validation")
	}
}

func TestInboxConfig_DisabledSkipsValidation(t *testing.T) {
	cfg := InboxConfig{Enabled: false, Dir: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled inbox should pass without a dir: %v", err)
	}

	cfg = InboxConfig{Enabled: true, Dir: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled inbox needs a dir")
	}
}

func TestFullConfig_SectionValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Exports.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch exports error")
	}
}

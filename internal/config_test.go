package internal

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestSiteConfig_Bounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.PostsPerPage = 0
	if err := cfg.Validate(); err == nil {
		t.Error("posts_per_page 0 should fail")
	}
	cfg = NewDefaultConfig()
	cfg.Site.DefaultLanguage = "english"
	if err := cfg.Validate(); err == nil {
		t.Error("non-ISO language code should fail")
	}
	cfg = NewDefaultConfig()
	cfg.Site.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty base_url should fail")
	}
}

func TestWatchConfig_DebounceDefault(t *testing.T) {
	cfg := WatchConfig{}
	if got := cfg.Debounce(); got != 300*time.Millisecond {
		t.Errorf("debounce = %v, want 300ms", got)
	}
	cfg.DebounceMS = 50
	if got := cfg.Debounce(); got != 50*time.Millisecond {
		t.Errorf("debounce = %v, want 50ms", got)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

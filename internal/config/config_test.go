package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:               "production",
			JWTSecret:         "a-real-secret",
			RateLimitRequests: 30,
			RateLimitWindow:   time.Minute,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "default secret in production", mutate: func(c *Config) { c.JWTSecret = defaultJWTSecret }, wantErr: true},
		{name: "empty secret in production", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "default secret in development", mutate: func(c *Config) { c.Env = "development"; c.JWTSecret = defaultJWTSecret }},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimitRequests = 0 }, wantErr: true},
		{name: "zero window", mutate: func(c *Config) { c.RateLimitWindow = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	if got := parseDuration("bogus", time.Second); got != time.Second {
		t.Fatalf("expected default duration, got %v", got)
	}
	if got := parseInt("12", 1); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	if got := parseBool("nope", true); !got {
		t.Fatal("expected default bool")
	}
	got := parseStringSlice(" http://a.test , ,http://b.test")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOCIALGRAPH_TEST_KEY", "set")
	if got := getEnv("SOCIALGRAPH_TEST_KEY", "default"); got != "set" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := getEnv("SOCIALGRAPH_TEST_MISSING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}
}

package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/gate"
	"mercator-hq/ganymede/pkg/policy"
)

func TestStaticDecision(t *testing.T) {
	tests := []struct {
		mode    string
		want    gate.Decision
		wantErr bool
	}{
		{"allow", gate.DecisionAllow, false},
		{"deny", gate.DecisionDeny, false},
		{"needs_review", gate.DecisionNeedsReview, false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			decide, err := staticDecision(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("staticDecision(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			v, err := decide(context.Background(), gate.FingerprintString("x"), "policy-v1")
			if err != nil {
				t.Fatalf("decide() error = %v", err)
			}
			if v.Decision != tt.want {
				t.Errorf("decision = %q, want %q", v.Decision, tt.want)
			}
		})
	}
}

func TestBuildPolicySource(t *testing.T) {
	tests := []struct {
		name    string
		policy  config.PolicyConfig
		wantErr bool
	}{
		{
			name:   "static",
			policy: config.PolicyConfig{Mode: "static", Identity: "policy-v1"},
		},
		{
			name:   "file",
			policy: config.PolicyConfig{Mode: "file", FilePath: "/tmp/identity"},
		},
		{
			name:    "unsupported",
			policy:  config.PolicyConfig{Mode: "consul"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			cfg.Policy = tt.policy
			source, err := buildPolicySource(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildPolicySource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && source == nil {
				t.Error("buildPolicySource() returned nil source")
			}
		})
	}
}

func TestBuildPolicyWatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	holder := policy.NewHolder("policy-v1")

	cfg := config.NewDefaultConfig()
	cfg.Policy = config.PolicyConfig{Mode: "file", FilePath: "/tmp/identity", Watch: true}

	source, err := buildPolicySource(cfg)
	if err != nil {
		t.Fatalf("buildPolicySource() error = %v", err)
	}
	if w := buildPolicyWatcher(cfg, source, holder, logger); w == nil {
		t.Error("buildPolicyWatcher() = nil, want file watcher")
	}

	cfg.Policy.Watch = false
	if w := buildPolicyWatcher(cfg, source, holder, logger); w != nil {
		t.Error("buildPolicyWatcher() with watch disabled should return nil")
	}

	static := policy.StaticSource("policy-v1")
	cfg.Policy.Watch = true
	if w := buildPolicyWatcher(cfg, static, holder, logger); w != nil {
		t.Error("buildPolicyWatcher() for a static source should return nil")
	}
}

func TestBuildAuditStorage(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Audit.Backend = "memory"

	store, err := buildAuditStorage(cfg)
	if err != nil {
		t.Fatalf("buildAuditStorage() error = %v", err)
	}
	store.Close()

	cfg.Audit.Backend = "cassandra"
	if _, err := buildAuditStorage(cfg); err == nil {
		t.Error("buildAuditStorage() with unsupported backend should fail")
	}
}

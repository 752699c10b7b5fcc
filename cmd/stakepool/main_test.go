package main

import "testing"

func TestDefaultConfig_SubsystemGates(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.NATSEnabled {
		t.Error("nats should be enabled by default")
	}
	if !cfg.AuditEnabled {
		t.Error("audit should be enabled by default")
	}
	if cfg.EnforceAuth {
		t.Error("auth enforcement should be off by default")
	}

	t.Setenv("STAKE_NATS_ENABLED", "false")
	t.Setenv("STAKE_AUDIT_ENABLED", "false")
	cfg = DefaultConfig()
	if cfg.NATSEnabled {
		t.Error("STAKE_NATS_ENABLED=false must disable nats")
	}
	if cfg.AuditEnabled {
		t.Error("STAKE_AUDIT_ENABLED=false must disable audit")
	}
}

func TestEnvBoolOrDefault(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"yes", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"garbage", true}, // falls back to the default
		{"", true},
	}
	for _, tc := range cases {
		t.Setenv("STAKE_TEST_FLAG", tc.value)
		if got := envBoolOrDefault("STAKE_TEST_FLAG", true); got != tc.want {
			t.Errorf("value %q: got %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestResolveCommandType(t *testing.T) {
	prefixes := map[string]string{
		"stake.deposits":    "Deposit",
		"stake.withdrawals": "Withdraw",
	}

	cases := []struct {
		subject string
		want    string
	}{
		{"stake.deposits.user1", "Deposit"},
		{"stake.withdrawals.user1", "Withdraw"},
		{"stake.unknown.user1", ""},
		{"orders.new", ""},
	}
	for _, tc := range cases {
		if got := resolveCommandType(tc.subject, prefixes); got != tc.want {
			t.Errorf("subject %q: got %q, want %q", tc.subject, got, tc.want)
		}
	}
}

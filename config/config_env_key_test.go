package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"vapid": map[string]any{
			"publicKey":  "",
			"privateKey": "",
			"subject":    "",
		},
		"retention": map[string]any{
			"sweepInterval": "1h",
		},
		"storage": map[string]any{
			"driver": "badger",
			"badger": map[string]any{
				"inMemory": false,
			},
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "VAPID_PUBLICKEY", want: "vapid.publicKey"},
		{envKey: "VAPID_PUBLIC_KEY", want: "vapid.publicKey"},
		{envKey: "VAPID_PRIVATE_KEY", want: "vapid.privateKey"},
		{envKey: "VAPID_SUBJECT", want: "vapid.subject"},
		{envKey: "RETENTION_SWEEP_INTERVAL", want: "retention.sweepInterval"},
		{envKey: "STORAGE_BADGER_IN_MEMORY", want: "storage.badger.inMemory"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
		{envKey: "DB__PATH", want: "db.path"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

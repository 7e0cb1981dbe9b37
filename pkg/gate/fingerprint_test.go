package gate

import "testing"

func TestFingerprintBytes_Deterministic(t *testing.T) {
	a := FingerprintBytes([]byte("payload"))
	b := FingerprintBytes([]byte("payload"))

	if a != b {
		t.Errorf("same content produced different fingerprints: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestFingerprintBytes_Distinct(t *testing.T) {
	a := FingerprintBytes([]byte("payload"))
	b := FingerprintBytes([]byte("payload "))

	if a == b {
		t.Error("distinct content produced identical fingerprints")
	}
}

func TestFingerprintString(t *testing.T) {
	if FingerprintString("payload") != FingerprintBytes([]byte("payload")) {
		t.Error("FingerprintString and FingerprintBytes disagree")
	}
}

func TestVerdict_Cacheable(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    bool
	}{
		{"allow", Allow(), true},
		{"deny", Deny("violation"), true},
		{"needs review", NeedsReview("ambiguous"), true},
		{"error", Errored(ErrComputationTimeout), false},
		{"zero value", Verdict{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.verdict.Cacheable(); got != tt.want {
				t.Errorf("Cacheable() = %v, want %v", got, tt.want)
			}
		})
	}
}

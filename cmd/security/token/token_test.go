package token

import "testing"

func TestFingerprint_KeyedAndStable(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	a := Fingerprint("refresh-token", key)
	b := Fingerprint("refresh-token", key)
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a != b {
		t.Fatalf("fingerprint must be deterministic")
	}
	if Fingerprint("refresh-token", []byte("another-key-another-key-another!")) == a {
		t.Fatalf("fingerprint must depend on the key")
	}
	if Fingerprint("refresh-token", nil) == a {
		t.Fatalf("unkeyed fingerprint must differ from keyed one")
	}
}

package password

import (
	"strings"
	"testing"
)

// fastConfig keeps Argon2id cheap enough for unit tests.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.WorkFactor = 1
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Parallelism = 1
	return cfg
}

func TestHashAndVerify_OK(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(h, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %q", h)
	}

	ok, err := cfg.Verify(h, "correct horse battery")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	cfg := fastConfig()

	a, err := cfg.Hash("same password twice")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := cfg.Hash("same password twice")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatalf("expected different encodings for the same password")
	}
	if a == "same password twice" || b == "same password twice" {
		t.Fatalf("hash must never equal the plaintext")
	}

	for _, h := range []string{a, b} {
		ok, err := cfg.Verify(h, "same password twice")
		if err != nil || !ok {
			t.Fatalf("expected both hashes to verify: ok=%v err=%v", ok, err)
		}
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := cfg.Verify(h, "correct horse battery!")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	cfg := fastConfig()

	cases := []string{
		"",
		"not-a-hash",
		"plaintext-password",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0",
		"$2a$10$short",
	}

	for _, in := range cases {
		ok, err := cfg.Verify(in, "whatever")
		if err != ErrInvalidHash {
			t.Fatalf("Verify(%q): expected ErrInvalidHash, got %v", in, err)
		}
		if ok {
			t.Fatalf("Verify(%q): expected false", in)
		}
	}
}

func TestVerify_RefusesOversizedParams(t *testing.T) {
	cfg := fastConfig()

	h, err := cfg.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	// Same salt and key, but claim 1 GiB of memory.
	tampered := strings.Replace(h, "m=8192,", "m=1048576,", 1)

	ok, err := cfg.Verify(tampered, "correct horse battery")
	if err != ErrInvalidHash || ok {
		t.Fatalf("expected refusal, got ok=%v err=%v", ok, err)
	}
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmBcrypt
	cfg.WorkFactor = 4

	h, err := cfg.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(h, "$2a$04$") {
		t.Fatalf("unexpected bcrypt encoding: %q", h)
	}

	ok, err := cfg.Verify(h, "correct horse battery")
	if err != nil || !ok {
		t.Fatalf("expected match: ok=%v err=%v", ok, err)
	}

	ok, err = cfg.Verify(h, "wrong horse battery")
	if err != nil || ok {
		t.Fatalf("expected mismatch: ok=%v err=%v", ok, err)
	}
}

func TestVerify_DispatchesOnEncoding(t *testing.T) {
	bc := DefaultConfig()
	bc.Algorithm = AlgorithmBcrypt
	bc.WorkFactor = 4

	h, err := bc.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	// An Argon2id-configured hasher still verifies stored bcrypt hashes.
	ok, err := fastConfig().Verify(h, "correct horse battery")
	if err != nil || !ok {
		t.Fatalf("expected bcrypt hash to verify under argon2id config: ok=%v err=%v", ok, err)
	}
}

func TestValidate_MinMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.MinLength = 12
	cfg.Policy.MaxLength = 16

	if err := cfg.Validate("short"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	if err := cfg.Validate("this password is definitely too long"); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	if err := cfg.Validate("goodpassw0rd!"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidate_BcryptByteLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmBcrypt
	cfg.Policy.MaxLength = 128

	// 40 runes, 80 bytes.
	pw := strings.Repeat("й", 40)
	if err := cfg.Validate(pw); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	cfg.Algorithm = AlgorithmArgon2id
	if err := cfg.Validate(pw); err != nil {
		t.Fatalf("expected ok for argon2id, got %v", err)
	}
}

func TestPolicy_RejectVeryWeak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.RejectVeryWeak = true
	cfg.Policy.MinLength = 8

	for _, pw := range []string{"password", "11111111", "998901234567", "Barbershop"} {
		if err := cfg.Validate(pw); err != ErrWeakPassword {
			t.Fatalf("Validate(%q): expected ErrWeakPassword, got %v", pw, err)
		}
	}
	if err := cfg.Validate("a-very-ok-pass"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestHashUnchecked_IgnoresPolicy(t *testing.T) {
	cfg := fastConfig()
	cfg.Policy.MinLength = 64

	if _, err := cfg.Hash("short"); !IsPolicyError(err) {
		t.Fatalf("Hash err=%v; want policy error", err)
	}

	h, err := cfg.HashUnchecked("short")
	if err != nil {
		t.Fatalf("HashUnchecked error: %v", err)
	}
	ok, err := cfg.Verify(h, "short")
	if err != nil || !ok {
		t.Fatalf("Verify ok=%v err=%v", ok, err)
	}
}

package password

import (
	"os"
	"testing"
)

var passwordEnvKeys = []string{
	"STYLEHUB_PASSWORD_ALGORITHM",
	"STYLEHUB_PASSWORD_WORK_FACTOR",
	"STYLEHUB_PASSWORD_MIN_LEN",
	"STYLEHUB_PASSWORD_MAX_LEN",
	"STYLEHUB_PASSWORD_REJECT_VERY_WEAK",
	"STYLEHUB_ARGON2_MEMORY_KIB",
	"STYLEHUB_ARGON2_PARALLELISM",
	"STYLEHUB_ARGON2_SALT_LEN",
	"STYLEHUB_ARGON2_KEY_LEN",
}

func clearPasswordEnv(t *testing.T) {
	t.Helper()
	for _, k := range passwordEnvKeys {
		// Register restore through t.Setenv, then drop the variable entirely.
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearPasswordEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	def := DefaultConfig()
	if cfg.Algorithm != AlgorithmArgon2id {
		t.Fatalf("algorithm mismatch: %q", cfg.Algorithm)
	}
	if cfg.WorkFactor != def.WorkFactor || cfg.Params.Iterations != def.Params.Iterations {
		t.Fatalf("work factor mismatch: %+v", cfg)
	}
	if cfg.Policy.MinLength != def.Policy.MinLength {
		t.Fatalf("min length mismatch")
	}
	if cfg.Params.MemoryKiB != def.Params.MemoryKiB {
		t.Fatalf("memory mismatch")
	}
}

func TestFromEnv_Override(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("STYLEHUB_PASSWORD_WORK_FACTOR", "4")
	t.Setenv("STYLEHUB_PASSWORD_MIN_LEN", "10")
	t.Setenv("STYLEHUB_PASSWORD_MAX_LEN", "200")
	t.Setenv("STYLEHUB_PASSWORD_REJECT_VERY_WEAK", "true")
	t.Setenv("STYLEHUB_ARGON2_MEMORY_KIB", "32768")
	t.Setenv("STYLEHUB_ARGON2_PARALLELISM", "2")
	t.Setenv("STYLEHUB_ARGON2_SALT_LEN", "24")
	t.Setenv("STYLEHUB_ARGON2_KEY_LEN", "32")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	if cfg.Policy.MinLength != 10 || cfg.Policy.MaxLength != 200 || !cfg.Policy.RejectVeryWeak {
		t.Fatalf("policy override failed: %+v", cfg.Policy)
	}
	if cfg.WorkFactor != 4 || cfg.Params.Iterations != 4 {
		t.Fatalf("work factor override failed: %+v", cfg)
	}
	if cfg.Params.MemoryKiB != 32768 || cfg.Params.Parallelism != 2 {
		t.Fatalf("argon2 override failed: %+v", cfg.Params)
	}
	if cfg.Params.SaltLength != 24 || cfg.Params.KeyLength != 32 {
		t.Fatalf("len override failed: %+v", cfg.Params)
	}
}

func TestFromEnv_Bcrypt(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("STYLEHUB_PASSWORD_ALGORITHM", "bcrypt")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Algorithm != AlgorithmBcrypt || cfg.WorkFactor != 12 {
		t.Fatalf("expected bcrypt with default cost 12, got %q/%d", cfg.Algorithm, cfg.WorkFactor)
	}

	t.Setenv("STYLEHUB_PASSWORD_WORK_FACTOR", "10")
	cfg, err = FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.WorkFactor != 10 {
		t.Fatalf("expected cost 10, got %d", cfg.WorkFactor)
	}

	t.Setenv("STYLEHUB_PASSWORD_WORK_FACTOR", "3")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for bcrypt cost below minimum")
	}
}

func TestFromEnv_InvalidAlgorithm(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("STYLEHUB_PASSWORD_ALGORITHM", "md5")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFromEnv_InvalidMinMax(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("STYLEHUB_PASSWORD_MIN_LEN", "20")
	t.Setenv("STYLEHUB_PASSWORD_MAX_LEN", "10")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error")
	}
}

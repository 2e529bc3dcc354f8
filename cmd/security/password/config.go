package password

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm selects the one-way function used by Hash.
// Verify always dispatches on the encoded hash itself.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int
	MaxLength int
	// If true, enable an extra, minimal weak-pattern rejection.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
//
// WorkFactor is the tunable cost: Argon2id iterations or the bcrypt cost,
// depending on Algorithm.
type Config struct {
	Algorithm  Algorithm
	WorkFactor int
	Params     Argon2idParams
	Policy     Policy
}

const (
	defaultArgon2Iterations = 3
	defaultBcryptCost       = 12

	maxArgon2Iterations = 20
	// bcrypt cost above this takes seconds per verify on commodity hardware.
	maxBcryptCost = 16
)

// DefaultConfig returns an Argon2id baseline suitable for interactive logins.
func DefaultConfig() Config {
	// Clamp parallelism to [1..4] to keep resource usage predictable in containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Algorithm:  AlgorithmArgon2id,
		WorkFactor: defaultArgon2Iterations,
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024,               // 64 MiB
			Iterations:  defaultArgon2Iterations, // mirrors WorkFactor
			Parallelism: uint8(threads),          // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      8,
			MaxLength:      128,
			RejectVeryWeak: false,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - STYLEHUB_PASSWORD_ALGORITHM (argon2id | bcrypt)
// - STYLEHUB_PASSWORD_WORK_FACTOR (argon2id iterations or bcrypt cost)
// - STYLEHUB_PASSWORD_MIN_LEN
// - STYLEHUB_PASSWORD_MAX_LEN
// - STYLEHUB_PASSWORD_REJECT_VERY_WEAK (true/false)
// - STYLEHUB_ARGON2_MEMORY_KIB
// - STYLEHUB_ARGON2_PARALLELISM
// - STYLEHUB_ARGON2_SALT_LEN
// - STYLEHUB_ARGON2_KEY_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("STYLEHUB_PASSWORD_ALGORITHM"); ok {
		alg, err := parseAlgorithm(v)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_PASSWORD_ALGORITHM: %w", err)
		}
		cfg.Algorithm = alg
		if alg == AlgorithmBcrypt {
			cfg.WorkFactor = defaultBcryptCost
		}
	}

	if v, ok := os.LookupEnv("STYLEHUB_PASSWORD_WORK_FACTOR"); ok {
		minVal, maxVal := 1, maxArgon2Iterations
		if cfg.Algorithm == AlgorithmBcrypt {
			minVal, maxVal = bcrypt.MinCost, maxBcryptCost
		}
		n, err := atoiPositiveInt(v, minVal, maxVal)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_PASSWORD_WORK_FACTOR: %w", err)
		}
		cfg.WorkFactor = n
	}

	if v, ok := os.LookupEnv("STYLEHUB_PASSWORD_MIN_LEN"); ok {
		n, err := atoiPositiveInt(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	if v, ok := os.LookupEnv("STYLEHUB_PASSWORD_MAX_LEN"); ok {
		n, err := atoiPositiveInt(v, 1, 4096)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = n
	}

	if v, ok := os.LookupEnv("STYLEHUB_PASSWORD_REJECT_VERY_WEAK"); ok {
		b, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_PASSWORD_REJECT_VERY_WEAK: %w", err)
		}
		cfg.Policy.RejectVeryWeak = b
	}

	if v, ok := os.LookupEnv("STYLEHUB_ARGON2_MEMORY_KIB"); ok {
		u, err := atou32(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_ARGON2_MEMORY_KIB: %w", err)
		}
		cfg.Params.MemoryKiB = u
	}

	if v, ok := os.LookupEnv("STYLEHUB_ARGON2_PARALLELISM"); ok {
		u, err := atou32(v, 1, 64)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_ARGON2_PARALLELISM: %w", err)
		}
		p, err := u32ToU8(u)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Params.Parallelism = p
	}

	if v, ok := os.LookupEnv("STYLEHUB_ARGON2_SALT_LEN"); ok {
		u, err := atou32(v, 8, 64)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_ARGON2_SALT_LEN: %w", err)
		}
		cfg.Params.SaltLength = u
	}

	if v, ok := os.LookupEnv("STYLEHUB_ARGON2_KEY_LEN"); ok {
		u, err := atou32(v, 16, 64)
		if err != nil {
			return Config{}, fmt.Errorf("STYLEHUB_ARGON2_KEY_LEN: %w", err)
		}
		cfg.Params.KeyLength = u
	}

	if cfg.Algorithm == AlgorithmArgon2id {
		cfg.Params.Iterations = uint32(cfg.WorkFactor) // #nosec G115 -- bounded by atoiPositiveInt above.
	}

	// Final sanity.
	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func parseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case AlgorithmArgon2id, "":
		return AlgorithmArgon2id, nil
	case AlgorithmBcrypt:
		return AlgorithmBcrypt, nil
	default:
		return "", fmt.Errorf("unsupported algorithm %q", s)
	}
}

func atoiPositiveInt(s string, minVal, maxVal int) (int, error) {
	s = strings.TrimSpace(s)
	i64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}

	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}

func atou32(s string, minVal, maxVal uint32) (uint32, error) {
	s = strings.TrimSpace(s)
	u64, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}

	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}

func u32ToU8(u uint32) (uint8, error) {
	if u > math.MaxUint8 {
		return 0, fmt.Errorf("out of range [0..%d]", math.MaxUint8)
	}
	return uint8(u), nil
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean")
	}
}

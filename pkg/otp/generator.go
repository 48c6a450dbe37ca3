package otp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

// Algorithm represents the hash algorithm used for OTP generation.
type Algorithm string

const (
	// AlgorithmSHA1 uses SHA1 hash algorithm.
	AlgorithmSHA1 Algorithm = "SHA1"
	// AlgorithmSHA256 uses SHA256 hash algorithm.
	AlgorithmSHA256 Algorithm = "SHA256"
	// AlgorithmSHA512 uses SHA512 hash algorithm.
	AlgorithmSHA512 Algorithm = "SHA512"
)

const (
	// DefaultDigits is the code length used when Config.Digits is zero.
	DefaultDigits = 6
	// DefaultPeriod is the TOTP time step in seconds.
	DefaultPeriod = 30
	// DefaultSkew is the number of steps Verify accepts on either side.
	DefaultSkew = 1
)

// Common errors returned by the generator.
var (
	// ErrInvalidConfig indicates the configuration is invalid.
	ErrInvalidConfig = errors.New("otp: invalid configuration")
	// ErrInvalidSecret indicates the secret is empty.
	ErrInvalidSecret = errors.New("otp: invalid secret")
	// ErrNilGenerator indicates a nil generator was used.
	ErrNilGenerator = errors.New("otp: generator is nil")
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config holds token generator configuration.
type Config struct {
	// Digits specifies the number of digits in the OTP code (6, 7, or 8).
	// Default: 6
	Digits uint
	// Period specifies the time step in seconds.
	// Default: 30
	Period uint
	// Algorithm specifies the hash algorithm to use.
	// Default: SHA1
	Algorithm Algorithm
	// Skew specifies the number of time periods Verify checks before and
	// after the target time.
	// Default: 1
	Skew uint
}

// validate checks that the configuration is valid.
func (c Config) validate() error {
	if c.Digits != 0 && c.Digits != 6 && c.Digits != 7 && c.Digits != 8 {
		return fmt.Errorf("%w: digits must be 6, 7, or 8", ErrInvalidConfig)
	}

	if c.Algorithm != "" && c.Algorithm != AlgorithmSHA1 &&
		c.Algorithm != AlgorithmSHA256 && c.Algorithm != AlgorithmSHA512 {
		return fmt.Errorf("%w: algorithm must be SHA1, SHA256, or SHA512", ErrInvalidConfig)
	}

	return nil
}

// withDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.Digits == 0 {
		c.Digits = DefaultDigits
	}
	if c.Period == 0 {
		c.Period = DefaultPeriod
	}
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmSHA1
	}
	if c.Skew == 0 {
		c.Skew = DefaultSkew
	}
	return c
}

func (a Algorithm) otpAlgorithm() otp.Algorithm {
	switch a {
	case AlgorithmSHA256:
		return otp.AlgorithmSHA256
	case AlgorithmSHA512:
		return otp.AlgorithmSHA512
	default:
		return otp.AlgorithmSHA1
	}
}

// Generator computes TOTP codes for raw secrets at fixed instants.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	cfg       Config
	otpAlgo   otp.Algorithm
	otpDigits otp.Digits
}

// NewGenerator creates a new token generator.
// The configuration is validated and an error is returned if invalid.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	return &Generator{
		cfg:       cfg,
		otpAlgo:   cfg.Algorithm.otpAlgorithm(),
		otpDigits: otp.Digits(cfg.Digits),
	}, nil
}

// Config returns the effective configuration with defaults applied.
func (g *Generator) Config() Config {
	if g == nil {
		return Config{}
	}
	return g.cfg
}

// Counter returns the time step containing the instant at (seconds since epoch).
func (g *Generator) Counter(at uint64) uint64 {
	return at / uint64(g.cfg.Period)
}

// Code returns the code for secret at the instant at (seconds since epoch).
func (g *Generator) Code(secret []byte, at uint64) (string, error) {
	if g == nil {
		return "", ErrNilGenerator
	}
	return g.CodeAtCounter(secret, g.Counter(at))
}

// CodeAtCounter returns the code for secret at an explicit time step.
// Callers scanning many secrets at one instant compute the step once.
func (g *Generator) CodeAtCounter(secret []byte, counter uint64) (string, error) {
	if g == nil {
		return "", ErrNilGenerator
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: secret must not be empty", ErrInvalidSecret)
	}

	code, err := hotp.GenerateCodeCustom(b32.EncodeToString(secret), counter,
		hotp.ValidateOpts{
			Digits:    g.otpDigits,
			Algorithm: g.otpAlgo,
		})
	if err != nil {
		return "", fmt.Errorf("otp: failed to generate code: %w", err)
	}
	return code, nil
}

// Verify reports whether code is valid for secret at the instant at,
// accepting the configured number of steps of clock skew either way.
func (g *Generator) Verify(secret []byte, code string, at uint64) bool {
	if g == nil || len(secret) == 0 || at > math.MaxInt64 {
		return false
	}

	valid, err := totp.ValidateCustom(code, b32.EncodeToString(secret), time.Unix(int64(at), 0).UTC(),
		totp.ValidateOpts{
			Period:    g.cfg.Period,
			Skew:      g.cfg.Skew,
			Digits:    g.otpDigits,
			Algorithm: g.otpAlgo,
		})
	return err == nil && valid
}

// GenerateSecret generates a cryptographically random 20 byte secret.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("otp: failed to generate random secret: %w", err)
	}
	return secret, nil
}

// EncodeSecret returns the unpadded base32 form of secret.
func EncodeSecret(secret []byte) string {
	return b32.EncodeToString(secret)
}

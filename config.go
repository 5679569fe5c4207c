package tailbound

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/big"
	"os"
	"strings"
)

// Config mirrors the optional constants file. Every field has a published
// default; the file only overrides what it names.
type Config struct {
	// NStarStr is the reference scale as an exact decimal-integer string.
	// It takes precedence over NStar so the 19-digit default survives the
	// float round trip intact.
	NStarStr string `json:"N_star_str"`

	// NStar is the reference scale as a float literal, kept for files that
	// predate NStarStr.
	NStar float64 `json:"N_star"`

	K      float64 `json:"K"`
	SFloor float64 `json:"S_floor"`
	CW     float64 `json:"C_W"`
}

// DefaultConfig returns the published verification constants.
func DefaultConfig() Config {
	return Config{
		NStarStr: "4000000000000000000",
		NStar:    4e18,
		K:        10.0,
		SFloor:   1.2,
		CW:       2.0,
	}
}

// LoadConfig reads the constants file at path over the defaults. An absent
// file and a malformed file both leave the defaults in effect; the malformed
// case is logged as a warning. This is the one tolerance policy for optional
// external configuration: the computation never fails because a convenience
// file is bad.
func LoadConfig(path string, logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg
	}
	if err != nil {
		logger.Warn("constants file unreadable, using defaults", "path", path, "err", err)
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Warn("constants file malformed, using defaults", "path", path, "err", err)
		return DefaultConfig()
	}
	return cfg
}

// Constants extracts the proof-side constants.
func (c Config) Constants() Constants {
	return Constants{K: c.K, SFloor: c.SFloor, CW: c.CW}
}

// NStarInt resolves the configured reference scale to an exact integer,
// preferring the string form.
func (c Config) NStarInt() (*big.Int, error) {
	if c.NStarStr != "" {
		return ParseN(c.NStarStr)
	}
	return ParseN(fmt.Sprintf("%g", c.NStar))
}

// ParseN parses a scale given either as a decimal-integer string or as a
// float literal. Digit-only strings parse as exact arbitrary-precision
// integers — 4×10^18 is above 2^53, a float round trip would corrupt it.
// Float literals are truncated toward zero.
func ParseN(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("parse N: empty string")
	}

	if n, ok := new(big.Int).SetString(s, 10); ok {
		return n, nil
	}

	f, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("parse N: %q is neither an integer nor a float literal: %w", s, err)
	}
	if f.IsInf() {
		return nil, fmt.Errorf("parse N: %q is not finite", s)
	}
	n, _ := f.Int(nil)
	return n, nil
}

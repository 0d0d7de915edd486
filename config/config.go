package config

import (
	"fmt"
	"path/filepath"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spacemeshos/smutil"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/shared"
)

// BitOrder names the order in which the bits of a field are laid out in a byte stream.
type BitOrder string

const (
	// LSB lays out the least-significant bit of every byte first.
	LSB BitOrder = "lsb"
	// MSB lays out the most-significant bit of every byte first.
	MSB BitOrder = "msb"
)

const (
	MinFieldWidth = 1
	MaxFieldWidth = bitstream.MaxFieldWidth

	DefaultConfigFileName = "config.toml"
	DefaultFieldWidth     = 8
	DefaultBufferSize     = 1 << 16
	DefaultLogLevel       = "info"
	DefaultMinFreeSpace   = "1M"
)

var (
	DefaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), "bitio")
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFileName)
)

type Config struct {
	FieldWidth   uint     `mapstructure:"width"`
	Count        uint64   `mapstructure:"count"`
	From         BitOrder `mapstructure:"from"`
	To           BitOrder `mapstructure:"to"`
	BufferSize   int      `mapstructure:"buffer-size"`
	LogLevel     string   `mapstructure:"log-level"`
	MinFreeSpace string   `mapstructure:"min-free-space"`
}

func DefaultConfig() *Config {
	return &Config{
		FieldWidth:   DefaultFieldWidth,
		From:         LSB,
		To:           MSB,
		BufferSize:   DefaultBufferSize,
		LogLevel:     DefaultLogLevel,
		MinFreeSpace: DefaultMinFreeSpace,
	}
}

func (cfg *Config) Validate() error {
	if cfg.FieldWidth < MinFieldWidth {
		return fmt.Errorf("invalid `FieldWidth`; expected: >= %d, given: %d", MinFieldWidth, cfg.FieldWidth)
	}

	if cfg.FieldWidth > MaxFieldWidth {
		return fmt.Errorf("invalid `FieldWidth`; expected: <= %d, given: %d", MaxFieldWidth, cfg.FieldWidth)
	}

	if err := cfg.From.Validate(); err != nil {
		return fmt.Errorf("invalid `From`: %w", err)
	}

	if err := cfg.To.Validate(); err != nil {
		return fmt.Errorf("invalid `To`: %w", err)
	}

	if cfg.BufferSize <= 0 || !shared.IsPowerOfTwo(uint64(cfg.BufferSize)) {
		return fmt.Errorf("invalid `BufferSize`; expected: a power of 2, given: %d", cfg.BufferSize)
	}

	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("invalid `LogLevel`: %w", err)
	}

	if _, err := cfg.MinFreeSpaceBytes(); err != nil {
		return fmt.Errorf("invalid `MinFreeSpace`: %w", err)
	}

	return nil
}

// Level parses LogLevel.
func (cfg *Config) Level() (zapcore.Level, error) {
	var lvl zapcore.Level
	err := lvl.UnmarshalText([]byte(cfg.LogLevel))
	return lvl, err
}

// MinFreeSpaceBytes parses MinFreeSpace. An empty value disables the check.
func (cfg *Config) MinFreeSpaceBytes() (uint64, error) {
	if cfg.MinFreeSpace == "" {
		return 0, nil
	}
	return bytefmt.ToBytes(cfg.MinFreeSpace)
}

func (o BitOrder) Validate() error {
	switch o {
	case LSB, MSB:
		return nil
	default:
		return fmt.Errorf("unknown bit order %q; expected: %q or %q", o, LSB, MSB)
	}
}

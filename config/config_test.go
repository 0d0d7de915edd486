package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitio/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())

	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, lvl)

	space, err := cfg.MinFreeSpaceBytes()
	require.NoError(t, err)
	require.Equal(t, uint64(1<<20), space)
}

func TestValidateFieldWidth(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig()

	cfg.FieldWidth = 0
	require.Error(t, cfg.Validate())

	cfg.FieldWidth = config.MaxFieldWidth + 1
	require.Error(t, cfg.Validate())

	cfg.FieldWidth = config.MaxFieldWidth
	require.NoError(t, cfg.Validate())
}

func TestValidateBitOrder(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig()

	cfg.To = "middle-endian"
	require.ErrorContains(t, cfg.Validate(), "invalid `To`")

	cfg.To = config.LSB
	cfg.From = ""
	require.ErrorContains(t, cfg.Validate(), "invalid `From`")
}

func TestValidateMisc(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.BufferSize = 0
	require.ErrorContains(t, cfg.Validate(), "invalid `BufferSize`")

	cfg.BufferSize = 1000
	require.ErrorContains(t, cfg.Validate(), "expected: a power of 2, given: 1000")

	cfg.BufferSize = 4096
	require.NoError(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.LogLevel = "chatty"
	require.ErrorContains(t, cfg.Validate(), "invalid `LogLevel`")

	cfg = config.DefaultConfig()
	cfg.MinFreeSpace = "lots"
	require.ErrorContains(t, cfg.Validate(), "invalid `MinFreeSpace`")

	cfg.MinFreeSpace = ""
	require.NoError(t, cfg.Validate())
	space, err := cfg.MinFreeSpaceBytes()
	require.NoError(t, err)
	require.Zero(t, space)
}

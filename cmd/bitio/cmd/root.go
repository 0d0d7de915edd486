package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitio/config"
)

var (
	// Version is the version of the binary.
	Version = "0.0.0"

	// Commit is the commit hash of the binary.
	Commit = ""

	// cfg and logger are set up before any subcommand runs.
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bitio",
	Short: "Pack and unpack LSB-first bit-field streams",
	Long: `bitio reads and writes streams of fixed-width bit-fields.
Within every byte the least-significant bit comes first, and a field's
low-order bit is the first of its bits in the stream.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	def := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.String("config", config.DefaultConfigFile, "path to configuration file")
	flags.Bool("print-config", false, "print the used config")

	flags.Uint("width", def.FieldWidth, fmt.Sprintf("field width in bits (%d..%d)", config.MinFieldWidth, config.MaxFieldWidth))
	flags.Int("buffer-size", def.BufferSize, "read buffer size in bytes, a power of 2")
	flags.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	flags.String("min-free-space", def.MinFreeSpace, "disk space to keep free when writing files, e.g. 64M (empty disables the check)")
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lvl, _ := c.Level()
	cfg, logger = c, newLogger(lvl, cmd.ErrOrStderr())

	if printCfg, _ := cmd.Flags().GetBool("print-config"); printCfg {
		spew.Fdump(cmd.ErrOrStderr(), cfg)
	}
	return nil
}

// loadConfig merges defaults, the config file and command-line flags, in increasing priority.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	vip := viper.New()
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	fileLocation := smutil.GetCanonicalPath(vip.GetString("config"))
	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		// The default config file is optional.
		var pathErr *os.PathError
		if cmd.Flags().Changed("config") || !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c := config.DefaultConfig()
	if err := vip.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func newLogger(level zapcore.Level, out io.Writer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(out)),
		level,
	)
	return zap.New(core)
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/oarkflow/log"
	"github.com/spf13/cobra"

	"napkin/pkg/config"
)

var (
	cfgFile  string
	logLevel string

	appConfig *config.Config
	logger    *log.Logger
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("error already reported")

// exitError carries a status requested by the program itself.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

var rootCmd = &cobra.Command{
	Use:   "napkin [file]",
	Short: "napkin - a small language for real and complex arithmetic",
	Long: `napkin runs programs written in the napkin language.

With a file argument the file is executed. Without one an interactive
REPL is started.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runFile(args[0], false, false)
		}
		return startREPL()
	},
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if !errors.Is(err, errReported) {
		printError(err)
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	appConfig = cfg
	logger = cfg.Logger()
	logger.Debug().Str("command", cmd.Name()).Msg("configuration loaded")
	return nil
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "napkin: %v\n", err)
}

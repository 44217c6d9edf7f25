package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tem/calculator"
)

// NewRootCmd wires every subcommand onto a fresh root.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tem",
		Short: "Steady-state temperature field of a thermoelectric module",
		Long: `tem meshes a layered cross-section of a thermoelectric module, assembles the
finite volume conduction equations and solves them with line-by-line TDMA sweeps.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "ini configuration file")
	root.PersistentFlags().String("log-level", "", "override the [log] Level of the configuration")

	root.AddCommand(newSolveCmd(), newServeCmd(), newLayersCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration named by --config, or the defaults, and
// the logger it describes. Logs go to the command's stderr.
func setup(cmd *cobra.Command) (calculator.Config, *log.Logger, error) {
	cfg := calculator.DefaultConfig()
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		var err error
		if cfg, err = calculator.LoadConfig(path); err != nil {
			return cfg, nil, err
		}
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	logger, err := cfg.Logger()
	if err != nil {
		return cfg, nil, err
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return cfg, logger, nil
}

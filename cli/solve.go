package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"tem/calculator"
	"tem/export"
	"tem/model"
)

// logReporter prints pipeline status through the logger.
type logReporter struct {
	log log.FieldLogger
}

func (r logReporter) Progress(p int)   { r.log.WithField("progress", p).Debug("progress") }
func (r logReporter) Status(s string)  { r.log.Info(s) }
func (r logReporter) Debug(msg string) { r.log.Debug(msg) }

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve the temperature field once and export it",
		RunE:  runSolve,
	}
	f := cmd.Flags()
	f.String("layout", "", "YAML layout file, the TEM layout when empty")
	f.String("materials", "", "YAML material catalog, the built-in table when empty")
	f.String("csv", "", "write node positions, material codes and temperatures to this file")
	f.String("png", "", "write a heat map of the field to this file")
	f.Float64("tol", 0, "convergence tolerance in K")
	f.Int("max-iter", 0, "iteration cap")
	f.Int("workers", 0, "parallel line solvers")
	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *calculator.Config) {
	f := cmd.Flags()
	if v, _ := f.GetString("layout"); v != "" {
		cfg.LayoutFile = v
	}
	if v, _ := f.GetString("materials"); v != "" {
		cfg.MaterialsFile = v
	}
	if v, _ := f.GetFloat64("tol"); v > 0 {
		cfg.Tolerance = v
	}
	if v, _ := f.GetInt("max-iter"); v > 0 {
		cfg.MaxIterations = v
	}
	if v, _ := f.GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	c := calculator.NewCalculator(cfg, catalog,
		calculator.WithLogger(logger),
		calculator.WithReporter(logReporter{log: logger}))
	layers, err := c.Layers()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	res, runErr := c.Run(ctx, layers)

	var ce *calculator.ConvergenceError
	if runErr != nil && !errors.As(runErr, &ce) {
		return runErr
	}

	summary := export.Summarize(uuid.NewString(), res, runErr)
	printSummary(cmd, summary)

	recs := export.Records(res.Mesh)
	if err := writeOutputs(cmd, recs); err != nil {
		return err
	}
	return runErr
}

func printSummary(cmd *cobra.Command, s model.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run        %s\n", s.ID)
	fmt.Fprintf(out, "nodes      %d in %d layers, %d boundary nodes\n", s.Nodes, s.Layers, s.BoundaryNodes)
	fmt.Fprintf(out, "iterations %d, max change %.3e K, converged %t\n", s.Iterations, s.MaxChange, s.Converged)
	fmt.Fprintf(out, "T          min %.3f K, mean %.3f K, max %.3f K\n", s.Min, s.Mean, s.Max)
	if s.Violations > 0 {
		fmt.Fprintf(out, "warning    %d negative values clamped\n", s.Violations)
	}
}

func writeOutputs(cmd *cobra.Command, recs []model.NodeRecord) error {
	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		if err := writeFile(path, func(f *os.File) error {
			return export.WriteCSV(f, recs, true)
		}); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("png"); path != "" {
		if err := writeFile(path, func(f *os.File) error {
			return export.HeatMap(f, recs, 24*vg.Centimeter, 8*vg.Centimeter, "png")
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

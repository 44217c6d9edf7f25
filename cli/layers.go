package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tem/calculator"
)

func newLayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List the layers of the layout without solving",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if layout, _ := cmd.Flags().GetString("layout"); layout != "" {
				cfg.LayoutFile = layout
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}
			c := calculator.NewCalculator(cfg, catalog, calculator.WithLogger(logger))
			layers, err := c.Layers()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			nodes := 0
			for _, l := range layers {
				nodes += l.N * l.N
				fmt.Fprintln(out, l)
			}
			d := c.Config().Domain
			fmt.Fprintf(out, "%d layers, %d nodes before deduplication, domain %gx%g m\n",
				len(layers), nodes, d.Width, d.Height)
			return nil
		},
	}
	cmd.Flags().String("layout", "", "YAML layout file, the TEM layout when empty")
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/splitplan/pkg/io"
	"github.com/matzehuels/splitplan/pkg/pipeline"
)

type planFlags struct {
	json      bool
	maxLayers int
	refresh   bool
}

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "plan <demand>",
		Short: "Compute the splitter layers for a demand ratio",
		Long: `Compute the splitter layers for a demand ratio.

The demand lists the relative flow of each output, separated by commas,
colons or spaces. Layers are printed input side first.

Examples:
  splitplan plan 54:18:24
  splitplan plan 3,1 --json > plan.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), cmd.OutOrStdout(), args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "print the plan as JSON")
	cmd.Flags().IntVar(&flags.maxLayers, "max-layers", 0, "fail when more layers are needed (0 uses the configured or derived cap)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if the plan is cached")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, out io.Writer, args []string, flags planFlags) error {
	demand, err := parseDemandArgs(args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p, cached, err := runner.PlanWithCacheInfo(ctx, pipeline.Options{
		Demand:    demand,
		MaxLayers: c.maxLayers(flags.maxLayers),
		Refresh:   flags.refresh,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	if flags.json {
		return pkgio.WriteJSON(p, out)
	}
	fmt.Fprintln(out, formatPlan(p))
	printStats(out, p, cached)
	return nil
}

// maxLayers prefers an explicit flag over the configured cap.
func (c *CLI) maxLayers(flag int) int {
	if flag > 0 {
		return flag
	}
	return c.config().Plan.MaxLayers
}

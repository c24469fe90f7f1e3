package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/factory"
	"github.com/warp/cashflow-planner/planner"
)

type options struct {
	planPath string
	from     string
	to       string
	today    func() engine.Date
}

func newRootCmd() *cobra.Command {
	opts := &options{today: engine.Today}

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Cash-flow planner CLI",
		Long:          "Project daily balances, recurring events and insights from a JSON plan file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.planPath, "plan", "p", "plan.json", "Plan file")
	root.PersistentFlags().StringVar(&opts.from, "from", "", "First day (YYYY-MM-DD, default today)")
	root.PersistentFlags().StringVar(&opts.to, "to", "", "Last day (YYYY-MM-DD, default day before next payday)")

	root.AddCommand(
		newProjectCmd(opts),
		newUpcomingCmd(opts),
		newInsightsCmd(opts),
		newVariationsCmd(opts),
		newInitCmd(opts),
	)
	return root
}

// load reads the plan file into a planner.
func (o *options) load(ctx context.Context) (*planner.Planner, error) {
	snap, err := factory.NewPlanFactory().ReadPlanFile(o.planPath)
	if err != nil {
		return nil, err
	}
	p := planner.New(snap.State)
	if err := p.Restore(ctx, *snap); err != nil {
		return nil, err
	}
	return p, nil
}

// dateRange resolves --from/--to, filling gaps from the default dashboard range.
func (o *options) dateRange(p *planner.Planner) (engine.Range, error) {
	from := o.today()
	if o.from != "" {
		d, err := engine.ParseDate(o.from)
		if err != nil {
			return engine.Range{}, fmt.Errorf("--from: %w", err)
		}
		from = d
	}

	rng := p.DefaultDashboardRange(from)
	if o.to != "" {
		d, err := engine.ParseDate(o.to)
		if err != nil {
			return engine.Range{}, fmt.Errorf("--to: %w", err)
		}
		rng.End = d
	}
	if rng.IsEmpty() {
		return engine.Range{}, fmt.Errorf("%w: %s", engine.ErrInvalidRange, rng)
	}
	return rng, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/cashflow-planner/cli"
	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/factory"
	"github.com/warp/cashflow-planner/planner"
)

func newProjectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Daily balances over a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			rng, err := opts.dateRange(p)
			if err != nil {
				return err
			}
			snaps, err := p.Balances(cmd.Context(), rng)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTitle("Projection"))
			fmt.Fprintln(out, cli.Summary(rng))
			fmt.Fprint(out, cli.BalancesTable(snaps))
			return nil
		},
	}
}

func newUpcomingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "Recurring and simulated events in a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			rng, err := opts.dateRange(p)
			if err != nil {
				return err
			}
			sims, err := p.FutureSimulations(cmd.Context(), rng)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.Summary(rng))
			fmt.Fprint(out, cli.EventsTable("Recurring", p.UpcomingStandardTransactions(rng)))
			fmt.Fprint(out, cli.EventsTable("Simulated", sims))
			return nil
		},
	}
}

func newInsightsCmd(opts *options) *cobra.Command {
	var focus string
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "First-to-last day change per metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := engine.ParseFocus(focus)
			if err != nil {
				return err
			}
			p, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			rng, err := opts.dateRange(p)
			if err != nil {
				return err
			}
			insights, err := p.DashboardInsights(cmd.Context(), rng, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.Summary(rng))
			fmt.Fprint(out, cli.InsightsTable(insights))
			return nil
		},
	}
	cmd.Flags().StringVar(&focus, "focus", "all", "accounts, vouchers or all")
	return cmd
}

func newVariationsCmd(opts *options) *cobra.Command {
	var metric string
	cmd := &cobra.Command{
		Use:   "variations",
		Short: "Daily variation of one metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := engine.ParseMetric(metric)
			if err != nil {
				return err
			}
			p, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			rng, err := opts.dateRange(p)
			if err != nil {
				return err
			}
			points, err := p.Variations(cmd.Context(), rng, m)
			if err != nil {
				return err
			}

			t := cli.Table{
				Title:   m.Label(),
				Headers: []string{"Date", "Value", "vs first day", "vs previous day"},
			}
			for _, pt := range points {
				t.Rows = append(t.Rows, []string{
					pt.Date.String(),
					cli.FormatMoney(pt.Value),
					cli.FormatPercent(pt.VsInitial),
					cli.FormatPercent(pt.VsPrevious),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(t))
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "total", "total, checking, savings, vouchers, card_debt or net_worth")
	return cmd
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.planPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.planPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			snap := planner.Snapshot{State: planner.DefaultState()}
			if err := factory.NewPlanFactory().WritePlanFile(opts.planPath, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.planPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing plan file")
	return cmd
}

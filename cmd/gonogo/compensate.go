package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/gonogo/bootstrap"
	"github.com/kbukum/gonogo/mturk"
)

// newCompensator is replaced in tests.
var newCompensator = mturk.New

type compensateOptions struct {
	Sandbox bool
	DryRun  bool
	Repeat  bool
	Verbose int
}

func newCompensateCommand(root *rootOptions) *cobra.Command {
	opts := &compensateOptions{}

	cmd := &cobra.Command{
		Use:   "compensate <csv>",
		Short: "Approve assignments and pay bonuses from a CSV",
		Long: "Reads a CSV with worker_id, assignment_id and bonus columns, approves every\n" +
			"assignment and pays the listed bonus. Workers that were already bonused\n" +
			"are skipped unless --repeat is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("sandbox") {
				cfg.MTurk.Sandbox = opts.Sandbox
			}
			if flags.Changed("dry-run") {
				cfg.MTurk.DryRun = opts.DryRun
			}
			if flags.Changed("repeat") {
				cfg.MTurk.Repeat = opts.Repeat
			}
			if flags.Changed("verbose") {
				cfg.MTurk.Verbose = &opts.Verbose
			}
			return runCompensate(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.Sandbox, "sandbox", false, "use the Mechanical Turk sandbox")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "log what would be done without calling the API")
	cmd.Flags().BoolVar(&opts.Repeat, "repeat", false, "bonus workers that were already bonused")
	cmd.Flags().IntVarP(&opts.Verbose, "verbose", "v", mturk.VerboseAll, "0 silent, 1 errors only, 2 every action")

	return cmd
}

func runCompensate(ctx context.Context, cfg *Config, path string, out io.Writer, opts ...bootstrap.Option) error {
	opts = append([]bootstrap.Option{bootstrap.WithSummaryOutput(io.Discard)}, opts...)
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return err
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		live := !app.Cfg.MTurk.Sandbox && !app.Cfg.MTurk.DryRun
		if live && !app.Cfg.IsProduction() {
			app.Logger.Warn("Paying real workers from a non-production config", map[string]interface{}{
				"environment": app.Cfg.Environment,
			})
		}

		comp, err := newCompensator(ctx, app.Cfg.MTurk, app.Logger)
		if err != nil {
			return fmt.Errorf("mturk client: %w", err)
		}
		sum, err := comp.ProcessCSV(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "rows=%d approved=%d bonused=%d skipped=%d failed=%d\n",
			sum.Rows, sum.Approved, sum.Bonused, sum.Skipped, sum.Failed)
		return nil
	})
}

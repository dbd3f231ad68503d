package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilianp07/automail/app"
	"github.com/kilianp07/automail/infra/logger"
	"github.com/kilianp07/automail/simulation"
)

var runOpts struct {
	seed   uint64
	json   bool
	linger time.Duration
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from the configuration",
	RunE:  runSimulation,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().Uint64Var(&runOpts.seed, "seed", 0, "override simulation.seed")
	c.Flags().BoolVar(&runOpts.json, "json", false, "print the report as JSON")
	c.Flags().DurationVar(&runOpts.linger, "linger", 0, "keep the metrics endpoint up after the run")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = runOpts.seed
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	report, runErr := svc.Run(ctx)
	out := cmd.OutOrStdout()
	if runOpts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report, runErr)
	}
	if runErr != nil {
		return runErr
	}

	if runOpts.linger > 0 && cfg.Metrics.PrometheusAddr != "" {
		select {
		case <-ctx.Done():
		case <-time.After(runOpts.linger):
		}
	}
	return nil
}

func printReport(w io.Writer, r simulation.Report, runErr error) {
	title := color.New(color.FgHiGreen, color.Bold)
	if runErr != nil {
		title = color.New(color.FgHiRed, color.Bold)
	}
	label := color.New(color.FgCyan)

	_, _ = title.Fprintf(w, "Finished at tick %d: %d of %d items delivered\n", r.FinalTick, r.Delivered, r.Generated)
	_, _ = fmt.Fprintf(w, "%s %.2f\n", label.Sprint("Score:"), r.Score)
	_, _ = fmt.Fprintf(w, "%s mean %.2f, stddev %.2f, p95 %.2f ticks\n",
		label.Sprint("Delivery delay:"), r.DelayMean, r.DelayStdDev, r.DelayP95)

	variants := make([]string, 0, len(r.Robots))
	for v := range r.Robots {
		variants = append(variants, v)
	}
	slices.Sort(variants)
	for _, v := range variants {
		_, _ = fmt.Fprintf(w, "  %-8s robots %d, operating time %d, charges %.2f\n",
			v, r.Robots[v], r.OperatingTime[v], r.Charges[v])
	}
	if total := r.TotalCharges(); total > 0 {
		_, _ = fmt.Fprintf(w, "%s %.2f\n", label.Sprint("Total charges:"), total)
	}
	if runErr != nil {
		_, _ = color.New(color.FgRed).Fprintf(w, "Error: %v\n", runErr)
	}
}

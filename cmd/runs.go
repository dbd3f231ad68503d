package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/automail/infra/kpi"
	"github.com/kilianp07/automail/infra/logger"
)

var runsSince time.Duration

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the summaries of previous runs",
	RunE:  listRuns,
}

func init() {
	runsCmd.Flags().DurationVar(&runsSince, "since", 0, "only runs finished within this duration")
	rootCmd.AddCommand(runsCmd)
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.KPI.Path == "" {
		return errors.New("kpi.path is not configured")
	}
	store, err := kpi.NewSQLiteStore(cfg.KPI.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.New("main").Errorf("kpi close: %v", err)
		}
	}()

	var start time.Time
	if runsSince > 0 {
		start = time.Now().Add(-runsSince)
	}
	recs, err := store.Query(context.Background(), start, time.Time{})
	if err != nil {
		return err
	}
	return printRuns(cmd.OutOrStdout(), recs)
}

func printRuns(w io.Writer, recs []kpi.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FINISHED\tSEED\tROBOTS\tDELIVERED\tTICKS\tSCORE\tP95 DELAY\tCHARGES")
	for _, r := range recs {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d/%d\t%d\t%.2f\t%.1f\t%.2f\n",
			r.FinishedAt.Local().Format(time.DateTime), r.Seed, r.Robots, r.Delivered, r.Generated,
			r.FinalTick, r.Score, r.DelayP95, r.TotalCharges)
	}
	return tw.Flush()
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilianp07/automail/core/delivery/logging"
	"github.com/kilianp07/automail/infra/logger"
)

var deliveriesQuery logging.LogQuery

var deliveriesCmd = &cobra.Command{
	Use:   "deliveries",
	Short: "Query the delivery log of previous runs",
	RunE:  queryDeliveries,
}

func init() {
	f := deliveriesCmd.Flags()
	f.StringVar(&deliveriesQuery.RobotID, "robot", "", "only deliveries by this robot id")
	f.StringVar(&deliveriesQuery.Variant, "variant", "", "only deliveries by this variant")
	f.IntVar(&deliveriesQuery.FromTick, "from", 0, "first tick, inclusive")
	f.IntVar(&deliveriesQuery.ToTick, "to", 0, "last tick, inclusive")
	rootCmd.AddCommand(deliveriesCmd)
}

func queryDeliveries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := logging.Open(cfg.DeliveryLog)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("delivery log disabled (backend %q)", cfg.DeliveryLog.Backend)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.New("main").Errorf("delivery log close: %v", err)
		}
	}()

	recs, err := store.Query(context.Background(), deliveriesQuery)
	if err != nil {
		return err
	}
	return printDeliveries(cmd.OutOrStdout(), recs)
}

func printDeliveries(w io.Writer, recs []logging.LogRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TICK\tROBOT\tVARIANT\tITEM\tFLOOR\tDELAY\tFEE")
	for _, r := range recs {
		d := r.Delivery
		feeCol := "-"
		if d.Fee != nil {
			feeCol = fmt.Sprintf("%.2f", d.Fee.TotalCost)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			d.Tick, d.RobotID, d.Variant, d.Item.ID, d.Item.DestinationFloor, d.Delay(), feeCol)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := color.New(color.FgCyan).Fprintf(w, "%d deliveries\n", len(recs))
	return err
}

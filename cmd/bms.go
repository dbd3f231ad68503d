package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/automail/infra/bms"
	"github.com/kilianp07/automail/infra/logger"
)

var bmsCmd = &cobra.Command{
	Use:   "bms",
	Short: "Building management system commands",
}

var bmsAddr string

var bmsServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mock building management fee service",
	RunE:  serveBMS,
}

func init() {
	bmsServeCmd.Flags().StringVar(&bmsAddr, "addr", "", "listen address, overrides bms_server.addr")
	bmsCmd.AddCommand(bmsServeCmd)
	rootCmd.AddCommand(bmsCmd)
}

func serveBMS(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	srvCfg := cfg.BMSServer
	if bmsAddr != "" {
		srvCfg.Addr = bmsAddr
	}
	if srvCfg.Pricing.BaseFee == 0 && srvCfg.Pricing.PerFloorFee == 0 && len(srvCfg.Pricing.Overrides) == 0 {
		srvCfg.Pricing = cfg.Fees.Pricing
	}
	return bms.NewServer(srvCfg, logger.New("bms")).ListenAndServe(ctx)
}

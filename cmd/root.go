package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/automail/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "automail",
	Short: "Automail robot mail delivery simulator",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; the environment is used as is.
		_ = godotenv.Load()
	},
	RunE:         runSimulation,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	addRunFlags(rootCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration and applies its logging settings before
// any logger is created.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg.Logging.Apply()
	return cfg, nil
}

package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tierswitch/tierswitch/scaler"
)

var checkConfigPath string

// checkCmd validates a config file without starting the server
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a config file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := scaler.LoadConfig(checkConfigPath)
		if err != nil {
			logrus.Fatalf("Config invalid: %v", err)
		}
		fmt.Printf("config ok: %d tiers, thresholds %.1f/%.1f (hysteresis %.1f), cooldown %s, window %s\n",
			len(cfg.Tiers), cfg.Thresholds.Lower, cfg.Thresholds.Upper, cfg.Thresholds.Hysteresis,
			cfg.Cooldown.Std(), cfg.Window.Std())
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkConfigPath, "config", "tierswitch.yaml", "Path to YAML config file")

	rootCmd.AddCommand(checkCmd)
}

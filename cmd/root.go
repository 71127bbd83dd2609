package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tierswitch/tierswitch/scaler"
	"github.com/tierswitch/tierswitch/scaler/fleet"
	"github.com/tierswitch/tierswitch/server"
)

var (
	// CLI flags; scalars override the config file
	configPath string // Path to the YAML config file
	listenAddr string // Listen address override
	region     string // AWS region override
	logLevel   string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tierswitch",
	Short: "Adaptive whole-tier fleet switcher",
	Long:  "Observes request traffic, estimates the arrival rate over a sliding window and keeps exactly one EC2 tier active, switching tiers with hysteresis and a cooldown.",
}

// serveCmd runs the HTTP shell and the control loop
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve traffic and drive tier transitions",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := scaler.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		if listenAddr != "" {
			cfg.Listen = listenAddr
		}
		if region != "" {
			cfg.Region = region
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fc, err := fleet.NewEC2(ctx, cfg.Region)
		if err != nil {
			logrus.Fatalf("Failed to build EC2 fleet controller: %v", err)
		}

		controller := scaler.NewController(cfg, fc)
		logrus.Infof("Serving on %s: %d tiers, window=%s, cooldown=%s, thresholds=%.1f/%.1f (hysteresis %.1f)",
			cfg.Listen, len(cfg.Tiers), cfg.Window.Std(), cfg.Cooldown.Std(),
			cfg.Thresholds.Lower, cfg.Thresholds.Upper, cfg.Thresholds.Hysteresis)

		if err := server.New(controller).Run(ctx, cfg.Listen); err != nil {
			logrus.Fatalf("Server exited: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "tierswitch.yaml", "Path to YAML config file")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Override listen address from config")
	serveCmd.Flags().StringVar(&region, "region", "", "Override AWS region from config")
	serveCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(serveCmd)
}

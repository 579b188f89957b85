package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"linkshort/internal/config"
	"linkshort/internal/logging"
)

// configPath is set by the persistent --config flag
var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkshort",
	Short: "linkshort is an owner-scoped URL shortener",
	Long: `linkshort creates short codes for destination URLs, redirects visitors
and counts clicks.

Configuration is read from defaults, an optional YAML file (./configs/config.yaml
or --config) and the environment, e.g. DATABASE_URL or AUTH_JWT_SECRET.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

// loadConfig loads configuration and builds the logger it describes
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: os.Stderr,
	})
	slog.SetDefault(logger)
	return cfg, logger, nil
}

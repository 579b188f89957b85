package cli

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Long: `migrate connects to the configured database and brings its schema up to date.
Postgres uses the embedded goose migrations, sqlite uses gorm auto-migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}

		st, err := openStore(cmd.Context(), cfg.Database, logger, true)
		if err != nil {
			return err
		}
		return st.close()
	},
}

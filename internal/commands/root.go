// Package commands implements the ledgerd command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/buildinfo"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/config"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage/sqlstore"
	"github.com/Hruthwik-68/MyVyaya-sub000/pkg/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "ledgerd",
		Short:   "Shared expense ledger with friend balances and payment settlement",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(".env")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to ledgerd.yaml")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logging.Setup(cfg.Log.Level)
		return cfg, nil
	}

	rootCmd.AddCommand(
		newServeCommand(load),
		newMigrateCommand(load),
		newBalancesCommand(load),
		newTokenCommand(load),
	)

	return rootCmd
}

// configLoader resolves the configuration after flags have been parsed.
type configLoader func() (*config.Config, error)

func openStore(cfg *config.Config) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Database.Driver, err)
	}
	return store, nil
}

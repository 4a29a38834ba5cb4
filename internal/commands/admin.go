package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/auth"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/ledger"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
)

func newMigrateCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			// Opening the store applies pending migrations.
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}

func newBalancesCommand(load configLoader) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print a user's friend balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			friends, err := ledger.NewView(store, nil).FriendBalances(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("computing balances: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(friends) == 0 {
				fmt.Fprintln(out, "No shared trackers.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FRIEND\tNAME\tBALANCE\tDIRECTION\tPENDING OUT\tPENDING IN\tTRACKERS")
			for _, f := range friends {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
					f.UserID,
					f.DisplayName,
					f.Balance.StringFixed(2),
					f.Direction,
					f.PendingOutgoing.StringFixed(2),
					f.PendingIncoming.StringFixed(2),
					len(f.SharedTrackers),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID whose view to print (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newTokenCommand(load configLoader) *cobra.Command {
	var userID, name, email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Long: "Issue a bearer token for a user. With --name the user's display\n" +
			"record is created if it does not exist yet.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			if name != "" {
				store, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer store.Close()

				existing, err := store.GetUsersByIDs(cmd.Context(), []string{userID})
				if err != nil {
					return err
				}
				if _, ok := existing[userID]; !ok {
					if err := store.CreateUser(cmd.Context(), &models.User{ID: userID, DisplayName: name, Email: email}); err != nil {
						return err
					}
				}
			}

			token, err := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.Issuer).Generate(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID carried in the token (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&name, "name", "", "display name to register for the user")
	cmd.Flags().StringVar(&email, "email", "", "email to register with --name")

	return cmd
}

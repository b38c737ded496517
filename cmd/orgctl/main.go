// Package main is the operator CLI for Organizai: schema migrations and
// one-off account maintenance.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/organizai/organizai/internal/config"
	"github.com/organizai/organizai/internal/repository"
	"github.com/organizai/organizai/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "orgctl",
		Short:         "Operate an Organizai deployment",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
			return nil
		},
	}
	root.AddCommand(a.migrateCmd(), a.userCmd(), a.recurringCmd())
	return root
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withMigrator := func(fn func(*repository.Migrator) error) error {
		m, err := repository.NewMigrator(a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *repository.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					a.logger.Info("migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("steps must be a number: %w", err)
					}
					steps = n
				}
				return withMigrator(func(m *repository.Migrator) error {
					if err := m.Down(steps); err != nil {
						return err
					}
					a.logger.Info("migrations rolled back", "steps", steps)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *repository.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", v, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

// withRepo opens the database for the duration of fn.
func (a *app) withRepo(ctx context.Context, fn func(*repository.Repository) error) error {
	repo, err := repository.New(ctx, a.cfg.DatabaseURL, a.cfg.PoolOptions())
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(repo)
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd.Context(), func(repo *repository.Repository) error {
				return service.NewAdminService(repo, nil, a.logger).PromoteUser(cmd.Context(), args[0])
			})
		},
	})
	return cmd
}

func (a *app) recurringCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recurring <email>",
		Short: "List recurring transactions detected for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withRepo(ctx, func(repo *repository.Repository) error {
				user, err := repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(args[0])))
				if err != nil {
					return fmt.Errorf("find user: %w", err)
				}
				series, err := service.NewTransactionService(repo, nil, nil, nil, nil, a.logger).Recurring(ctx, user.ID)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(series)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DESCRIPTION\tFREQUENCY\tAMOUNT\tANNUAL\tNEXT\tCONFIDENCE")
				for _, s := range series {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\n",
						s.Description, s.Frequency, s.Amount.StringFixed(2), s.AnnualImpact.StringFixed(2),
						s.NextDate.Format("2006-01-02"), s.Confidence)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the series as JSON")
	return cmd
}

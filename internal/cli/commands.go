package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vytor/studycards/internal/config"
	"github.com/vytor/studycards/internal/db"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/repository/blobstore"
	"github.com/vytor/studycards/internal/repository/rowstore"
	"github.com/vytor/studycards/internal/services"
)

// opener builds the runner for one command invocation and returns its cleanup.
type opener func(ctx context.Context) (*Runner, func(), error)

// New returns the cardctl root command, connected to the stores named by the
// environment configuration.
func New() *cobra.Command {
	return newRoot(openFromConfig)
}

// NewWithRunner returns the root command bound to an existing runner.
func NewWithRunner(r *Runner) *cobra.Command {
	return newRoot(func(context.Context) (*Runner, func(), error) {
		return r, func() {}, nil
	})
}

func newRoot(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cardctl",
		Short:        "Maintain the flashcard collection: backups, restore and categories.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	run := func(fn func(ctx context.Context, r *Runner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			r, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()
			if r.Out == nil {
				r.Out = cmd.OutOrStdout()
			}
			return fn(ctx, r)
		}
	}

	addBackup(cmd, run)
	addBackups(cmd, run)
	addRestore(cmd, run)
	addCategories(cmd, run)
	addRenameCategory(cmd, run)
	addDeleteCategory(cmd, run)
	return cmd
}

type runFunc func(fn func(ctx context.Context, r *Runner) error) func(*cobra.Command, []string) error

func addBackup(topLevel *cobra.Command, run runFunc) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "backup",
		Short: "Write a backup of every card",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, r *Runner) error {
			return r.Backup(ctx)
		}),
	})
}

func addBackups(topLevel *cobra.Command, run runFunc) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "backups",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, r *Runner) error {
			return r.Backups(ctx)
		}),
	})
}

func addRestore(topLevel *cobra.Command, run runFunc) {
	var name string
	cmd := &cobra.Command{
		Use:   "restore NAME",
		Short: "Replace every card with the contents of a backup",
		Example: `
cardctl restore cards-manual-20261015T090503.000000000Z.json
`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			name = args[0]
		},
		RunE: run(func(ctx context.Context, r *Runner) error {
			return r.Restore(ctx, name)
		}),
	}
	topLevel.AddCommand(cmd)
}

func addCategories(topLevel *cobra.Command, run runFunc) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "List categories with their card counts",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, r *Runner) error {
			return r.Categories(ctx)
		}),
	})
}

func addRenameCategory(topLevel *cobra.Command, run runFunc) {
	var from, to string
	topLevel.AddCommand(&cobra.Command{
		Use:   "rename-category FROM TO",
		Short: "Rename a category, merging into TO if it already exists",
		Args:  cobra.ExactArgs(2),
		PreRun: func(cmd *cobra.Command, args []string) {
			from, to = args[0], args[1]
		},
		RunE: run(func(ctx context.Context, r *Runner) error {
			return r.RenameCategory(ctx, from, to)
		}),
	})
}

func addDeleteCategory(topLevel *cobra.Command, run runFunc) {
	var (
		name    string
		yes     bool
		confirm string
	)
	cmd := &cobra.Command{
		Use:   "delete-category NAME",
		Short: "Delete every card in a category",
		Example: `
cardctl delete-category physics --yes --confirm "DELETE physics"
`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			name = args[0]
		},
		RunE: run(func(ctx context.Context, r *Runner) error {
			return r.DeleteCategory(ctx, name, services.Confirmation{Acknowledged: yes, Phrase: confirm})
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "acknowledge that the cards are removed permanently")
	cmd.Flags().StringVar(&confirm, "confirm", "", `confirmation phrase, "DELETE <name>"`)
	topLevel.AddCommand(cmd)
}

func openFromConfig(ctx context.Context) (*Runner, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger.SetDefault(logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(color.Error),
	))

	database, err := db.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open card store: %w", err)
	}

	cards := rowstore.NewCardRepository(database.DB, rowstore.WithBatchSize(cfg.BulkBatchSize))
	backups := blobstore.NewBackupStore(cfg.BackupDir)
	auditor := services.NoopAuditor()
	if cfg.AuditBackups {
		auditor = services.NewInlineAuditor(services.NewBackupWriter(cards, backups))
	}

	r := &Runner{Maintenance: services.NewMaintenanceService(cards, backups, auditor)}
	return r, func() { _ = database.Close() }, nil
}

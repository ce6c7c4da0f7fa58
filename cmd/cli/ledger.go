package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"creditrisk/adapters/db/postgres/migrations"
	"creditrisk/domain/core"
	"creditrisk/internal/config"
	"creditrisk/internal/container"
	"creditrisk/internal/logging"
	"creditrisk/internal/report"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if c.DB == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "DATABASE_URL is not set; the in-memory ledger is empty")
				}
				records, err := c.RunRepo.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTATUS\tROWS\tTRAIN\tTEST\tROC_AUC\tCREATED\tDATA")
				for _, r := range records {
					auc := "-"
					if r.Metrics != nil {
						auc = fmt.Sprintf("%.4f", r.Metrics.ROCAUC)
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n", r.ID, r.Status, r.Rows, r.TrainRows, r.TestRows,
						auc, r.CreatedAt.Format("2006-01-02 15:04"), r.DataPath)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")
	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Render a run summary as Markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			return withContainer(cmd.Context(), func(c *container.Container) error {
				record, err := c.RunRepo.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				body := report.Render(record, f)
				if out == "" {
					_, err = cmd.OutOrStdout().Write(body)
					return err
				}
				if err := os.WriteFile(out, body, 0o644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "Output format: md or html")
	cmd.Flags().StringVar(&out, "out", "", "Write to a file instead of stdout")
	return cmd
}

func newArtifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Manage stored model artifacts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored artifact IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				ids, err := c.Artifacts.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <artifact-id>",
		Short: "Print an artifact as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseArtifactID(args[0])
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				a, err := c.Artifacts.Load(cmd.Context(), id)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <artifact-id>",
		Short: "Delete a stored artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseArtifactID(args[0])
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				return c.Artifacts.Delete(cmd.Context(), id)
			})
		},
	}

	var name string
	exportCmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Save a run's column statistics as a preprocessing artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				a, where, err := c.Artifacts.ExportRun(cmd.Context(), id, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Artifact %s written to %s\n", a.ID, where)
				return nil
			})
		},
	}
	exportCmd.Flags().StringVar(&name, "name", "", "Artifact name (default run-<id>)")

	cmd.AddCommand(listCmd, showCmd, deleteCmd, exportCmd)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply run ledger migrations to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			db, err := sqlx.ConnectContext(cmd.Context(), "postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			migrator := migrations.NewMigrator(db.DB, logging.NewDefault())
			if status {
				statuses, err := migrator.Status(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s_%s\t%s\n", s.Version, s.Name, state)
				}
				return nil
			}

			applied, err := migrator.Up(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations\n", len(applied))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show applied and pending migrations without applying")
	return cmd
}

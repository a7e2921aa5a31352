package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	"prodflow/internal/migration"

	"github.com/spf13/cobra"
)

func newMigrateCmd(s *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.app.DB == nil {
				return fmt.Errorf("migrate needs DATABASE_URL")
			}
			// Init already ran the runner; running it again is a no-op that confirms the schema.
			runner := migration.NewRunner()
			if err := runner.Run(cmd.Context(), s.app.DB); err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), map[string]string{"schema_version": runner.Version()}, func(w io.Writer) {
				fprintf(w, "schema at version %s\n", runner.Version())
			})
		},
	}
}

func newSweepCmd(s *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Restore paused delivery items to design",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := s.app.Reconciliation.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), report, func(w io.Writer) {
				fprintf(w, "scanned %d delivery items, repaired %d, failed %d\n",
					report.Scanned, len(report.Repaired), len(report.Failures))
				for _, id := range report.Repaired {
					fprintf(w, "  repaired %s\n", id)
				}
				for _, f := range report.Failures {
					fprintf(w, "  failed   %s: %s\n", f.ID, f.Msg)
				}
			})
		},
	}
}

func newRankCmd(s *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "List the backlog ordered by RICE score",
		RunE: func(cmd *cobra.Command, args []string) error {
			ranked, err := s.app.Backlog.Rank(cmd.Context(), limit)
			if err != nil {
				return err
			}
			summary := s.app.Backlog.Summary(ranked)
			payload := map[string]interface{}{"items": ranked, "summary": summary}
			return s.print(cmd.OutOrStdout(), payload, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fprintf(tw, "RANK\tSCORE\tTYPE\tTITLE\tID\n")
				for _, r := range ranked {
					fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\n", r.Rank, r.Score, r.Initiative.ItemType, r.Initiative.Title, r.Initiative.ID)
				}
				_ = tw.Flush()
				fprintf(w, "\n%d items, median %.1f, p90 %.1f\n", summary.Count, summary.Median, summary.P90)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many items (0 = all)")
	return cmd
}

func newExportCmd(s *cli) *cobra.Command {
	var (
		out   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ranked backlog to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ranked, err := s.app.Backlog.Rank(cmd.Context(), limit)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()
			if err := s.app.Exporter.Export(f, ranked); err != nil {
				return err
			}
			return s.print(cmd.OutOrStdout(), map[string]interface{}{"path": out, "rows": len(ranked)}, func(w io.Writer) {
				fprintf(w, "wrote %d rows to %s\n", len(ranked), out)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "backlog.xlsx", "Output file")
	cmd.Flags().IntVar(&limit, "limit", 0, "Export at most this many items (0 = all)")
	return cmd
}

func newPromoteCmd(s *cli) *cobra.Command {
	var phase, start, end string
	cmd := &cobra.Command{
		Use:   "promote <id>",
		Short: "Move a backlog item into discovery or delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.mutate(cmd, args[0], func(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error) {
				return s.app.Lifecycle.Promote(ctx, id, initiative.Phase(phase), initiative.Period{Start: start, End: end})
			})
		},
	}
	cmd.Flags().StringVar(&phase, "phase", string(initiative.PhaseDiscovery), "Destination phase (discovery or delivery)")
	cmd.Flags().StringVar(&start, "start", "", "Window start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Window end or target date (YYYY-MM-DD)")
	return cmd
}

func newTransitionCmd(s *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "transition <id> <status>",
		Short: "Change the status of a discovery or delivery item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.mutate(cmd, args[0], func(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error) {
				return s.app.Lifecycle.Transition(ctx, id, initiative.Status(args[1]))
			})
		},
	}
}

func newFinalizeCmd(s *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <id>",
		Short: "Finalize a completed item and publish its announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseInitiativeID(args[0])
			if err != nil {
				return err
			}
			result, err := s.app.Lifecycle.Finalize(cmd.Context(), id)
			if result == nil {
				return err
			}
			if printErr := s.print(cmd.OutOrStdout(), result, func(w io.Writer) {
				printInitiative(w, result.Initiative)
				fprintf(w, "announcement: %q (%s, %s)\n", result.Announcement.Title,
					result.Announcement.Category, result.Announcement.Date.Format(core.DateLayout))
			}); printErr != nil {
				return printErr
			}
			return err
		},
	}
}

func newEscalateCmd(s *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "escalate <experiment-id>",
		Short: "Create the delivery feature for a won experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.mutate(cmd, args[0], func(ctx context.Context, id core.InitiativeID) (*initiative.Initiative, error) {
				return s.app.Escalation.Escalate(ctx, id)
			})
		},
	}
}

// mutate parses the id argument, runs op and prints the resulting initiative
func (s *cli) mutate(cmd *cobra.Command, rawID string, op func(context.Context, core.InitiativeID) (*initiative.Initiative, error)) error {
	id, err := core.ParseInitiativeID(rawID)
	if err != nil {
		return err
	}
	it, err := op(cmd.Context(), id)
	if err != nil {
		return err
	}
	return s.print(cmd.OutOrStdout(), it, func(w io.Writer) { printInitiative(w, it) })
}

func printInitiative(w io.Writer, it *initiative.Initiative) {
	fprintf(w, "%s  %s.%s  %s\n", it.ID, it.Phase, it.Status, it.Title)
	if it.PeriodValue != "" {
		fprintf(w, "  window: %s\n", it.PeriodValue)
	}
	if !it.ParentID.IsEmpty() {
		fprintf(w, "  parent: %s\n", it.ParentID)
	}
}

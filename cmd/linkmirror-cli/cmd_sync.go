package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/linkmirror/linkmirror/client"
)

func newSyncCmd() *cobra.Command {
	var dryRun bool
	var max int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one incremental sync pass",
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := apiClient.Runs.Sync(context.Background(), client.SyncOptions{
				DryRun: dryRun,
				Max:    max,
			})
			if err != nil {
				if client.IsConflict(err) {
					fatal("sync", fmt.Errorf("a sync is already running"))
				}
				fatal("sync", err)
			}

			if flagFmt == "table" {
				printSyncTable(summary)
				return
			}
			output(summary, summary.RunID)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify candidates without writing")
	cmd.Flags().IntVar(&max, "max", 0, "Cap the candidate set (0 = no cap)")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one full reconciliation pass",
		Run: func(cmd *cobra.Command, args []string) {
			summary, err := apiClient.Runs.Reconcile(context.Background(), dryRun)
			if err != nil {
				if client.IsConflict(err) {
					fatal("reconcile", fmt.Errorf("a reconciliation is already running"))
				}
				fatal("reconcile", err)
			}

			if flagFmt == "table" {
				printReconcileTable(summary)
				return
			}
			output(summary, summary.RunID)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify rows without writing")
	return cmd
}

func printSyncTable(s *client.SyncSummary) {
	formatTable(
		[]string{"CANDIDATES", "CREATED", "UPDATED", "LOCKED", "UP-TO-DATE", "PAGES", "STOP"},
		[][]string{{
			strconv.Itoa(s.Candidates),
			strconv.Itoa(len(s.Created)),
			strconv.Itoa(len(s.Updated)),
			strconv.Itoa(len(s.SkippedLocked)),
			strconv.Itoa(len(s.SkippedUpToDate)),
			strconv.Itoa(s.PagesScanned),
			s.StopReason,
		}},
	)
}

func printReconcileTable(s *client.ReconcileSummary) {
	formatTable(
		[]string{"SOURCE", "ROWS", "MOVED", "DETECTED", "IN-GRACE", "ARCHIVED", "CLEARED", "LOCKED"},
		[][]string{{
			strconv.Itoa(s.SourceItems),
			strconv.Itoa(s.LedgerRows),
			strconv.Itoa(len(s.Moved)),
			strconv.Itoa(len(s.DeleteDetected)),
			strconv.Itoa(len(s.InGrace)),
			strconv.Itoa(len(s.Archived)),
			strconv.Itoa(len(s.Cleared)),
			strconv.Itoa(len(s.SkippedLocked)),
		}},
	)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"eisendo/internal/ops"
	"eisendo/internal/recurrence"
)

func main() {
	root := &cobra.Command{
		Use:           "eisendo-ops",
		Short:         "Operational tooling for an eisendo instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(backupCmd(), restoreCmd(), drillCmd(), describeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func backupCmd() *cobra.Command {
	var dataDir, out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory into a .tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				ts := time.Now().UTC().Format("20060102T150405Z")
				out = filepath.Join("backups", "eisendo-"+ts+".tar.gz")
			}
			if err := ops.Backup(dataDir, out); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "path to data directory")
	cmd.Flags().StringVar(&out, "out", "", "output archive path (.tar.gz)")
	return cmd
}

func restoreCmd() *cobra.Command {
	var archive, target string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Unpack a backup archive into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive == "" {
				return fmt.Errorf("--archive is required")
			}
			return ops.Restore(archive, target)
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "restore target directory")
	return cmd
}

func drillCmd() *cobra.Command {
	var dataDir, workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Backup, restore, and verify the round trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ops.Drill(dataDir, workDir)
			if err != nil {
				return err
			}
			fmt.Println("backup:", res.Archive)
			fmt.Println("restored:", res.RestoreDir)
			fmt.Println("digest:", res.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "path to data directory")
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "scratch directory for drill artifacts")
	return cmd
}

func describeCmd() *cobra.Command {
	var from string
	var count int
	cmd := &cobra.Command{
		Use:   "describe <recurrence-json>",
		Short: "Explain a stored recurrence value and preview upcoming dates",
		Long: `Explain a stored recurrence value, e.g.
  eisendo-ops describe '"weekly"'
  eisendo-ops describe '{"interval":2,"unit":"week","weekDays":[1,3,5]}' --from 2026-09-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw any
			if err := json.Unmarshal([]byte(args[0]), &raw); err != nil {
				return fmt.Errorf("argument must be JSON: %w", err)
			}
			spec := recurrence.Validate(raw)
			fmt.Println(recurrence.Describe(spec))
			if spec.IsNone() {
				return nil
			}

			if count < 1 {
				count = 3
			}
			now := time.Now()
			deadline := from
			for range count {
				next, err := recurrence.Next(deadline, spec, now)
				if err != nil {
					break
				}
				fmt.Println(" ", next)
				deadline = next
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "base due date (YYYY-MM-DD), defaults to today")
	cmd.Flags().IntVar(&count, "count", 3, "how many upcoming dates to print")
	return cmd
}

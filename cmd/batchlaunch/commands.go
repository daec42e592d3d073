package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eastway/batchlaunch/internal/config"
	"github.com/eastway/batchlaunch/internal/locator"
	"github.com/eastway/batchlaunch/internal/scanner"
)

func newLaunchCmd(gf *GlobalFlags) *cobra.Command {
	var af APIFlags
	var lf LaunchFlags
	cmd := &cobra.Command{
		Use:   "launch <account-id> [account-id...]",
		Short: "Launch clients for the given accounts via the daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(af.URL, af.Timeout)
			if !client.IsReachable() {
				return fmt.Errorf("daemon not reachable - start it first with 'batchlaunch serve'")
			}
			return client.Launch(args, lf.Root, lf.DelaySeconds)
		},
	}
	addAPIFlags(cmd, &af)
	cmd.Flags().StringVar(&lf.Root, "root", "", "game installation directory (defaults to daemon config)")
	cmd.Flags().IntVar(&lf.DelaySeconds, "delay", 0, "inter-launch delay in seconds for batches")
	return cmd
}

func newCloseCmd(gf *GlobalFlags) *cobra.Command {
	var af APIFlags
	cmd := &cobra.Command{
		Use:   "close <account-id> [account-id...]",
		Short: "Close running clients for the given accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(af.URL, af.Timeout)
			if !client.IsReachable() {
				return fmt.Errorf("daemon not reachable - start it first with 'batchlaunch serve'")
			}
			return client.Close(args)
		},
	}
	addAPIFlags(cmd, &af)
	return cmd
}

func newStatusCmd(gf *GlobalFlags) *cobra.Command {
	var af APIFlags
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show currently supervised accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(af.URL, af.Timeout)
			recs, err := client.Status()
			if err != nil {
				return err
			}
			printJSON(recs)
			return nil
		},
	}
	addAPIFlags(cmd, &af)
	return cmd
}

// scan and locate are file-bound and run embedded; no daemon required.

func newScanCmd(gf *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Scan a directory tree for launch scripts and print recovered accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(gf.ConfigPath)
			if err != nil {
				return err
			}
			sc := scanner.New(cfg.Scan.MaxDepth, cfg.Scan.MaxCandidates)
			printJSON(sc.Scan(args[0]))
			return nil
		},
	}
}

func newLocateCmd(gf *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <dir>",
		Short: "Locate the game client executable under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := locator.Locate(args[0])
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

package main

import (
	"time"

	"github.com/spf13/cobra"
)

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

// APIFlags configure how client commands reach the daemon.
type APIFlags struct {
	URL     string
	Timeout time.Duration
}

// LaunchFlags configure the launch command.
type LaunchFlags struct {
	Root         string
	DelaySeconds int
}

// AccountFlags configure account add.
type AccountFlags struct {
	Login       string
	Secret      string
	Server      string
	Character   string
	Description string
	Owner       string
}

// TransferFlags configure account import/export.
type TransferFlags struct {
	Format string // json or csv
}

func buildRoot() *cobra.Command {
	var gf GlobalFlags

	root := &cobra.Command{
		Use:           "batchlaunch",
		Short:         "Launch and supervise game-client sessions for stored accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&gf.ConfigPath, "config", "c", "", "path to TOML config file")

	root.AddCommand(newServeCmd(&gf))
	root.AddCommand(newLaunchCmd(&gf))
	root.AddCommand(newCloseCmd(&gf))
	root.AddCommand(newStatusCmd(&gf))
	root.AddCommand(newScanCmd(&gf))
	root.AddCommand(newLocateCmd(&gf))
	root.AddCommand(newAccountCmd(&gf))
	return root
}

func addAPIFlags(cmd *cobra.Command, f *APIFlags) {
	cmd.Flags().StringVar(&f.URL, "api-url", "", "daemon API base URL (default http://127.0.0.1:7817/api)")
	cmd.Flags().DurationVar(&f.Timeout, "api-timeout", 10*time.Second, "API request timeout")
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/config"
	"github.com/eastway/batchlaunch/internal/store"
	storefactory "github.com/eastway/batchlaunch/internal/store/factory"
)

func newAccountCmd(gf *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage stored accounts",
	}
	cmd.AddCommand(newAccountAddCmd(gf))
	cmd.AddCommand(newAccountListCmd(gf))
	cmd.AddCommand(newAccountRmCmd(gf))
	cmd.AddCommand(newAccountImportCmd(gf))
	cmd.AddCommand(newAccountExportCmd(gf))
	return cmd
}

// openStore opens the configured account store with its schema ensured.
func openStore(gf *GlobalFlags) (store.Store, error) {
	cfg, err := config.Load(gf.ConfigPath)
	if err != nil {
		return nil, err
	}
	st, err := storefactory.New(cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func newAccountAddCmd(gf *GlobalFlags) *cobra.Command {
	var f AccountFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Login == "" || f.Secret == "" {
				return fmt.Errorf("--login and --secret are required")
			}
			st, err := openStore(gf)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			a := account.Account{
				ID:          account.NewID(),
				Login:       f.Login,
				Secret:      f.Secret,
				Server:      account.NormalizeServer(f.Server),
				Character:   f.Character,
				Description: f.Description,
				Owner:       f.Owner,
			}
			if err := st.Save(context.Background(), a); err != nil {
				return err
			}
			fmt.Println(string(a.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Login, "login", "", "account login")
	cmd.Flags().StringVar(&f.Secret, "secret", "", "account password")
	cmd.Flags().StringVar(&f.Server, "server", "", "server tag (Main, PvP, PvE, Test)")
	cmd.Flags().StringVar(&f.Character, "character", "", "character name")
	cmd.Flags().StringVar(&f.Description, "description", "", "free-text description")
	cmd.Flags().StringVar(&f.Owner, "owner", "", "account owner")
	return cmd
}

func newAccountListCmd(gf *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(gf)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			accts, err := st.List(context.Background())
			if err != nil {
				return err
			}
			for i := range accts {
				accts[i].Secret = "***"
			}
			printJSON(accts)
			return nil
		},
	}
}

func newAccountRmCmd(gf *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <account-id>",
		Short: "Delete a stored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(gf)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			return st.Delete(context.Background(), account.ID(args[0]))
		},
	}
}

func newAccountImportCmd(gf *GlobalFlags) *cobra.Command {
	var f TransferFlags
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import accounts from a JSON or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(gf)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()

			var n int
			switch strings.ToLower(f.Format) {
			case "", "json":
				n, err = store.ImportJSON(context.Background(), st, in)
			case "csv":
				n, err = store.ImportCSV(context.Background(), st, in)
			default:
				return fmt.Errorf("unknown format %q (json or csv)", f.Format)
			}
			if err != nil {
				return err
			}
			fmt.Printf("imported %d accounts\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Format, "format", "json", "input format: json or csv")
	return cmd
}

func newAccountExportCmd(gf *GlobalFlags) *cobra.Command {
	var f TransferFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export accounts to stdout as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(gf)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			switch strings.ToLower(f.Format) {
			case "", "json":
				return store.ExportJSON(context.Background(), st, os.Stdout)
			case "csv":
				return store.ExportCSV(context.Background(), st, os.Stdout)
			default:
				return fmt.Errorf("unknown format %q (json or csv)", f.Format)
			}
		},
	}
	cmd.Flags().StringVar(&f.Format, "format", "json", "output format: json or csv")
	return cmd
}

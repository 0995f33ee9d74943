package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blogem/admin-console/config"
)

var (
	cfg *config.Config

	seedFile     string
	tokenSubject string
	tokenRole    string

	rootCmd = &cobra.Command{
		Use:           "admin-console",
		Short:         "Versioned mutation core of the operations admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE:  runServe, // Defined in serve.go
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  runMigrate, // Defined in admin.go
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create records from a YAML file at version 1",
		RunE:  runSeed, // Defined in admin.go
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an automation caller",
		RunE:  runToken, // Defined in admin.go
	}
)

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML file with settings, reports, reviews and jobs")
	_ = seedCmd.MarkFlagRequired("file")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "identity recorded as the actor of every change")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "console role granted to the token")
	_ = tokenCmd.MarkFlagRequired("subject")
	_ = tokenCmd.MarkFlagRequired("role")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

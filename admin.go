package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blogem/admin-console/authenticator"
	"github.com/blogem/admin-console/database"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/repositories"
	"github.com/blogem/admin-console/services"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		return err
	}
	return database.CloseDB()
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	set, err := services.ParseSeed(f)
	if err != nil {
		return err
	}

	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		return err
	}
	defer database.CloseDB()

	seeder := services.NewSeedService(repositories.NewDocumentStore(database.GetDB()))
	result, err := seeder.Import(cmd.Context(), "seed", set)
	if err != nil {
		return err
	}

	slog.Info("seed complete", "file", seedFile, "created", result.Created, "skipped", result.Skipped)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	issuer, err := authenticator.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}

	token, err := issuer.Issue(tokenSubject, models.Role(tokenRole))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

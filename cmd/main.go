package main

import (
	"context"
	"fmt"
	"os"

	"go-clinic-workflow/cmd/bootstrap"
	"go-clinic-workflow/config"
	"go-clinic-workflow/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg *config.Config
		log *logrus.Logger
	)

	root := &cobra.Command{
		Use:           "clinic",
		Short:         "Clinic consultation workflow service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log = bootstrap.NewLogger(cfg.Log)
			log.Info("Configuration loaded successfully")
			return nil
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(cfg, log)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cfg, log, (*database.Migrator).Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cfg, log, (*database.Migrator).Down)
			},
		},
	)

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Provision the default doctor when no doctor exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			doctor, created, err := bootstrap.NewDoctorResolver(cfg, log, db).EnsureDefaultDoctor(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to seed default doctor: %w", err)
			}
			if created {
				log.Infof("Default doctor created: id=%s, email=%s", doctor.ID, doctor.Email)
			} else {
				log.Infof("Doctor already present: id=%s, email=%s", doctor.ID, doctor.Email)
			}
			return nil
		},
	}

	root.AddCommand(serve, migrateCmd, seed)
	return root
}

func withMigrator(cfg *config.Config, log *logrus.Logger, run func(*database.Migrator) error) error {
	m, err := database.NewMigrator(cfg.DB, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return run(m)
}

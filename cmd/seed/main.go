// cmd/seed/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/grundwerk/grundwerk/internal/config"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
	"github.com/grundwerk/grundwerk/internal/seed"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	root := &cobra.Command{
		Use:   "seed",
		Short: "Load the embedded standard/control catalogs into the database",
		Long: "Upserts the bundled compliance catalogs (ISO 27001, NIST CSF, BSI " +
			"IT-Grundschutz, Swiss IKT-Grundschutz, SOC 2). Safe to run repeatedly: " +
			"standards are keyed by short name and version, controls by code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runSeed(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg := config.Load()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
		cfg.Database.SearchPath,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&model.Standard{}, &model.Control{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	summary, err := seed.New(repository.NewCatalogRepository(db)).Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("seed complete",
		"standards", summary.Standards,
		"controlsCreated", summary.ControlsCreated,
		"controlsUpdated", summary.ControlsUpdated,
	)
	return nil
}

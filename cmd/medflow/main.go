package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"medflow-backend/internal/config"
	"medflow-backend/internal/database"
	"medflow-backend/internal/logger"
	"medflow-backend/internal/metrics"
	"medflow-backend/internal/service"
	"medflow-backend/internal/store"
	"medflow-backend/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medflow",
		Short:        "Medical tourism case management API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the wiring shared by every command.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *gorm.DB
	store    *store.GormStore
	metrics  *metrics.Metrics
	files    *utils.FileStore
	svc      *service.Service
	accounts *service.Accounts
}

// bootstrap loads configuration, opens the database and applies the schema.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	files, err := utils.NewFileStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	st := store.NewGormStore(db)
	m := metrics.New()
	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		store:    st,
		metrics:  m,
		files:    files,
		svc:      service.New(st, files, log, m),
		accounts: service.NewAccounts(st, log, m),
	}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.log.WithError(err).Warn("failed to close database")
	}
}

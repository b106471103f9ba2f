package main

import (
	"fmt"
	"log"

	"github.com/datakamer/datakamer-backend/config"
	"github.com/datakamer/datakamer-backend/internal/bootstrap"
	"github.com/datakamer/datakamer-backend/internal/cache"
	"github.com/datakamer/datakamer-backend/internal/loader"
	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "load [path]",
		Short: "Replace the catalog with the contents of a fixture file",
		Long: "Wipes every region and university and reloads them from a JSON fixture " +
			"in one transaction. The path defaults to FIXTURE_PATH (cameroon.json).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path := cfg.Fixture.Path
			if len(args) == 1 {
				path = args[0]
			}

			// fail on a bad file before touching the database
			doc, err := loader.ReadFile(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg.Database.AutoMigrate = migrate
			store, err := bootstrap.OpenStore(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer store.DB().Close()

			views, err := cache.Connect(ctx, &cfg.Redis)
			if err != nil {
				log.Printf("[warn] cache invalidation unavailable err=%v", err)
				views = nil
			}
			defer views.Close()

			l := loader.New(store,
				loader.WithReporter(loader.LogReporter{Debug: cfg.App.LogLevel == "debug"}),
				loader.WithInvalidator(views),
			)
			sum, err := l.Load(ctx, doc)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}

			log.Printf("[info] data loaded successfully path=%s regions=%d departments=%d companies=%d "+
				"job_demands=%d specialties=%d tourist_sites=%d universities=%d faculties=%d gallery_images=%d skipped=%d",
				path, sum.Regions, sum.Departments, sum.Companies, sum.JobDemands, sum.Specialties,
				sum.TouristSites, sum.Universities, sum.Faculties, sum.GalleryImages, sum.SkippedUniversities)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Create missing tables before loading")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Database.AutoMigrate = true
			store, err := bootstrap.OpenStore(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			return store.DB().Close()
		},
	}
}

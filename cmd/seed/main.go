package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/meur/civatlas/internal/catalog"
	"github.com/meur/civatlas/internal/config"
	"github.com/meur/civatlas/internal/logging"
	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	cfgFile string
	strict  bool
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "seed [category...]",
	Short: "Validate dataset files and load them into SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Dev)
		if err != nil {
			return err
		}
		defer logger.Sync()

		categories, err := selectCategories(args)
		if err != nil {
			return err
		}
		return seed(cmd.Context(), cfg, categories, logger)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	flags.BoolVar(&strict, "strict", false, "Fail when a dataset file is missing")
	flags.String("db", "", "SQLite database path")
	flags.String("data", "", "Dataset directory")

	if err := v.BindPFlag("database.path", flags.Lookup("db")); err != nil {
		panic(err)
	}
	if err := v.BindPFlag("datasets.dir", flags.Lookup("data")); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func selectCategories(args []string) ([]models.Category, error) {
	if len(args) == 0 {
		return models.Categories(), nil
	}
	out := make([]models.Category, 0, len(args))
	for _, arg := range args {
		c, err := models.ParseCategory(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// seed validates every requested dataset file in parallel, then writes
// them to the store one category at a time.
func seed(ctx context.Context, cfg config.Config, categories []models.Category, logger *zap.Logger) error {
	table, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	validator, err := catalog.NewValidator()
	if err != nil {
		return fmt.Errorf("compile dataset schema: %w", err)
	}
	files := storage.NewFileSource(cfg.Datasets.Dir, table, validator)

	datasets := make([]*models.Dataset, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range categories {
		i, c := i, c
		g.Go(func() error {
			ds, err := files.Fetch(gctx, c)
			if errors.Is(err, storage.ErrNotFound) && !strict {
				logger.Warn("dataset file missing, skipping", zap.String("category", string(c)), zap.String("file", table.File(c)))
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", table.File(c), err)
			}
			if err := ds.Validate(); err != nil {
				return fmt.Errorf("%s: %w", table.File(c), err)
			}
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	seeded := 0
	for i, c := range categories {
		ds := datasets[i]
		if ds == nil {
			continue
		}
		if err := store.PutDataset(ctx, c, ds); err != nil {
			return fmt.Errorf("store %s: %w", c, err)
		}
		seeded++
		logger.Info("seeded category", zap.String("category", string(c)), zap.Int("items", len(ds.Items)))
	}

	logger.Info("seeding complete", zap.Int("categories", seeded), zap.String("db", cfg.Database.Path))
	return nil
}

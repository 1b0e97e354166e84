package cmd

import (
	"context"
	"errors"

	"autoshop/internal/app"
	"autoshop/internal/database"
	"autoshop/internal/models"
	"autoshop/internal/services"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the catalog with demo data",
	Long: `Seed creates demo categories, brands and products. Records that already
exist are left untouched, so the command can be run repeatedly.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var (
	demoCategories = []services.TaxonomyInput{
		{Name: "Car care", Slug: "care"},
		{Name: "Accessories", Slug: "accessories"},
		{Name: "Interior", Slug: "interior"},
	}
	demoBrands = []services.TaxonomyInput{
		{Name: "Sonax", Slug: "sonax"},
		{Name: "Meguiar's", Slug: "meguiars"},
		{Name: "Koch Chemie", Slug: "koch-chemie"},
	}
	demoProducts = []services.ProductInput{
		{Name: "Sonax Polish & Wax", Category: "care", Brand: "sonax", Price: decimal.RequireFromString("45.90"), Stock: 20,
			Description: "Polish and wax in one step for paintwork of any colour."},
		{Name: "Microfiber Cloth 40x40", Category: "accessories", Brand: "sonax", Price: decimal.RequireFromString("8.90"), Stock: 100},
		{Name: "Meguiar's Gold Class Shampoo", Category: "care", Brand: "meguiars", Price: decimal.RequireFromString("32.50"), Stock: 15},
		{Name: "Koch Chemie Green Star", Category: "care", Brand: "koch-chemie", Price: decimal.RequireFromString("27.00"), Stock: 8},
		{Name: "Leather Cleaner", Category: "interior", Brand: "meguiars", Price: decimal.RequireFromString("39.90"), Stock: 4},
	}
)

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	if err := database.Migrate(db); err != nil {
		return err
	}
	svc := app.NewServices(app.Deps{DB: db, Config: cfg, Logger: logger})
	if err := svc.Settings.EnsureDefaults(cmd.Context()); err != nil {
		return err
	}
	return seedCatalog(cmd.Context(), svc.Catalog, logger)
}

func seedCatalog(ctx context.Context, catalog *services.CatalogService, logger zerolog.Logger) error {
	created := 0
	for _, in := range demoCategories {
		_, err := catalog.CreateCategory(ctx, in)
		if skip, err := seeded(err); err != nil {
			return err
		} else if !skip {
			created++
		}
	}
	for _, in := range demoBrands {
		_, err := catalog.CreateBrand(ctx, in)
		if skip, err := seeded(err); err != nil {
			return err
		} else if !skip {
			created++
		}
	}
	for _, in := range demoProducts {
		_, err := catalog.CreateProduct(ctx, in)
		if skip, err := seeded(err); err != nil {
			return err
		} else if !skip {
			created++
		}
	}
	logger.Info().Int("created", created).Msg("demo catalog seeded")
	return nil
}

// seeded reports whether err means the record already exists.
func seeded(err error) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, models.ErrDuplicate):
		return true, nil
	default:
		return false, err
	}
}

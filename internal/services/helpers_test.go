package services_test

import (
	"context"
	"testing"

	"autoshop/internal/config"
	"autoshop/internal/database"
	"autoshop/internal/models"
	"autoshop/internal/repositories"
	"autoshop/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

// published returns the events sent to topic, in order.
func (m *MockPublisher) published(topic string) []any {
	var out []any
	for _, call := range m.Calls {
		if call.Method == "PublishEvent" && call.Arguments.String(1) == topic {
			out = append(out, call.Arguments.Get(3))
		}
	}
	return out
}

type env struct {
	db        *gorm.DB
	store     *repositories.Store
	uow       repositories.UnitOfWork
	publisher *MockPublisher
	catalog   *services.CatalogService
	carts     *services.CartService
	orders    *services.OrderService
	promos    *services.PromotionService
	settings  *services.SettingsService
	cfg       models.SiteConfig

	category *models.Category
	brand    *models.Brand
	user     *models.User
	other    *models.User
	polish   *models.Product
	cloth    *models.Product
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repositories.NewGORMStore(db)
	uow := repositories.NewGORMUnitOfWork(db)
	publisher := new(MockPublisher)
	publisher.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	e := &env{
		db:        db,
		store:     store,
		uow:       uow,
		publisher: publisher,
		catalog:   services.NewCatalogService(store, 12, zerolog.Nop()),
		carts:     services.NewCartService(store, uow, zerolog.Nop()),
		orders:    services.NewOrderService(store, uow, publisher, 12, zerolog.Nop()),
		promos:    services.NewPromotionService(store, zerolog.Nop()),
		settings:  services.NewSettingsService(store.Settings, zerolog.Nop()),
		category:  &models.Category{Name: "Car care", Slug: "care"},
		brand:     &models.Brand{Name: "Sonax", Slug: "sonax"},
		user: &models.User{
			Username: "ivan", Email: "ivan@example.com", Password: "x",
			Phone: "+375 (29) 1234567", Address: "Minsk, Nezavisimosti 1",
		},
		other: &models.User{Username: "olga", Email: "olga@example.com", Password: "x"},
	}
	require.NoError(t, e.settings.EnsureDefaults(ctx))
	e.cfg, err = e.settings.Current(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Categories.Create(ctx, e.category))
	require.NoError(t, store.Brands.Create(ctx, e.brand))
	require.NoError(t, store.Users.Create(ctx, e.user))
	require.NoError(t, store.Users.Create(ctx, e.other))

	e.polish = &models.Product{
		CategoryID: e.category.ID, BrandID: e.brand.ID, Name: "Polish", Slug: "polish",
		Description: "Paint polish", Price: dec("45.90"), Stock: 5, IsPublished: true,
	}
	e.cloth = &models.Product{
		CategoryID: e.category.ID, BrandID: e.brand.ID, Name: "Microfiber cloth", Slug: "cloth",
		Price: dec("8.90"), Stock: 10, IsPublished: true,
	}
	require.NoError(t, store.Products.Create(ctx, e.polish))
	require.NoError(t, store.Products.Create(ctx, e.cloth))
	return e
}

// fillCart puts 2 × polish and 1 × cloth (100.70) into the user's cart.
func (e *env) fillCart(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.carts.AddItem(ctx, userID, services.AddItemInput{ProductSlug: "polish", Quantity: 2})
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, userID, services.AddItemInput{ProductSlug: "cloth"})
	require.NoError(t, err)
}

// tenPercentCode creates SPRING10: 10% off orders of at least 40.
func (e *env) tenPercentCode(t *testing.T, maxUses *int) *models.PromoCode {
	t.Helper()
	minimum := dec("40")
	promo, err := e.promos.CreateCode(context.Background(), services.PromoCodeInput{
		Code:           "SPRING10",
		MinOrderAmount: &minimum,
		MaxUses:        maxUses,
		DiscountRule:   services.DiscountRule{DiscountType: models.DiscountPercent, Value: dec("10")},
	})
	require.NoError(t, err)
	return promo
}

func (e *env) stockOf(t *testing.T, p *models.Product) int {
	t.Helper()
	fresh, err := e.store.Products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	return fresh.Stock
}

func intPtr(i int) *int { return &i }

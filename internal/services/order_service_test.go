package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoshop/internal/models"
	"autoshop/internal/repositories"
	"autoshop/internal/services"
	"autoshop/pkg/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_CreateOrderWithPromo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	promo := e.tenPercentCode(t, nil)

	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{PromoCode: "spring10"}, e.cfg)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, dec("100.70").Equal(order.Subtotal), order.Subtotal.String())
	assert.True(t, dec("10.07").Equal(order.DiscountAmount), order.DiscountAmount.String())
	assert.True(t, dec("90.63").Equal(order.TotalPrice), order.TotalPrice.String())
	require.NotNil(t, order.PromoCode)
	assert.Equal(t, "SPRING10", *order.PromoCode)
	assert.Equal(t, "BYN", order.Currency)
	assert.Equal(t, "courier", order.DeliveryMethod)
	assert.Equal(t, "cash", order.PaymentMethod)
	assert.Equal(t, "Minsk, Nezavisimosti 1", order.Address)
	assert.Equal(t, "+375 (29) 1234567", order.Phone)
	require.Len(t, order.Items, 2)

	found, err := e.store.Promotions.FindCode(ctx, "SPRING10")
	require.NoError(t, err)
	assert.Equal(t, promo.ID, found.ID)
	assert.Equal(t, 1, found.UsedCount)
}

func TestOrderService_CreateOrderBelowMinimumKeepsFullPrice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.tenPercentCode(t, nil)
	_, err := e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductSlug: "cloth", Quantity: 4})
	require.NoError(t, err)

	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{PromoCode: "SPRING10"}, e.cfg)
	require.NoError(t, err)
	assert.True(t, dec("35.60").Equal(order.TotalPrice), order.TotalPrice.String())
	assert.True(t, order.DiscountAmount.IsZero())
	assert.Nil(t, order.PromoCode)

	found, err := e.store.Promotions.FindCode(ctx, "SPRING10")
	require.NoError(t, err)
	assert.Equal(t, 0, found.UsedCount)
}

func TestOrderService_UnknownPromoDoesNotFail(t *testing.T) {
	e := newEnv(t)
	e.fillCart(t, e.user.ID)

	order, err := e.orders.CreateOrder(context.Background(), e.user.ID, services.CreateOrderInput{PromoCode: "NOPE"}, e.cfg)
	require.NoError(t, err)
	assert.True(t, dec("100.70").Equal(order.TotalPrice))
	assert.Nil(t, order.PromoCode)
}

func TestOrderService_CreateOrderMovesStockAndEmptiesCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	before, err := e.store.Carts.GetByUser(ctx, e.user.ID)
	require.NoError(t, err)

	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, e.stockOf(t, e.polish))
	assert.Equal(t, 9, e.stockOf(t, e.cloth))

	movements, err := e.store.Stock.ListByProduct(ctx, e.polish.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -2, movements[0].Quantity)
	assert.Equal(t, models.MovementOrder, movements[0].Kind)
	require.NotNil(t, movements[0].OrderID)
	assert.Equal(t, order.ID, *movements[0].OrderID)
	assert.Equal(t, 3, movements[0].StockAfter)

	after, err := e.store.Carts.GetByUser(ctx, e.user.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, before.ID, after.ID)
	assert.Empty(t, after.Items)
}

func TestOrderService_OversellClampsStockToZero(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.carts.AddItem(ctx, e.user.ID, services.AddItemInput{ProductSlug: "polish", Quantity: 7})
	require.NoError(t, err)

	_, err = e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, e.stockOf(t, e.polish))
}

func TestOrderService_EmptyCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	_, err = e.carts.GetCart(ctx, e.user.ID)
	require.NoError(t, err)
	_, err = e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	_, err = e.orders.Preview(ctx, e.user.ID, "", e.cfg)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestOrderService_CheckoutFieldErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.other.ID)

	_, err := e.orders.CreateOrder(ctx, e.other.ID, services.CreateOrderInput{
		Phone:          "12345",
		DeliveryMethod: "drone",
		PaymentMethod:  "crypto",
	}, e.cfg)
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "address")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "delivery_method")
	assert.Contains(t, fields, "payment_method")

	// Nothing was written.
	assert.Equal(t, 5, e.stockOf(t, e.polish))
	cart, err := e.store.Carts.GetByUser(ctx, e.other.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestOrderService_UnpublishedProductBlocksCheckout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	require.NoError(t, e.db.Model(&models.Product{}).Where("id = ?", e.polish.ID).Update("is_published", false).Error)

	_, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	assert.Equal(t, []string{"Polish is no longer available."}, fieldErrors(t, err)["items"])

	_, err = e.orders.Preview(ctx, e.user.ID, "", e.cfg)
	assert.Contains(t, fieldErrors(t, err), "items")

	assert.Equal(t, 5, e.stockOf(t, e.polish))
	assert.Equal(t, 10, e.stockOf(t, e.cloth))
	cart, err := e.store.Carts.GetByUser(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	// Removing the withdrawn line lets the rest go through.
	for _, item := range cart.Items {
		if item.ProductID == e.polish.ID {
			require.NoError(t, e.carts.RemoveItem(ctx, e.user.ID, item.ID))
		}
	}
	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)
	assert.True(t, dec("8.90").Equal(order.TotalPrice), order.TotalPrice.String())
}

func TestOrderService_PromoUsedUpGrantsNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.tenPercentCode(t, intPtr(1))

	e.fillCart(t, e.user.ID)
	first, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{PromoCode: "SPRING10"}, e.cfg)
	require.NoError(t, err)
	assert.True(t, dec("90.63").Equal(first.TotalPrice))

	e.fillCart(t, e.other.ID)
	second, err := e.orders.CreateOrder(ctx, e.other.ID, services.CreateOrderInput{
		Address: "Grodno", PromoCode: "SPRING10",
	}, e.cfg)
	require.NoError(t, err)
	assert.True(t, dec("100.70").Equal(second.TotalPrice))
	assert.Nil(t, second.PromoCode)

	found, err := e.store.Promotions.FindCode(ctx, "SPRING10")
	require.NoError(t, err)
	assert.Equal(t, 1, found.UsedCount)
}

// racingUnitOfWork spends the last use of every promo code right after it is
// read, as a concurrent checkout committing in between would.
type racingUnitOfWork struct {
	inner repositories.UnitOfWork
}

func (u racingUnitOfWork) Do(ctx context.Context, fn func(store *repositories.Store) error) error {
	return u.inner.Do(ctx, func(tx *repositories.Store) error {
		raced := *tx
		raced.Promotions = racingPromotions{PromotionRepository: tx.Promotions}
		return fn(&raced)
	})
}

type racingPromotions struct {
	repositories.PromotionRepository
}

func (r racingPromotions) FindCode(ctx context.Context, code string) (*models.PromoCode, error) {
	promo, err := r.PromotionRepository.FindCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := r.PromotionRepository.Redeem(ctx, promo.ID); err != nil {
		return nil, err
	}
	return promo, nil
}

func TestOrderService_LostRedemptionRaceRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.tenPercentCode(t, intPtr(1))
	e.fillCart(t, e.user.ID)

	orders := services.NewOrderService(e.store, racingUnitOfWork{inner: e.uow}, e.publisher, 12, zerolog.Nop())
	_, err := orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{PromoCode: "SPRING10"}, e.cfg)
	assert.ErrorIs(t, err, models.ErrPromoExhausted)

	found, err := e.store.Promotions.FindCode(ctx, "SPRING10")
	require.NoError(t, err)
	assert.Equal(t, 0, found.UsedCount)
	assert.Equal(t, 5, e.stockOf(t, e.polish))

	cart, err := e.store.Carts.GetByUser(ctx, e.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	page, err := e.orders.ListOrders(ctx, e.user.ID, 1, 0)
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.Empty(t, e.publisher.published(events.TopicOrderCreated))
}

func TestOrderService_CampaignBeatsSmallerPromo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.tenPercentCode(t, nil)
	now := time.Now().UTC()
	campaign, err := e.promos.CreateCampaign(ctx, services.CampaignInput{
		Name:         "Spring sale",
		StartDate:    now.Add(-time.Hour),
		EndDate:      now.Add(time.Hour),
		DiscountRule: services.DiscountRule{DiscountType: models.DiscountFixed, Value: dec("20")},
	})
	require.NoError(t, err)
	e.fillCart(t, e.user.ID)

	quote, err := e.orders.Preview(ctx, e.user.ID, "SPRING10", e.cfg)
	require.NoError(t, err)
	assert.Equal(t, "campaign", string(quote.Discount.Source))
	assert.True(t, dec("80.70").Equal(quote.Total), quote.Total.String())

	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{PromoCode: "SPRING10"}, e.cfg)
	require.NoError(t, err)
	require.NotNil(t, order.CampaignID)
	assert.Equal(t, campaign.ID, *order.CampaignID)
	assert.Nil(t, order.PromoCode)

	found, err := e.store.Promotions.FindCode(ctx, "SPRING10")
	require.NoError(t, err)
	assert.Equal(t, 0, found.UsedCount)
}

func TestOrderService_PublishesOrderCreated(t *testing.T) {
	e := newEnv(t)
	e.fillCart(t, e.user.ID)

	order, err := e.orders.CreateOrder(context.Background(), e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)

	published := e.publisher.published(events.TopicOrderCreated)
	require.Len(t, published, 1)
	event, ok := published[0].(events.OrderEvent)
	require.True(t, ok)
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, "pending", event.Status)
	assert.Len(t, event.Items, 2)
	require.NotNil(t, event.Email)
	assert.Equal(t, "ivan@example.com", event.Email.To)
	assert.Contains(t, event.Email.Subject, order.ID)
	assert.Contains(t, event.Email.Body, "100.70 BYN")
}

func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	e := newEnv(t)
	e.fillCart(t, e.user.ID)
	failing := new(MockPublisher)
	failing.On("PublishEvent", mock.Anything, events.TopicOrderCreated, mock.Anything, mock.Anything).
		Return(errors.New("broker down")).Once()

	orders := services.NewOrderService(e.store, e.uow, failing, 12, zerolog.Nop())
	order, err := orders.CreateOrder(context.Background(), e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	failing.AssertExpectations(t)
}

func TestOrderService_GetOrderHidesOtherUsersOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)

	got, err := e.orders.GetOrder(ctx, e.user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = e.orders.GetOrder(ctx, e.other.ID, false, order.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	_, err = e.orders.GetOrder(ctx, e.other.ID, true, order.ID)
	assert.NoError(t, err)

	mine, err := e.orders.ListOrders(ctx, e.user.ID, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Count)
	theirs, err := e.orders.ListOrders(ctx, e.other.ID, 1, 0)
	require.NoError(t, err)
	assert.Zero(t, theirs.Count)
	assert.NotNil(t, theirs.Results)
}

func TestOrderService_StatusLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(ctx, order.ID, services.StatusInput{Status: models.StatusDelivered}, e.cfg)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = e.orders.UpdateStatus(ctx, order.ID, services.StatusInput{Status: "lost"}, e.cfg)
	assert.Contains(t, fieldErrors(t, err), "status")

	for _, next := range []models.OrderStatus{models.StatusProcessing, models.StatusShipped, models.StatusDelivered} {
		updated, err := e.orders.UpdateStatus(ctx, order.ID, services.StatusInput{Status: next}, e.cfg)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = e.orders.UpdateStatus(ctx, order.ID, services.StatusInput{Status: models.StatusCancelled}, e.cfg)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	changes := e.publisher.published(events.TopicOrderStatusChanged)
	require.Len(t, changes, 3)
	last := changes[2].(events.OrderEvent)
	assert.Equal(t, "delivered", last.Status)
	assert.Equal(t, "shipped", last.PreviousStatus)
	require.NotNil(t, last.Email)
	assert.Contains(t, last.Email.Body, "from shipped to delivered")
}

func TestOrderService_CancelRestocks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	order, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, e.stockOf(t, e.polish))

	cancelled, err := e.orders.UpdateStatus(ctx, order.ID, services.StatusInput{Status: models.StatusCancelled}, e.cfg)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, e.stockOf(t, e.polish))
	assert.Equal(t, 10, e.stockOf(t, e.cloth))

	movements, err := e.store.Stock.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 4)
}

func TestOrderService_AdminListingAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.fillCart(t, e.user.ID)
	first, err := e.orders.CreateOrder(ctx, e.user.ID, services.CreateOrderInput{}, e.cfg)
	require.NoError(t, err)
	e.fillCart(t, e.other.ID)
	_, err = e.orders.CreateOrder(ctx, e.other.ID, services.CreateOrderInput{Address: "Brest"}, e.cfg)
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(ctx, first.ID, services.StatusInput{Status: models.StatusProcessing}, e.cfg)
	require.NoError(t, err)

	all, err := e.orders.ListAllOrders(ctx, services.AdminOrderQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Count)

	processing, err := e.orders.ListAllOrders(ctx, services.AdminOrderQuery{Status: models.StatusProcessing})
	require.NoError(t, err)
	require.Len(t, processing.Results, 1)
	assert.Equal(t, first.ID, processing.Results[0].ID)

	_, err = e.orders.ListAllOrders(ctx, services.AdminOrderQuery{Status: "lost"})
	assert.Contains(t, fieldErrors(t, err), "status")

	require.NoError(t, e.orders.DeleteOrder(ctx, first.ID))
	_, err = e.orders.GetOrder(ctx, e.user.ID, true, first.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
	assert.ErrorIs(t, e.orders.DeleteOrder(ctx, first.ID), models.ErrOrderNotFound)
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"autoshop/internal/models"
	"autoshop/internal/pricing"
	"autoshop/internal/repositories"
	"autoshop/pkg/events"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

// CreateOrderInput is the checkout payload. Blank address and phone fall back
// to the user's profile; blank methods fall back to the first configured ones.
type CreateOrderInput struct {
	Address        string `json:"address" validate:"max=1000"`
	Phone          string `json:"phone" validate:"max=50"`
	DeliveryMethod string `json:"delivery_method" validate:"max=20"`
	PaymentMethod  string `json:"payment_method" validate:"max=20"`
	Comment        string `json:"comment" validate:"max=2000"`
	PromoCode      string `json:"promo_code" validate:"max=50"`
}

// StatusInput changes an order's status.
type StatusInput struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// AdminOrderQuery filters the admin order listing.
type AdminOrderQuery struct {
	Status   models.OrderStatus
	UserID   string
	Page     int
	PageSize int
}

// QuoteLine is one priced cart line.
type QuoteLine struct {
	ProductID string          `json:"product_id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// Quote prices the current cart without placing an order.
type Quote struct {
	Items    []QuoteLine             `json:"items"`
	Subtotal decimal.Decimal         `json:"subtotal"`
	Discount pricing.AppliedDiscount `json:"discount"`
	Total    decimal.Decimal         `json:"total"`
	Currency string                  `json:"currency"`
}

// OrderService turns carts into orders and drives the order lifecycle.
type OrderService struct {
	store     *repositories.Store
	uow       repositories.UnitOfWork
	publisher events.Publisher
	pageSize  int
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(store *repositories.Store, uow repositories.UnitOfWork, publisher events.Publisher, pageSize int, logger zerolog.Logger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		store:     store,
		uow:       uow,
		publisher: publisher,
		pageSize:  pageSize,
		logger:    logger.With().Str("service", "order").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// priced is the outcome of pricing a cart.
type priced struct {
	lines    []QuoteLine
	subtotal decimal.Decimal
	applied  pricing.AppliedDiscount
}

// price computes line totals and resolves the best discount for items.
// Unpublished products fail the whole cart. An unknown promo code is not an
// error; it simply grants nothing.
func (s *OrderService) price(ctx context.Context, store *repositories.Store, items []models.CartItem, promoCode string, now time.Time) (*priced, error) {
	out := &priced{subtotal: decimal.Zero}
	resolverLines := make([]pricing.Line, 0, len(items))
	var unavailable []string
	for i := range items {
		item := &items[i]
		if item.Product == nil {
			return nil, models.ErrProductNotFound
		}
		if !item.Product.IsPublished {
			unavailable = append(unavailable, item.Product.Name+" is no longer available.")
			continue
		}
		total := item.Total()
		out.lines = append(out.lines, QuoteLine{
			ProductID: item.ProductID,
			Slug:      item.Product.Slug,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
			Total:     total,
		})
		resolverLines = append(resolverLines, pricing.Line{
			ProductID:  item.ProductID,
			CategoryID: item.Product.CategoryID,
			Subtotal:   total,
		})
		out.subtotal = out.subtotal.Add(total)
	}
	if len(unavailable) > 0 {
		return nil, models.NewValidationError(map[string][]string{"items": unavailable})
	}

	campaigns, err := store.Promotions.RunningCampaigns(ctx, now)
	if err != nil {
		return nil, err
	}
	var promo *models.PromoCode
	if code := strings.TrimSpace(promoCode); code != "" {
		promo, err = store.Promotions.FindCode(ctx, code)
		if err != nil && !errors.Is(err, models.ErrPromoNotFound) {
			return nil, err
		}
	}

	out.applied = pricing.Resolve(pricing.Input{
		Amount:    out.subtotal,
		Lines:     resolverLines,
		Promo:     promo,
		Campaigns: campaigns,
		Now:       now,
	})
	return out, nil
}

// Preview prices the user's cart with an optional promo code. Nothing is written.
func (s *OrderService) Preview(ctx context.Context, userID, promoCode string, cfg models.SiteConfig) (*Quote, error) {
	cart, err := s.store.Carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, models.ErrEmptyCart
	}
	p, err := s.price(ctx, s.store, cart.Items, promoCode, s.now())
	if err != nil {
		return nil, err
	}
	return &Quote{
		Items:    p.lines,
		Subtotal: p.subtotal,
		Discount: p.applied,
		Total:    p.applied.FinalAmount,
		Currency: cfg.Currency,
	}, nil
}

// CreateOrder converts the user's cart into a pending order. Locking and reading
// the cart, redeeming the promo code, writing the order, decrementing stock and
// clearing the cart happen in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput, cfg models.SiteConfig) (*models.Order, error) {
	var (
		order *models.Order
		user  *models.User
	)
	err := s.uow.Do(ctx, func(tx *repositories.Store) error {
		// Cart writes take the same lock, so the items read here are exactly
		// the items cleared below.
		locked, err := tx.Carts.LockByUser(ctx, userID)
		if err != nil {
			return err
		}
		if locked == nil {
			return models.ErrEmptyCart
		}
		cart, err := tx.Carts.GetByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return models.ErrEmptyCart
		}

		user, err = tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		order, err = s.newOrder(user, in, cfg)
		if err != nil {
			return err
		}

		p, err := s.price(ctx, tx, cart.Items, in.PromoCode, s.now())
		if err != nil {
			return err
		}
		switch p.applied.Source {
		case pricing.SourcePromo:
			if err := tx.Promotions.Redeem(ctx, p.applied.PromoID); err != nil {
				return err
			}
			code := p.applied.Code
			order.PromoCode = &code
		case pricing.SourceCampaign:
			id := p.applied.CampaignID
			order.CampaignID = &id
		}
		order.Subtotal = p.subtotal
		order.DiscountAmount = p.applied.Discount
		order.TotalPrice = p.applied.FinalAmount
		for _, line := range p.lines {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
		}

		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			orderID := order.ID
			err := tx.Stock.Create(ctx, &models.StockMovement{
				ProductID: item.ProductID,
				Quantity:  -item.Quantity,
				Kind:      models.MovementOrder,
				OrderID:   &orderID,
				Note:      "order placed",
			})
			if err != nil {
				return err
			}
		}
		return tx.Carts.Clear(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("subtotal", order.Subtotal.StringFixed(2)).
		Str("discount", order.DiscountAmount.StringFixed(2)).
		Str("total", order.TotalPrice.StringFixed(2)).
		Int("items", len(order.Items)).
		Msg("order created")

	created, err := s.store.Orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicOrderCreated, models.TemplateOrderConfirmation, created, user, "", cfg)
	return created, nil
}

// newOrder validates the checkout fields and returns an order header.
func (s *OrderService) newOrder(user *models.User, in CreateOrderInput, cfg models.SiteConfig) (*models.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var addressErr, phoneErr, deliveryErr, paymentErr error
	address := strings.TrimSpace(in.Address)
	if address == "" {
		address = user.Address
	}
	if address == "" {
		addressErr = models.FieldError("address", "This field is required.")
	}

	rawPhone := in.Phone
	if strings.TrimSpace(rawPhone) == "" {
		rawPhone = user.Phone
	}
	phone, phoneErr := normalizePhone("phone", rawPhone)

	delivery := in.DeliveryMethod
	if delivery == "" {
		delivery = cfg.DefaultDeliveryMethod()
	}
	if !cfg.HasDeliveryMethod(delivery) {
		deliveryErr = models.FieldError("delivery_method", "Unknown delivery method.")
	}
	payment := in.PaymentMethod
	if payment == "" {
		payment = cfg.DefaultPaymentMethod()
	}
	if !cfg.HasPaymentMethod(payment) {
		paymentErr = models.FieldError("payment_method", "Unknown payment method.")
	}

	if err := mergeFields(addressErr, phoneErr, deliveryErr, paymentErr); err != nil {
		return nil, err
	}
	return &models.Order{
		UserID:         user.ID,
		Address:        address,
		Phone:          phone,
		DeliveryMethod: delivery,
		PaymentMethod:  payment,
		Comment:        strings.TrimSpace(in.Comment),
		Status:         models.StatusPending,
		Currency:       cfg.Currency,
	}, nil
}

// ListOrders returns one page of the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page, pageSize int) (*Page[models.Order], error) {
	return s.list(ctx, repositories.OrderFilter{UserID: userID, Page: page, PageSize: pageSize})
}

// ListAllOrders returns one page of all orders for admins.
func (s *OrderService) ListAllOrders(ctx context.Context, q AdminOrderQuery) (*Page[models.Order], error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, models.FieldError("status", "Unknown order status.")
	}
	return s.list(ctx, repositories.OrderFilter{UserID: q.UserID, Status: q.Status, Page: q.Page, PageSize: q.PageSize})
}

func (s *OrderService) list(ctx context.Context, f repositories.OrderFilter) (*Page[models.Order], error) {
	f.Page, f.PageSize = normalizePaging(f.Page, f.PageSize, s.pageSize)
	orders, total, err := s.store.Orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return newPage(orders, total, f.Page, f.PageSize), nil
}

// GetOrder returns an order visible to the caller. Other users' orders look missing.
func (s *OrderService) GetOrder(ctx context.Context, userID string, isAdmin bool, id string) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling returns the
// ordered quantities to stock in the same transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, in StatusInput, cfg models.SiteConfig) (*models.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		order    *models.Order
		previous models.OrderStatus
	)
	err := s.uow.Do(ctx, func(tx *repositories.Store) error {
		var err error
		order, err = tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous = order.Status
		if !previous.CanTransitionTo(in.Status) {
			return models.NewDomainError(models.KindState, models.ErrCodeInvalidTransition,
				"Cannot change order status from "+string(previous)+" to "+string(in.Status)+".")
		}
		if err := tx.Orders.UpdateStatus(ctx, id, previous, in.Status); err != nil {
			return err
		}
		order.Status = in.Status

		if in.Status != models.StatusCancelled {
			return nil
		}
		for _, item := range order.Items {
			orderID := order.ID
			err := tx.Stock.Create(ctx, &models.StockMovement{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Kind:      models.MovementOrder,
				OrderID:   &orderID,
				Note:      "order cancelled",
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", id).Str("from", string(previous)).Str("to", string(in.Status)).Msg("order status changed")

	updated, err := s.store.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.GetByID(ctx, updated.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", id).Msg("order owner not found for notification")
		user = nil
	}
	s.publish(ctx, events.TopicOrderStatusChanged, models.TemplateOrderStatus, updated, user, previous, cfg)
	return updated, nil
}

// DeleteOrder removes an order for good. Stock is not restored.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.store.Orders.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Warn().Str("order_id", id).Msg("order deleted")
	return nil
}

// publish emits an order event after commit. Failures are logged only.
func (s *OrderService) publish(ctx context.Context, topic, templateSlug string, order *models.Order, user *models.User, previous models.OrderStatus, cfg models.SiteConfig) {
	event := events.OrderEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		Subtotal:       order.Subtotal,
		Discount:       order.DiscountAmount,
		Total:          order.TotalPrice,
		Currency:       order.Currency,
		OccurredAt:     s.now().UTC(),
	}
	if order.PromoCode != nil {
		event.PromoCode = *order.PromoCode
	}
	for _, item := range order.Items {
		line := events.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price}
		if item.Product != nil {
			line.Name = item.Product.Name
		}
		event.Items = append(event.Items, line)
	}
	if user != nil {
		event.Email = s.renderEmail(ctx, templateSlug, order, user, previous, cfg)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishEvent(pubCtx, topic, order.ID, event); err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Str("order_id", order.ID).Msg("failed to publish order event")
	}
}

func (s *OrderService) renderEmail(ctx context.Context, slug string, order *models.Order, user *models.User, previous models.OrderStatus, cfg models.SiteConfig) *events.Email {
	tpl, err := s.store.Settings.GetTemplate(ctx, slug)
	if err != nil {
		if !errors.Is(err, models.ErrTemplateNotFound) {
			s.logger.Warn().Err(err).Str("template", slug).Msg("failed to load email template")
		}
		return nil
	}
	if !tpl.IsActive || user.Email == "" {
		return nil
	}
	subject, body := tpl.Render(map[string]string{
		"site_name":       cfg.SiteName,
		"username":        user.Username,
		"order_id":        order.ID,
		"status":          string(order.Status),
		"previous_status": string(previous),
		"total":           order.TotalPrice.StringFixed(2),
		"currency":        order.Currency,
		"delivery_method": order.DeliveryMethod,
		"payment_method":  order.PaymentMethod,
	})
	return &events.Email{To: user.Email, Subject: subject, Body: body}
}

package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/internal/order/domain"
)

// fakeOrderRepo 内存实现，记录写操作以便断言
type fakeOrderRepo struct {
	nextID        uint
	orders        map[uint]*domain.Order
	pricing       domain.Pricing
	prices        map[uint]decimal.Decimal
	zeroedBaskets []uint
	confirmCalls  int
	prefillSaves  int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uint]*domain.Order),
		pricing: domain.Pricing{
			FreeDeliveryPoint: decimal.RequireFromString("2000.00"),
			DeliveryPrice:     decimal.RequireFromString("200.00"),
			ExpressPrice:      decimal.RequireFromString("300.00"),
		},
		prices: make(map[uint]decimal.Decimal),
	}
}

func (f *fakeOrderRepo) Create(_ context.Context, basketID uint, lines []domain.LineInput) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, line := range lines {
		if _, ok := f.prices[line.ProductID]; !ok {
			return nil, domain.ErrProductNotFound
		}
	}

	f.nextID++
	order := &domain.Order{Model: gorm.Model{ID: f.nextID}, Status: domain.StatusCreated}
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	f.orders[order.ID] = order
	f.zeroedBaskets = append(f.zeroedBaskets, basketID)
	return order, nil
}

func (f *fakeOrderRepo) Get(_ context.Context, id uint) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) ListByProfile(_ context.Context, profileID uint) ([]domain.Order, error) {
	var orders []domain.Order
	for _, order := range f.orders {
		if order.ProfileID != nil && *order.ProfileID == profileID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) SavePrefill(_ context.Context, order *domain.Order) error {
	f.prefillSaves++
	stored := f.orders[order.ID]
	stored.ProfileID = order.ProfileID
	stored.FullName = order.FullName
	stored.Email = order.Email
	stored.Phone = order.Phone
	return nil
}

func (f *fakeOrderRepo) Confirm(_ context.Context, orderID uint, fields domain.ConfirmFields, totalCost decimal.Decimal) error {
	f.confirmCalls++
	order, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.FullName = fields.FullName
	order.DeliveryType = fields.DeliveryType
	order.TotalCost = &totalCost
	order.Status = domain.StatusConfirmed
	return nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, orderID uint) error {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = domain.StatusPaid
	return nil
}

func (f *fakeOrderRepo) GetPricing(_ context.Context) (domain.Pricing, error) {
	return f.pricing, nil
}

func (f *fakeOrderRepo) ProductPrices(_ context.Context, ids []uint) (map[uint]decimal.Decimal, error) {
	prices := make(map[uint]decimal.Decimal, len(ids))
	for _, id := range ids {
		if price, ok := f.prices[id]; ok {
			prices[id] = price
		}
	}
	return prices, nil
}

func (f *fakeOrderRepo) ListLineDetails(_ context.Context, orderID uint) ([]domain.LineDetail, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	var details []domain.LineDetail
	for _, item := range order.Items {
		details = append(details, domain.LineDetail{
			Product: catalogdomain.Product{
				Model: gorm.Model{ID: item.ProductID},
				Price: f.prices[item.ProductID],
			},
			Quantity: item.Quantity,
		})
	}
	return details, nil
}

type fakeProfiles struct {
	profileID uint
	fullName  string
	email     string
	phone     string
}

func (f *fakeProfiles) ProfileInfo(_ context.Context, _ uint) (uint, string, string, string, error) {
	return f.profileID, f.fullName, f.email, f.phone, nil
}

type recordingPublisher struct {
	events []domain.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

func newService(repo *fakeOrderRepo) (*OrderService, *recordingPublisher) {
	publisher := &recordingPublisher{}
	profiles := &fakeProfiles{profileID: 11, fullName: "Ivan Petrov", email: "ivan@example.com", phone: "+70001112233"}
	return NewOrderService(repo, profiles, publisher, nil), publisher
}

func confirmInput(deliveryType string) ConfirmInput {
	return ConfirmInput{
		FullName:     "Ivan Petrov",
		Email:        "ivan@example.com",
		Phone:        "+70001112233",
		DeliveryType: deliveryType,
		PaymentType:  "online",
		City:         "Moscow",
		Address:      "Tverskaya 1",
	}
}

func TestCreatePublishesEventAndZeroesBasket(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, publisher := newService(repo)

	orderID, err := svc.Create(context.Background(), 5, []LineInput{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)
	assert.NotZero(t, orderID)
	assert.Equal(t, []uint{5}, repo.zeroedBaskets)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventOrderCreated, publisher.events[0].Type)
	assert.Equal(t, orderID, publisher.events[0].OrderID)
}

func TestCreateUnknownProduct(t *testing.T) {
	repo := newFakeOrderRepo()
	svc, _ := newService(repo)

	_, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 9, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestConfirmAddsDeliveryBelowThreshold(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, publisher := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), orderID, confirmInput(domain.DeliveryOrdinary)))

	order := repo.orders[orderID]
	require.NotNil(t, order.TotalCost)
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("300.00")),
		"expected 300.00, got %s", order.TotalCost)
	assert.Equal(t, domain.StatusConfirmed, order.Status)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, domain.EventOrderConfirmed, publisher.events[1].Type)
}

func TestConfirmExpressAddsSurcharge(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, _ := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), orderID, confirmInput(domain.DeliveryExpress)))

	order := repo.orders[orderID]
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("600.00")),
		"expected 600.00, got %s", order.TotalCost)
}

func TestConfirmFreeDeliveryAboveThreshold(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("2500.00")
	svc, _ := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), orderID, confirmInput(domain.DeliveryOrdinary)))

	order := repo.orders[orderID]
	assert.True(t, order.TotalCost.Equal(decimal.RequireFromString("2500.00")),
		"expected 2500.00, got %s", order.TotalCost)
}

func TestConfirmIdempotent(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, _ := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), orderID, confirmInput(domain.DeliveryOrdinary)))
	require.NoError(t, svc.Confirm(context.Background(), orderID, confirmInput(domain.DeliveryExpress)))

	// 第二次确认是空操作，不再写库
	assert.Equal(t, 1, repo.confirmCalls)
}

func TestConfirmRejectsPaidOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, _ := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(context.Background(), orderID, confirmInput(domain.DeliveryOrdinary)))
	require.NoError(t, svc.MarkPaid(context.Background(), orderID))

	err = svc.Confirm(context.Background(), orderID, confirmInput(domain.DeliveryOrdinary))
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)
}

func TestGetPrefillsFromProfileOnce(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, _ := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	userID := uint(3)
	view, err := svc.Get(context.Background(), orderID, &userID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", view.FullName)
	assert.Equal(t, "ivan@example.com", view.Email)
	assert.Equal(t, "+70001112233", view.Phone)
	assert.Equal(t, 1, repo.prefillSaves)

	// 字段已填，再次查看不重复写库
	_, err = svc.Get(context.Background(), orderID, &userID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.prefillSaves)
}

func TestGetAnonymousSkipsPrefill(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, _ := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	view, err := svc.Get(context.Background(), orderID, nil)
	require.NoError(t, err)
	assert.Empty(t, view.FullName)
	assert.Zero(t, repo.prefillSaves)
}

func TestMarkPaidPublishesEvent(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, publisher := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(context.Background(), orderID))

	assert.Equal(t, domain.StatusPaid, repo.orders[orderID].Status)
	last := publisher.events[len(publisher.events)-1]
	assert.Equal(t, domain.EventOrderPaid, last.Type)
}

func TestOrderLinesSnapshotIsolation(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.prices[1] = decimal.RequireFromString("100.00")
	svc, _ := newService(repo)

	orderID, err := svc.Create(context.Background(), 1, []LineInput{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)

	// 后续价格变化不影响已记录的行数量
	repo.prices[1] = decimal.RequireFromString("999.00")
	view, err := svc.Get(context.Background(), orderID, nil)
	require.NoError(t, err)
	require.Len(t, view.Products, 1)
	assert.Equal(t, uint(3), view.Products[0].Count)
}

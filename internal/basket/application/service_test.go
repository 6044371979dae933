package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/internal/basket/domain"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
)

// fakeBasketRepo 内存实现，维护库存与车内数量，语义与 SQL 仓储一致
type fakeBasketRepo struct {
	nextID     uint
	byUser     map[uint]*domain.Basket
	bySession  map[string]*domain.Basket
	stock      map[uint]uint
	quantities map[uint]map[uint]uint // basketID -> productID -> quantity
}

func newFakeBasketRepo(stock map[uint]uint) *fakeBasketRepo {
	return &fakeBasketRepo{
		byUser:     make(map[uint]*domain.Basket),
		bySession:  make(map[string]*domain.Basket),
		stock:      stock,
		quantities: make(map[uint]map[uint]uint),
	}
}

func (f *fakeBasketRepo) newBasket() *domain.Basket {
	f.nextID++
	basket := &domain.Basket{Model: gorm.Model{ID: f.nextID}}
	f.quantities[basket.ID] = make(map[uint]uint)
	return basket
}

func (f *fakeBasketRepo) GetOrCreateByUser(_ context.Context, userID uint) (*domain.Basket, error) {
	if basket, ok := f.byUser[userID]; ok {
		return basket, nil
	}
	basket := f.newBasket()
	basket.UserID = &userID
	f.byUser[userID] = basket
	return basket, nil
}

func (f *fakeBasketRepo) GetOrCreateBySession(_ context.Context, token string) (*domain.Basket, error) {
	if basket, ok := f.bySession[token]; ok {
		return basket, nil
	}
	basket := f.newBasket()
	basket.SessionToken = &token
	f.bySession[token] = basket
	return basket, nil
}

func (f *fakeBasketRepo) AddItem(_ context.Context, basketID, productID, quantity uint) error {
	stock, ok := f.stock[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if stock < quantity {
		return domain.ErrInsufficientStock
	}
	f.stock[productID] = stock - quantity
	f.quantities[basketID][productID] += quantity
	return nil
}

func (f *fakeBasketRepo) RemoveItem(_ context.Context, basketID, productID, quantity uint) error {
	held, ok := f.quantities[basketID][productID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if held < quantity {
		return domain.ErrInvalidQuantity
	}
	f.quantities[basketID][productID] = held - quantity
	f.stock[productID] += quantity
	return nil
}

func (f *fakeBasketRepo) ListLines(_ context.Context, basketID uint) ([]domain.Line, error) {
	var lines []domain.Line
	for productID, quantity := range f.quantities[basketID] {
		if quantity == 0 {
			continue
		}
		lines = append(lines, domain.Line{
			Product:  catalogdomain.Product{Model: gorm.Model{ID: productID}, Stock: f.stock[productID]},
			Quantity: quantity,
		})
	}
	return lines, nil
}

func TestResolvePrefersUserOverSession(t *testing.T) {
	repo := newFakeBasketRepo(nil)
	svc := NewBasketService(repo, nil)
	userID := uint(7)

	basket, err := svc.Resolve(context.Background(), &userID, "token")
	require.NoError(t, err)
	require.NotNil(t, basket.UserID)
	assert.Equal(t, userID, *basket.UserID)
	assert.Nil(t, basket.SessionToken)
}

func TestResolveAnonymousBySessionToken(t *testing.T) {
	repo := newFakeBasketRepo(nil)
	svc := NewBasketService(repo, nil)

	first, err := svc.Resolve(context.Background(), nil, "token-a")
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), nil, "token-a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := svc.Resolve(context.Background(), nil, "token-b")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	repo := newFakeBasketRepo(map[uint]uint{1: 10})
	svc := NewBasketService(repo, nil)
	basket, _ := svc.Resolve(context.Background(), nil, "t")

	lines, err := svc.Add(context.Background(), basket, 1, 4)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, uint(4), lines[0].Count)
	assert.Equal(t, uint(6), repo.stock[1])

	lines, err = svc.Remove(context.Background(), basket, 1, 4)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, uint(10), repo.stock[1])
}

func TestAddInsufficientStock(t *testing.T) {
	repo := newFakeBasketRepo(map[uint]uint{1: 3})
	svc := NewBasketService(repo, nil)
	basket, _ := svc.Resolve(context.Background(), nil, "t")

	_, err := svc.Add(context.Background(), basket, 1, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	// 失败的操作不触碰库存
	assert.Equal(t, uint(3), repo.stock[1])
}

func TestAddUnknownProduct(t *testing.T) {
	repo := newFakeBasketRepo(map[uint]uint{})
	svc := NewBasketService(repo, nil)
	basket, _ := svc.Resolve(context.Background(), nil, "t")

	_, err := svc.Add(context.Background(), basket, 99, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRemoveMoreThanHeld(t *testing.T) {
	repo := newFakeBasketRepo(map[uint]uint{1: 10})
	svc := NewBasketService(repo, nil)
	basket, _ := svc.Resolve(context.Background(), nil, "t")

	_, err := svc.Add(context.Background(), basket, 1, 2)
	require.NoError(t, err)

	_, err = svc.Remove(context.Background(), basket, 1, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, uint(8), repo.stock[1])
}

func TestRemoveUnknownItem(t *testing.T) {
	repo := newFakeBasketRepo(map[uint]uint{1: 10})
	svc := NewBasketService(repo, nil)
	basket, _ := svc.Resolve(context.Background(), nil, "t")

	_, err := svc.Remove(context.Background(), basket, 1, 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestZeroQuantityRejected(t *testing.T) {
	repo := newFakeBasketRepo(map[uint]uint{1: 10})
	svc := NewBasketService(repo, nil)
	basket, _ := svc.Resolve(context.Background(), nil, "t")

	_, err := svc.Add(context.Background(), basket, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.Remove(context.Background(), basket, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

package service

import (
	"context"
	"testing"

	"supply-service/internal/models"
	"supply-service/internal/reconcile"

	"github.com/stretchr/testify/assert"
)

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	s := &SupplyService{}

	// Without the guard an itemless order would persist with a zero
	// supplied value and complete itself on the first re-derivation.
	_, err := s.CreateOrder(context.Background(), &CreateOrderRequest{
		StoreID:    1,
		CustomerID: 2,
		CreatedBy:  3,
		Items:      nil,
	})
	assert.ErrorIs(t, err, reconcile.ErrInvalidQuantity)

	_, err = s.CreateOrder(context.Background(), &CreateOrderRequest{
		StoreID:    1,
		CustomerID: 2,
		CreatedBy:  3,
		Items:      []OrderItemRequest{},
	})
	assert.ErrorIs(t, err, reconcile.ErrInvalidQuantity)
}

func TestCreateOrderRejectsNonPositiveItems(t *testing.T) {
	s := &SupplyService{}

	_, err := s.CreateOrder(context.Background(), &CreateOrderRequest{
		StoreID:    1,
		CustomerID: 2,
		CreatedBy:  3,
		Items:      []OrderItemRequest{{ProductID: 10, Quantity: 0, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, reconcile.ErrInvalidQuantity)

	_, err = s.CreateOrder(context.Background(), &CreateOrderRequest{
		StoreID:    1,
		CustomerID: 2,
		CreatedBy:  3,
		Items:      []OrderItemRequest{{ProductID: 10, Quantity: 5, UnitPrice: -1}},
	})
	assert.ErrorIs(t, err, reconcile.ErrInvalidQuantity)
}

func TestProcessReturnRejectsUnknownCondition(t *testing.T) {
	s := &SupplyService{}

	_, err := s.ProcessReturn(context.Background(), 1, &ProcessReturnRequest{
		ProcessedBy: 3,
		Entries:     []ReturnEntryRequest{{ItemID: 1, Quantity: 1, Condition: "soggy"}},
	})
	assert.ErrorIs(t, err, reconcile.ErrInvalidQuantity)
}

func TestProcessPaymentRejectsUnknownMethod(t *testing.T) {
	s := &SupplyService{}

	_, err := s.ProcessPayment(context.Background(), 1, &ProcessPaymentRequest{
		Amount:     100,
		Method:     "barter",
		ReceivedBy: 3,
	})
	assert.ErrorIs(t, err, reconcile.ErrExceedsBalance)
}

func TestEntryEventData(t *testing.T) {
	items := []models.SupplyOrderItem{
		{ID: 1, ProductID: 100},
		{ID: 2, ProductID: 200},
	}
	lines := []reconcile.ReturnLine{
		{ItemID: 2, Quantity: 3},
		{ItemID: 1, Quantity: 1},
	}

	entries := entryEventData(items, lines)

	assert.Equal(t, []models.EventEntryData{
		{ItemID: 2, ProductID: 200, Quantity: 3},
		{ItemID: 1, ProductID: 100, Quantity: 1},
	}, entries)

	assert.Equal(t, int64(200), productIDFor(entries, 2))
	assert.Equal(t, int64(0), productIDFor(entries, 99))
}

func TestCheckDeletable(t *testing.T) {
	err := checkDeletable(&models.SupplyOrder{ID: 1, Status: models.StatusCompleted})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, status := range []string{
		models.StatusSupplied,
		models.StatusPartiallyReturned,
		models.StatusFullyReturned,
		models.StatusCancelled,
	} {
		assert.NoError(t, checkDeletable(&models.SupplyOrder{ID: 1, Status: status}))
	}
}

func TestDeleteCompletedOrderRejected(t *testing.T) {
	// Requires a database: drive an order to completed, then DeleteOrder
	// must fail with ErrInvalidTransition and leave the rows intact.
	t.Skip("Integration test - requires database")
}

func TestConcurrentMutationsLinearized(t *testing.T) {
	// Requires a database: two goroutines hammer one order with returns and
	// payments and the final aggregates must satisfy conservation and the
	// balance bound. Covered by the integration suite.
	t.Skip("Integration test - requires database")
}

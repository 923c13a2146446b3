package reconcile

import (
	"testing"

	"supply-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAmountOwedShrinksWithReturns(t *testing.T) {
	items := []models.SupplyOrderItem{
		{ID: 1, UnitPrice: 100, QuantitySupplied: 10},
	}

	assert.Equal(t, int64(1000), AmountOwed(items))

	items[0].QuantityReturned = 4
	assert.Equal(t, int64(600), AmountOwed(items))

	// Acceptance does not change what is owed, only returns do.
	items[0].QuantityAccepted = 4
	assert.Equal(t, int64(600), AmountOwed(items))
}

func TestComputeBalance(t *testing.T) {
	items := []models.SupplyOrderItem{
		{ID: 1, UnitPrice: 100, QuantitySupplied: 10, QuantityReturned: 4},
	}
	payments := []models.SupplyPayment{
		{Amount: 200, Method: models.MethodCash},
		{Amount: 150, Method: models.MethodCard},
	}

	balance := ComputeBalance(items, payments)

	assert.Equal(t, int64(600), balance.AmountOwed)
	assert.Equal(t, int64(350), balance.TotalPaid)
	assert.Equal(t, int64(250), balance.RemainingBalance)
	assert.Equal(t, int64(0), balance.Overpayment())
}

func TestOverpaymentSurfacedNotClamped(t *testing.T) {
	// Full payment first, then a return shrinks what is owed: the balance
	// goes negative and the overpayment is reported as a refund due.
	items := []models.SupplyOrderItem{
		{ID: 1, UnitPrice: 100, QuantitySupplied: 10},
	}
	payments := []models.SupplyPayment{{Amount: 1000, Method: models.MethodCash}}

	items[0].QuantityReturned = 4
	balance := ComputeBalance(items, payments)

	assert.Equal(t, int64(600), balance.AmountOwed)
	assert.Equal(t, int64(-400), balance.RemainingBalance)
	assert.Equal(t, int64(400), balance.Overpayment())
}

func TestValidatePayment(t *testing.T) {
	balance := Balance{AmountOwed: 600, TotalPaid: 0, RemainingBalance: 600}

	assert.NoError(t, ValidatePayment(balance, 600))
	assert.NoError(t, ValidatePayment(balance, 1))

	assert.ErrorIs(t, ValidatePayment(balance, 601), ErrExceedsBalance)
	assert.ErrorIs(t, ValidatePayment(balance, 0), ErrExceedsBalance)
	assert.ErrorIs(t, ValidatePayment(balance, -5), ErrExceedsBalance)

	// Nothing can be paid against a settled or overpaid order.
	settled := Balance{AmountOwed: 600, TotalPaid: 600, RemainingBalance: 0}
	assert.ErrorIs(t, ValidatePayment(settled, 1), ErrExceedsBalance)
}

func TestTotalSuppliedValue(t *testing.T) {
	items := []models.SupplyOrderItem{
		{UnitPrice: 100, QuantitySupplied: 10},
		{UnitPrice: 250, QuantitySupplied: 4},
	}
	assert.Equal(t, int64(2000), TotalSuppliedValue(items))
}

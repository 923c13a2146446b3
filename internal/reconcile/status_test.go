package reconcile

import (
	"testing"

	"supply-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		totals    Totals
		remaining int64
		cancelled bool
		want      string
	}{
		{
			name:      "nothing returned",
			totals:    Totals{TotalSupplied: 10},
			remaining: 1000,
			want:      models.StatusSupplied,
		},
		{
			name:      "some returned",
			totals:    Totals{TotalSupplied: 10, TotalReturned: 4, TotalAccepted: 4},
			remaining: 600,
			want:      models.StatusPartiallyReturned,
		},
		{
			name:      "all returned, balance open",
			totals:    Totals{TotalSupplied: 10, TotalReturned: 10, TotalAccepted: 10},
			remaining: 1,
			want:      models.StatusFullyReturned,
		},
		{
			name:      "settled and fully accepted",
			totals:    Totals{TotalSupplied: 10, TotalReturned: 4, TotalAccepted: 4},
			remaining: 0,
			want:      models.StatusCompleted,
		},
		{
			name:      "settled but acceptance outstanding stays open",
			totals:    Totals{TotalSupplied: 10, TotalReturned: 4, TotalAccepted: 2},
			remaining: 0,
			want:      models.StatusPartiallyReturned,
		},
		{
			name:      "overpaid with acceptance outstanding stays open",
			totals:    Totals{TotalSupplied: 10, TotalReturned: 4},
			remaining: -400,
			want:      models.StatusPartiallyReturned,
		},
		{
			name:      "cancelled wins over everything",
			totals:    Totals{TotalSupplied: 10, TotalReturned: 10, TotalAccepted: 10},
			remaining: 0,
			cancelled: true,
			want:      models.StatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.totals, tt.remaining, tt.cancelled)
			assert.Equal(t, tt.want, got)

			// Pure function: rerunning on the same inputs never changes
			// the answer.
			assert.Equal(t, got, DeriveStatus(tt.totals, tt.remaining, tt.cancelled))
		})
	}
}

// TestReconciliationLifecycle walks one order through supply, partial
// return, acceptance and settlement, asserting the derived state at each
// step.
func TestReconciliationLifecycle(t *testing.T) {
	items := []models.SupplyOrderItem{
		{ID: 1, ProductID: 100, UnitPrice: 100, QuantitySupplied: 10},
	}
	var payments []models.SupplyPayment

	state := func() (Totals, Balance) {
		return OrderTotals(items), ComputeBalance(items, payments)
	}

	// Freshly supplied.
	totals, balance := state()
	assert.Equal(t, int64(1000), balance.AmountOwed)
	assert.Equal(t, models.StatusSupplied, DeriveStatus(totals, balance.RemainingBalance, false))

	// Customer brings back 4.
	assert.NoError(t, ValidateReturnEntries(items, []ReturnLine{{ItemID: 1, Quantity: 4}}))
	items = ApplyReturn(items, []ReturnLine{{ItemID: 1, Quantity: 4}})

	totals, balance = state()
	assert.Equal(t, 4, items[0].QuantityReturned)
	assert.Equal(t, int64(600), balance.AmountOwed)
	assert.Equal(t, models.StatusPartiallyReturned, DeriveStatus(totals, balance.RemainingBalance, false))

	// Store accepts the 4 back into stock; the order stays open because 6
	// kept units are still owed for.
	assert.NoError(t, ValidateAcceptanceEntries(items, []ReturnLine{{ItemID: 1, Quantity: 4}}))
	items = ApplyAcceptance(items, []ReturnLine{{ItemID: 1, Quantity: 4}})

	totals, balance = state()
	assert.Equal(t, 4, items[0].QuantityAccepted)
	assert.Equal(t, models.StatusPartiallyReturned, DeriveStatus(totals, balance.RemainingBalance, false))

	// Customer settles the 600 owed: returns fully accepted and balance
	// settled, so the order completes.
	assert.NoError(t, ValidatePayment(balance, 600))
	payments = append(payments, models.SupplyPayment{Amount: 600, Method: models.MethodCash})

	totals, balance = state()
	assert.Equal(t, int64(0), balance.RemainingBalance)
	assert.Equal(t, models.StatusCompleted, DeriveStatus(totals, balance.RemainingBalance, false))
}

// TestOverpaymentLifecycle pays in full before any return; the later return
// must surface a refund due and keep the order open until acceptance.
func TestOverpaymentLifecycle(t *testing.T) {
	items := []models.SupplyOrderItem{
		{ID: 1, ProductID: 100, UnitPrice: 100, QuantitySupplied: 10},
	}
	payments := []models.SupplyPayment{{Amount: 1000, Method: models.MethodCard}}

	balance := ComputeBalance(items, payments)
	assert.Equal(t, int64(0), balance.RemainingBalance)

	items = ApplyReturn(items, []ReturnLine{{ItemID: 1, Quantity: 4}})

	totals := OrderTotals(items)
	balance = ComputeBalance(items, payments)
	assert.Equal(t, int64(-400), balance.RemainingBalance)
	assert.Equal(t, int64(400), balance.Overpayment())
	assert.Equal(t, models.StatusPartiallyReturned, DeriveStatus(totals, balance.RemainingBalance, false))
}

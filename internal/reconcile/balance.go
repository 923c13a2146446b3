package reconcile

import (
	"errors"
	"fmt"

	"supply-service/internal/models"
)

// ErrExceedsBalance rejects a payment larger than the balance currently owed.
var ErrExceedsBalance = errors.New("payment exceeds remaining balance")

// Balance is the monetary view of an order at a point in time. Amounts are
// int64 minor units. RemainingBalance may go negative after a return is
// processed on an already-paid order; that is the overpayment condition,
// not corruption.
type Balance struct {
	AmountOwed       int64
	TotalPaid        int64
	RemainingBalance int64
}

// Overpayment is the refund due to the customer, zero when none.
func (b Balance) Overpayment() int64 {
	if b.RemainingBalance < 0 {
		return -b.RemainingBalance
	}
	return 0
}

// AmountOwed is what the customer owes for goods not returned:
// sum of kept quantity times the snapshotted unit price per item.
func AmountOwed(items []models.SupplyOrderItem) int64 {
	var owed int64
	for i := range items {
		owed += int64(items[i].QuantityKept()) * items[i].UnitPrice
	}
	return owed
}

// TotalPaid sums all payments on the order.
func TotalPaid(payments []models.SupplyPayment) int64 {
	var paid int64
	for i := range payments {
		paid += payments[i].Amount
	}
	return paid
}

// ComputeBalance derives the monetary view from items and payments.
func ComputeBalance(items []models.SupplyOrderItem, payments []models.SupplyPayment) Balance {
	owed := AmountOwed(items)
	paid := TotalPaid(payments)
	return Balance{
		AmountOwed:       owed,
		TotalPaid:        paid,
		RemainingBalance: owed - paid,
	}
}

// ValidatePayment checks a payment amount against the balance at the
// instant of commit. Valid only if amount > 0 and amount does not exceed
// the remaining balance.
func ValidatePayment(balance Balance, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrExceedsBalance, amount)
	}
	if amount > balance.RemainingBalance {
		return fmt.Errorf("%w: amount %d, remaining balance %d", ErrExceedsBalance, amount, balance.RemainingBalance)
	}
	return nil
}

// TotalSuppliedValue is the cached projection fixed at order creation:
// sum of supplied quantity times unit price per item.
func TotalSuppliedValue(items []models.SupplyOrderItem) int64 {
	var total int64
	for i := range items {
		total += int64(items[i].QuantitySupplied) * items[i].UnitPrice
	}
	return total
}

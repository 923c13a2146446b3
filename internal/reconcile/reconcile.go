// Package reconcile holds the pure reconciliation core for supply orders:
// quantity aggregation, balance calculation and status derivation. Nothing
// in this package performs I/O or blocks; the service layer runs these
// functions inside its per-order transactions.
package reconcile

import (
	"errors"
	"fmt"

	"supply-service/internal/models"
)

// ErrInvalidQuantity rejects a return or acceptance entry that asks for
// more than is available in its pool.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Totals are the order-level aggregates computed from the items.
type Totals struct {
	TotalSupplied           int
	TotalReturned           int
	TotalAccepted           int
	TotalKept               int
	TotalAwaitingAcceptance int
}

// OrderTotals computes order-level aggregates from the current item counters.
func OrderTotals(items []models.SupplyOrderItem) Totals {
	var t Totals
	for i := range items {
		t.TotalSupplied += items[i].QuantitySupplied
		t.TotalReturned += items[i].QuantityReturned
		t.TotalAccepted += items[i].QuantityAccepted
		t.TotalKept += items[i].QuantityKept()
		t.TotalAwaitingAcceptance += items[i].QuantityAwaitingAcceptance()
	}
	return t
}

// ReturnLine is one (item, quantity) pair of a pending return event.
type ReturnLine struct {
	ItemID   int64
	Quantity int
}

// ValidateReturnEntries checks every line of a return event against the
// current item counters. A return of quantity q on item i is valid only if
// q > 0 and q <= supplied(i) - returned(i), summed across lines that target
// the same item. The whole event is rejected if any line fails.
func ValidateReturnEntries(items []models.SupplyOrderItem, lines []ReturnLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: return has no entries", ErrInvalidQuantity)
	}

	byID := itemIndex(items)
	pending := make(map[int64]int, len(lines))

	for _, line := range lines {
		item, ok := byID[line.ItemID]
		if !ok {
			return fmt.Errorf("%w: item %d does not belong to this order", ErrInvalidQuantity, line.ItemID)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidQuantity, line.ItemID, line.Quantity)
		}

		pending[line.ItemID] += line.Quantity
		if available := item.QuantityKept(); pending[line.ItemID] > available {
			return fmt.Errorf("%w: item %d: cannot return %d, only %d outstanding",
				ErrInvalidQuantity, line.ItemID, pending[line.ItemID], available)
		}
	}

	return nil
}

// ValidateAcceptanceEntries checks every line of an acceptance event.
// An acceptance of quantity q on item i is valid only if q > 0 and
// q <= returned(i) - accepted(i). All-or-nothing, as with returns.
func ValidateAcceptanceEntries(items []models.SupplyOrderItem, lines []ReturnLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: acceptance has no entries", ErrInvalidQuantity)
	}

	byID := itemIndex(items)
	pending := make(map[int64]int, len(lines))

	for _, line := range lines {
		item, ok := byID[line.ItemID]
		if !ok {
			return fmt.Errorf("%w: item %d does not belong to this order", ErrInvalidQuantity, line.ItemID)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidQuantity, line.ItemID, line.Quantity)
		}

		pending[line.ItemID] += line.Quantity
		if awaiting := item.QuantityAwaitingAcceptance(); pending[line.ItemID] > awaiting {
			return fmt.Errorf("%w: item %d: cannot accept %d, only %d awaiting acceptance",
				ErrInvalidQuantity, line.ItemID, pending[line.ItemID], awaiting)
		}
	}

	return nil
}

// ApplyReturn bumps QuantityReturned on a validated copy of the items.
// Callers must run ValidateReturnEntries first.
func ApplyReturn(items []models.SupplyOrderItem, lines []ReturnLine) []models.SupplyOrderItem {
	out := cloneItems(items)
	byID := itemIndex(out)
	for _, line := range lines {
		byID[line.ItemID].QuantityReturned += line.Quantity
	}
	return out
}

// ApplyAcceptance bumps QuantityAccepted on a validated copy of the items.
// Callers must run ValidateAcceptanceEntries first.
func ApplyAcceptance(items []models.SupplyOrderItem, lines []ReturnLine) []models.SupplyOrderItem {
	out := cloneItems(items)
	byID := itemIndex(out)
	for _, line := range lines {
		byID[line.ItemID].QuantityAccepted += line.Quantity
	}
	return out
}

// Replay recomputes all item counters from scratch out of the event history.
// Given the same history it always reproduces the same counters, which makes
// drift between stored aggregates and events detectable.
func Replay(items []models.SupplyOrderItem, returns []models.SupplyReturn, acceptances []models.SupplyAcceptance) []models.SupplyOrderItem {
	out := cloneItems(items)
	byID := itemIndex(out)

	for i := range out {
		out[i].QuantityReturned = 0
		out[i].QuantityAccepted = 0
	}
	for _, ret := range returns {
		for _, e := range ret.Entries {
			if item, ok := byID[e.ItemID]; ok {
				item.QuantityReturned += e.Quantity
			}
		}
	}
	for _, acc := range acceptances {
		for _, e := range acc.Entries {
			if item, ok := byID[e.ItemID]; ok {
				item.QuantityAccepted += e.Quantity
			}
		}
	}
	return out
}

// CheckConservation verifies 0 <= accepted <= returned <= supplied for every
// item. A violation means the ledger is corrupt, not that a request is bad.
func CheckConservation(items []models.SupplyOrderItem) error {
	for i := range items {
		it := &items[i]
		if it.QuantityAccepted < 0 || it.QuantityAccepted > it.QuantityReturned || it.QuantityReturned > it.QuantitySupplied {
			return fmt.Errorf("item %d violates conservation: supplied=%d returned=%d accepted=%d",
				it.ID, it.QuantitySupplied, it.QuantityReturned, it.QuantityAccepted)
		}
	}
	return nil
}

func itemIndex(items []models.SupplyOrderItem) map[int64]*models.SupplyOrderItem {
	byID := make(map[int64]*models.SupplyOrderItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID
}

func cloneItems(items []models.SupplyOrderItem) []models.SupplyOrderItem {
	out := make([]models.SupplyOrderItem, len(items))
	copy(out, items)
	return out
}

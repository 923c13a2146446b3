package reconcile

import (
	"testing"

	"supply-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoItems() []models.SupplyOrderItem {
	return []models.SupplyOrderItem{
		{ID: 1, ProductID: 100, UnitPrice: 100, QuantitySupplied: 10},
		{ID: 2, ProductID: 200, UnitPrice: 250, QuantitySupplied: 4},
	}
}

func TestOrderTotals(t *testing.T) {
	items := twoItems()
	items[0].QuantityReturned = 3
	items[0].QuantityAccepted = 1
	items[1].QuantityReturned = 4

	totals := OrderTotals(items)

	assert.Equal(t, 14, totals.TotalSupplied)
	assert.Equal(t, 7, totals.TotalReturned)
	assert.Equal(t, 1, totals.TotalAccepted)
	assert.Equal(t, 7, totals.TotalKept)
	assert.Equal(t, 6, totals.TotalAwaitingAcceptance)
}

func TestValidateReturnEntries(t *testing.T) {
	items := twoItems()
	items[0].QuantityReturned = 6 // 4 still outstanding on item 1

	err := ValidateReturnEntries(items, []ReturnLine{{ItemID: 1, Quantity: 4}})
	assert.NoError(t, err)

	err = ValidateReturnEntries(items, []ReturnLine{{ItemID: 1, Quantity: 5}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateReturnEntries(items, []ReturnLine{{ItemID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateReturnEntries(items, []ReturnLine{{ItemID: 99, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateReturnEntries(items, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestValidateReturnEntriesSumsLinesPerItem(t *testing.T) {
	items := twoItems()

	// Two lines of 3 on item 2 exceed the 4 supplied even though each line
	// alone would pass.
	err := ValidateReturnEntries(items, []ReturnLine{
		{ItemID: 2, Quantity: 3},
		{ItemID: 2, Quantity: 3},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateReturnEntries(items, []ReturnLine{
		{ItemID: 2, Quantity: 3},
		{ItemID: 2, Quantity: 1},
	})
	assert.NoError(t, err)
}

func TestValidateAcceptanceEntries(t *testing.T) {
	items := twoItems()
	items[0].QuantityReturned = 5
	items[0].QuantityAccepted = 2 // 3 awaiting acceptance

	err := ValidateAcceptanceEntries(items, []ReturnLine{{ItemID: 1, Quantity: 3}})
	assert.NoError(t, err)

	err = ValidateAcceptanceEntries(items, []ReturnLine{{ItemID: 1, Quantity: 4}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// Nothing returned on item 2 yet, so nothing can be accepted.
	err = ValidateAcceptanceEntries(items, []ReturnLine{{ItemID: 2, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAcceptanceBoundedByReturnedNotSupplied(t *testing.T) {
	// The acceptance pool is returned-but-unaccepted, not supplied. A single
	// supplied-minus-everything formula would wrongly allow this.
	items := []models.SupplyOrderItem{
		{ID: 1, UnitPrice: 100, QuantitySupplied: 10, QuantityReturned: 2},
	}

	err := ValidateAcceptanceEntries(items, []ReturnLine{{ItemID: 1, Quantity: 8}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = ValidateAcceptanceEntries(items, []ReturnLine{{ItemID: 1, Quantity: 2}})
	assert.NoError(t, err)
}

func TestApplyReturnDoesNotMutateInput(t *testing.T) {
	items := twoItems()

	updated := ApplyReturn(items, []ReturnLine{{ItemID: 1, Quantity: 4}})

	assert.Equal(t, 0, items[0].QuantityReturned)
	assert.Equal(t, 4, updated[0].QuantityReturned)
	assert.NoError(t, CheckConservation(updated))
}

func TestApplyAcceptance(t *testing.T) {
	items := twoItems()
	items[0].QuantityReturned = 4

	updated := ApplyAcceptance(items, []ReturnLine{{ItemID: 1, Quantity: 4}})

	assert.Equal(t, 4, updated[0].QuantityAccepted)
	assert.Equal(t, 0, updated[0].QuantityAwaitingAcceptance())
	assert.NoError(t, CheckConservation(updated))
}

func TestReplayReproducesCounters(t *testing.T) {
	items := twoItems()

	returns := []models.SupplyReturn{
		{ID: 1, Entries: []models.SupplyReturnEntry{
			{ItemID: 1, Quantity: 3, Condition: models.ConditionGood},
			{ItemID: 2, Quantity: 2, Condition: models.ConditionDamaged},
		}},
		{ID: 2, Entries: []models.SupplyReturnEntry{
			{ItemID: 1, Quantity: 1, Condition: models.ConditionGood},
		}},
	}
	acceptances := []models.SupplyAcceptance{
		{ID: 1, Entries: []models.SupplyAcceptanceEntry{
			{ItemID: 1, Quantity: 2},
		}},
	}

	replayed := Replay(items, returns, acceptances)

	assert.Equal(t, 4, replayed[0].QuantityReturned)
	assert.Equal(t, 2, replayed[0].QuantityAccepted)
	assert.Equal(t, 2, replayed[1].QuantityReturned)
	assert.Equal(t, 0, replayed[1].QuantityAccepted)

	// Replaying twice yields identical counters.
	again := Replay(replayed, returns, acceptances)
	assert.Equal(t, replayed, again)
}

func TestCheckConservation(t *testing.T) {
	items := twoItems()
	require.NoError(t, CheckConservation(items))

	items[0].QuantityReturned = 11
	assert.Error(t, CheckConservation(items))

	items[0].QuantityReturned = 5
	items[0].QuantityAccepted = 6
	assert.Error(t, CheckConservation(items))
}

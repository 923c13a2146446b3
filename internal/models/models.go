package models

import "time"

// SupplyOrder represents goods handed to a customer on a supply-now,
// settle-later basis. Status is derived from the aggregates and persisted
// only as a cache.
type SupplyOrder struct {
	ID                 int64      `db:"id" json:"id"`
	StoreID            int64      `db:"store_id" json:"store_id"`
	CustomerID         int64      `db:"customer_id" json:"customer_id"`
	CreatedBy          int64      `db:"created_by" json:"created_by"`
	SupplyDate         time.Time  `db:"supply_date" json:"supply_date"`
	ExpectedReturnDate *time.Time `db:"expected_return_date" json:"expected_return_date,omitempty"`
	Notes              string     `db:"notes" json:"notes,omitempty"`
	Status             string     `db:"status" json:"status"`
	TotalSuppliedValue int64      `db:"total_supplied_value" json:"total_supplied_value"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// SupplyOrderItem tracks one product line on a supply order. The three
// counters are monotonically non-decreasing and satisfy
// 0 <= QuantityAccepted <= QuantityReturned <= QuantitySupplied.
type SupplyOrderItem struct {
	ID               int64 `db:"id" json:"id"`
	OrderID          int64 `db:"order_id" json:"order_id"`
	ProductID        int64 `db:"product_id" json:"product_id"`
	UnitPrice        int64 `db:"unit_price" json:"unit_price"`
	QuantitySupplied int   `db:"quantity_supplied" json:"quantity_supplied"`
	QuantityReturned int   `db:"quantity_returned" json:"quantity_returned"`
	QuantityAccepted int   `db:"quantity_accepted" json:"quantity_accepted"`
}

// QuantityKept is what the customer still holds and owes for.
func (i *SupplyOrderItem) QuantityKept() int {
	return i.QuantitySupplied - i.QuantityReturned
}

// QuantityAwaitingAcceptance is physically back at the store but not yet
// quality-checked into stock.
func (i *SupplyOrderItem) QuantityAwaitingAcceptance() int {
	return i.QuantityReturned - i.QuantityAccepted
}

// SupplyReturn is an immutable record of a customer bringing goods back.
type SupplyReturn struct {
	ID          int64     `db:"id" json:"id"`
	OrderID     int64     `db:"order_id" json:"order_id"`
	ProcessedBy int64     `db:"processed_by" json:"processed_by"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Entries []SupplyReturnEntry `db:"-" json:"entries"`
}

// SupplyReturnEntry references an order item by id; it carries a quantity,
// not ownership. Condition is advisory metadata and plays no part in the
// quantity math.
type SupplyReturnEntry struct {
	ID        int64  `db:"id" json:"id"`
	ReturnID  int64  `db:"return_id" json:"return_id"`
	ItemID    int64  `db:"item_id" json:"item_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Condition string `db:"condition" json:"condition"`
	Reason    string `db:"reason" json:"reason,omitempty"`
}

// SupplyAcceptance is an immutable record of returned goods being
// quality-checked back into sellable stock.
type SupplyAcceptance struct {
	ID          int64     `db:"id" json:"id"`
	OrderID     int64     `db:"order_id" json:"order_id"`
	ProcessedBy int64     `db:"processed_by" json:"processed_by"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Entries []SupplyAcceptanceEntry `db:"-" json:"entries"`
}

// SupplyAcceptanceEntry references an order item by id plus a quantity.
type SupplyAcceptanceEntry struct {
	ID           int64 `db:"id" json:"id"`
	AcceptanceID int64 `db:"acceptance_id" json:"acceptance_id"`
	ItemID       int64 `db:"item_id" json:"item_id"`
	Quantity     int   `db:"quantity" json:"quantity"`
}

// SupplyPayment is an immutable record of money received against an order.
type SupplyPayment struct {
	ID         int64     `db:"id" json:"id"`
	OrderID    int64     `db:"order_id" json:"order_id"`
	Amount     int64     `db:"amount" json:"amount"`
	Method     string    `db:"method" json:"method"`
	ReceivedBy int64     `db:"received_by" json:"received_by"`
	Notes      string    `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StockCredit is an outbox row for the inventory collaborator: one pending
// stock increment per accepted entry, keyed by acceptance entry id so the
// credit is idempotent.
type StockCredit struct {
	ID         int64      `db:"id" json:"id"`
	EntryID    int64      `db:"entry_id" json:"entry_id"`
	OrderID    int64      `db:"order_id" json:"order_id"`
	StoreID    int64      `db:"store_id" json:"store_id"`
	ProductID  int64      `db:"product_id" json:"product_id"`
	Quantity   int        `db:"quantity" json:"quantity"`
	CreditedAt *time.Time `db:"credited_at" json:"credited_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// OrderView is the full read model returned by the API: the order with its
// items and complete event history embedded.
type OrderView struct {
	Order            SupplyOrder        `json:"order"`
	Items            []SupplyOrderItem  `json:"items"`
	Returns          []SupplyReturn     `json:"returns"`
	Acceptances      []SupplyAcceptance `json:"acceptances"`
	Payments         []SupplyPayment    `json:"payments"`
	AmountOwed       int64              `json:"amount_owed"`
	TotalPaid        int64              `json:"total_paid"`
	RemainingBalance int64              `json:"remaining_balance"`
	Overpayment      int64              `json:"overpayment"`
}

// PendingReturn summarises one order with goods returned but not yet
// accepted back into stock.
type PendingReturn struct {
	OrderID                 int64 `db:"order_id" json:"order_id"`
	ItemsAwaitingAcceptance int   `db:"items_awaiting" json:"items_awaiting_acceptance"`
	QuantityPending         int   `db:"quantity_pending" json:"quantity_pending"`
}

// Order statuses. Completed and cancelled are terminal.
const (
	StatusSupplied          = "supplied"
	StatusPartiallyReturned = "partially_returned"
	StatusFullyReturned     = "fully_returned"
	StatusCompleted         = "completed"
	StatusCancelled         = "cancelled"
)

// IsTerminalStatus reports whether no further mutations are accepted.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// Return conditions
const (
	ConditionGood      = "good"
	ConditionDamaged   = "damaged"
	ConditionDefective = "defective"
	ConditionExpired   = "expired"
)

// ValidCondition reports whether c is a known return condition.
func ValidCondition(c string) bool {
	switch c {
	case ConditionGood, ConditionDamaged, ConditionDefective, ConditionExpired:
		return true
	}
	return false
}

// Payment methods
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodMobile = "mobile"
	MethodOther  = "other"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCash, MethodCard, MethodMobile, MethodOther:
		return true
	}
	return false
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}

// ActivityEntry is one row of the audit trail.
type ActivityEntry struct {
	ID          int64     `db:"id" json:"id"`
	EventType   string    `db:"event_type" json:"event_type"`
	Description string    `db:"description" json:"description"`
	Metadata    string    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

package models

import "time"

// Event types
const (
	EventTypeOrderCreated     = "SUPPLY_ORDER_CREATED"
	EventTypeReturnProcessed  = "SUPPLY_RETURN_PROCESSED"
	EventTypeReturnAccepted   = "SUPPLY_RETURN_ACCEPTED"
	EventTypePaymentRecorded  = "SUPPLY_PAYMENT_RECORDED"
	EventTypeOrderCancelled   = "SUPPLY_ORDER_CANCELLED"
	EventTypeOrderDeleted     = "SUPPLY_ORDER_DELETED"
	EventTypeActivityRecorded = "ACTIVITY_RECORDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a supply order is placed
type OrderCreatedEvent struct {
	BaseEvent
	OrderID            int64           `json:"order_id"`
	StoreID            int64           `json:"store_id"`
	CustomerID         int64           `json:"customer_id"`
	TotalSuppliedValue int64           `json:"total_supplied_value"`
	Items              []EventItemData `json:"items"`
}

// ReturnProcessedEvent published when a return is recorded against an order
type ReturnProcessedEvent struct {
	BaseEvent
	OrderID  int64            `json:"order_id"`
	ReturnID int64            `json:"return_id"`
	Status   string           `json:"status"`
	Entries  []EventEntryData `json:"entries"`
}

// ReturnAcceptedEvent published when returned goods are accepted into stock
type ReturnAcceptedEvent struct {
	BaseEvent
	OrderID      int64            `json:"order_id"`
	AcceptanceID int64            `json:"acceptance_id"`
	StoreID      int64            `json:"store_id"`
	Status       string           `json:"status"`
	Entries      []EventEntryData `json:"entries"`
}

// PaymentRecordedEvent published when a payment is committed
type PaymentRecordedEvent struct {
	BaseEvent
	OrderID          int64  `json:"order_id"`
	PaymentID        int64  `json:"payment_id"`
	Amount           int64  `json:"amount"`
	Method           string `json:"method"`
	RemainingBalance int64  `json:"remaining_balance"`
	Status           string `json:"status"`
}

// OrderCancelledEvent published when an order is voided
type OrderCancelledEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

// OrderDeletedEvent published when an order and its history are removed
type OrderDeletedEvent struct {
	BaseEvent
	OrderID   int64 `json:"order_id"`
	StoreID   int64 `json:"store_id"`
	DeletedBy int64 `json:"deleted_by"`
}

// ActivityRecordedEvent carries a fire-and-forget audit trail entry
type ActivityRecordedEvent struct {
	BaseEvent
	ActivityType string `json:"activity_type"`
	Description  string `json:"description"`
	Metadata     string `json:"metadata,omitempty"`
}

// EventItemData represents item data in events
type EventItemData struct {
	ItemID    int64 `json:"item_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// EventEntryData represents a return or acceptance line in events
type EventEntryData struct {
	ItemID    int64 `json:"item_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

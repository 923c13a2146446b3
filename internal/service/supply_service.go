package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supply-service/internal/broker"
	"supply-service/internal/models"
	"supply-service/internal/reconcile"
	"supply-service/internal/store"
	"supply-service/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrInvalidTransition rejects a mutation on a terminal order, or deletion
// of a completed order.
var ErrInvalidTransition = errors.New("invalid order transition")

// ErrCollaboratorUnavailable wraps failures of the inventory collaborator.
// Acceptance aggregates commit regardless; the outbox sweep retries the
// credit, so this error is logged rather than returned from AcceptReturn.
var ErrCollaboratorUnavailable = errors.New("inventory collaborator unavailable")

// SupplyService orchestrates the supply-order lifecycle. Every mutation runs
// as one per-order transaction: read current aggregates, validate, apply the
// event, recompute the derived status, commit.
type SupplyService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	inventory      *InventoryClient
	logger         *zap.Logger
}

// NewSupplyService creates a new supply order service
func NewSupplyService(
	store *store.Store,
	eventPublisher *broker.EventPublisher,
	inventory *InventoryClient,
) *SupplyService {
	return &SupplyService{
		store:          store,
		eventPublisher: eventPublisher,
		inventory:      inventory,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create a supply order
type CreateOrderRequest struct {
	StoreID            int64              `json:"store_id" binding:"required"`
	CustomerID         int64              `json:"customer_id" binding:"required"`
	CreatedBy          int64              `json:"created_by" binding:"required"`
	SupplyDate         *time.Time         `json:"supply_date,omitempty"`
	ExpectedReturnDate *time.Time         `json:"expected_return_date,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	Items              []OrderItemRequest `json:"items" binding:"required,min=1"`
}

// OrderItemRequest represents one product line on a new order
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
	UnitPrice int64 `json:"unit_price" binding:"required,min=1"`
}

// ReturnEntryRequest represents one line of a return event
type ReturnEntryRequest struct {
	ItemID    int64  `json:"item_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Condition string `json:"condition" binding:"required"`
	Reason    string `json:"reason,omitempty"`
}

// AcceptanceEntryRequest represents one line of an acceptance event
type AcceptanceEntryRequest struct {
	ItemID   int64 `json:"item_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// ProcessReturnRequest represents a return event against an order
type ProcessReturnRequest struct {
	ProcessedBy int64                `json:"processed_by" binding:"required"`
	Notes       string               `json:"notes,omitempty"`
	Entries     []ReturnEntryRequest `json:"entries" binding:"required,min=1"`
}

// AcceptReturnRequest represents an acceptance event against an order
type AcceptReturnRequest struct {
	ProcessedBy int64                    `json:"processed_by" binding:"required"`
	Notes       string                   `json:"notes,omitempty"`
	Entries     []AcceptanceEntryRequest `json:"entries" binding:"required,min=1"`
}

// ProcessPaymentRequest represents a payment against an order
type ProcessPaymentRequest struct {
	Amount     int64  `json:"amount" binding:"required,min=1"`
	Method     string `json:"method" binding:"required"`
	ReceivedBy int64  `json:"received_by" binding:"required"`
	Notes      string `json:"notes,omitempty"`
}

// CreateOrder places a new supply order. Prices are snapshotted on the
// items and the supplied-value projection is fixed here; the initial status
// is always supplied.
func (s *SupplyService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.OrderView, error) {
	ctx, span := util.StartSpan(ctx, "SupplyService.CreateOrder")
	defer span.End()

	if len(req.Items) == 0 {
		util.MutationsRejectedTotal.WithLabelValues("no_items").Inc()
		return nil, fmt.Errorf("%w: order needs at least one item", reconcile.ErrInvalidQuantity)
	}

	items := make([]models.SupplyOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 || it.UnitPrice <= 0 {
			util.MutationsRejectedTotal.WithLabelValues("invalid_item").Inc()
			return nil, fmt.Errorf("%w: product %d: quantity and unit price must be positive",
				reconcile.ErrInvalidQuantity, it.ProductID)
		}
		items = append(items, models.SupplyOrderItem{
			ProductID:        it.ProductID,
			UnitPrice:        it.UnitPrice,
			QuantitySupplied: it.Quantity,
		})
	}

	supplyDate := time.Now()
	if req.SupplyDate != nil {
		supplyDate = *req.SupplyDate
	}

	order := &models.SupplyOrder{
		StoreID:            req.StoreID,
		CustomerID:         req.CustomerID,
		CreatedBy:          req.CreatedBy,
		SupplyDate:         supplyDate,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Notes:              req.Notes,
		Status:             models.StatusSupplied,
		TotalSuppliedValue: reconcile.TotalSuppliedValue(items),
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		util.MutationsRejectedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create supply order: %w", err)
	}

	util.SupplyOrdersCreatedTotal.Inc()
	s.logger.Info("Supply order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int64("total_supplied_value", order.TotalSuppliedValue))

	eventItems := make([]models.EventItemData, len(items))
	for i, it := range items {
		eventItems[i] = models.EventItemData{
			ItemID:    it.ID,
			ProductID: it.ProductID,
			Quantity:  it.QuantitySupplied,
			UnitPrice: it.UnitPrice,
		}
	}
	s.publish(ctx, func() error {
		return s.eventPublisher.PublishOrderCreated(ctx, &models.OrderCreatedEvent{
			BaseEvent:          s.baseEvent(models.EventTypeOrderCreated),
			OrderID:            order.ID,
			StoreID:            order.StoreID,
			CustomerID:         order.CustomerID,
			TotalSuppliedValue: order.TotalSuppliedValue,
			Items:              eventItems,
		})
	})
	s.recordActivity(ctx, models.EventTypeOrderCreated,
		fmt.Sprintf("supply order %d created for customer %d", order.ID, order.CustomerID),
		fmt.Sprintf(`{"order_id":%d,"store_id":%d}`, order.ID, order.StoreID))

	return s.GetOrder(ctx, order.ID)
}

// ProcessReturn records a return event. Every entry is validated against the
// current counters before anything is applied; the event, the counter bumps
// and the recomputed status commit in one transaction.
func (s *SupplyService) ProcessReturn(ctx context.Context, orderID int64, req *ProcessReturnRequest) (*models.OrderView, error) {
	ctx, span := util.StartSpan(ctx, "SupplyService.ProcessReturn")
	defer span.End()

	for _, e := range req.Entries {
		if !models.ValidCondition(e.Condition) {
			util.MutationsRejectedTotal.WithLabelValues("invalid_condition").Inc()
			return nil, fmt.Errorf("%w: unknown condition %q", reconcile.ErrInvalidQuantity, e.Condition)
		}
	}

	ret := &models.SupplyReturn{
		OrderID:     orderID,
		ProcessedBy: req.ProcessedBy,
		Notes:       req.Notes,
	}
	var newStatus string
	var eventEntries []models.EventEntryData

	err := s.mutateOrder(ctx, orderID, func(tx *sqlx.Tx, order *models.SupplyOrder, items []models.SupplyOrderItem) error {
		lines := make([]reconcile.ReturnLine, len(req.Entries))
		for i, e := range req.Entries {
			lines[i] = reconcile.ReturnLine{ItemID: e.ItemID, Quantity: e.Quantity}
		}
		if err := reconcile.ValidateReturnEntries(items, lines); err != nil {
			util.MutationsRejectedTotal.WithLabelValues("invalid_quantity").Inc()
			return err
		}

		ret.Entries = make([]models.SupplyReturnEntry, len(req.Entries))
		for i, e := range req.Entries {
			ret.Entries[i] = models.SupplyReturnEntry{
				ItemID:    e.ItemID,
				Quantity:  e.Quantity,
				Condition: e.Condition,
				Reason:    e.Reason,
			}
		}
		if err := s.store.InsertReturnTx(ctx, tx, ret); err != nil {
			return err
		}

		updated := reconcile.ApplyReturn(items, lines)
		status, err := s.rederiveStatusTx(ctx, tx, order, updated)
		if err != nil {
			return err
		}
		newStatus = status

		eventEntries = entryEventData(updated, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.ReturnsProcessedTotal.Inc()
	s.logger.Info("Return processed",
		zap.Int64("order_id", orderID),
		zap.Int64("return_id", ret.ID),
		zap.String("status", newStatus))

	s.publish(ctx, func() error {
		return s.eventPublisher.PublishReturnProcessed(ctx, &models.ReturnProcessedEvent{
			BaseEvent: s.baseEvent(models.EventTypeReturnProcessed),
			OrderID:   orderID,
			ReturnID:  ret.ID,
			Status:    newStatus,
			Entries:   eventEntries,
		})
	})
	s.recordActivity(ctx, models.EventTypeReturnProcessed,
		fmt.Sprintf("return %d processed on supply order %d", ret.ID, orderID),
		fmt.Sprintf(`{"order_id":%d,"return_id":%d}`, orderID, ret.ID))

	return s.GetOrder(ctx, orderID)
}

// AcceptReturn records an acceptance event: returned goods quality-checked
// back into sellable stock. The aggregate update and one stock-credit outbox
// row per entry commit atomically; the inventory collaborator is credited
// after commit, at-least-once, idempotent per acceptance entry id. A
// collaborator outage therefore never loses a credit and never rolls back
// the acceptance.
func (s *SupplyService) AcceptReturn(ctx context.Context, orderID int64, req *AcceptReturnRequest) (*models.OrderView, error) {
	ctx, span := util.StartSpan(ctx, "SupplyService.AcceptReturn")
	defer span.End()

	acc := &models.SupplyAcceptance{
		OrderID:     orderID,
		ProcessedBy: req.ProcessedBy,
		Notes:       req.Notes,
	}
	var newStatus string
	var storeID int64
	var eventEntries []models.EventEntryData

	err := s.mutateOrder(ctx, orderID, func(tx *sqlx.Tx, order *models.SupplyOrder, items []models.SupplyOrderItem) error {
		lines := make([]reconcile.ReturnLine, len(req.Entries))
		for i, e := range req.Entries {
			lines[i] = reconcile.ReturnLine{ItemID: e.ItemID, Quantity: e.Quantity}
		}
		if err := reconcile.ValidateAcceptanceEntries(items, lines); err != nil {
			util.MutationsRejectedTotal.WithLabelValues("invalid_quantity").Inc()
			return err
		}

		productByItem := make(map[int64]int64, len(items))
		for i := range items {
			productByItem[items[i].ID] = items[i].ProductID
		}

		acc.Entries = make([]models.SupplyAcceptanceEntry, len(req.Entries))
		for i, e := range req.Entries {
			acc.Entries[i] = models.SupplyAcceptanceEntry{ItemID: e.ItemID, Quantity: e.Quantity}
		}
		if err := s.store.InsertAcceptanceTx(ctx, tx, acc, order.StoreID, productByItem); err != nil {
			return err
		}

		updated := reconcile.ApplyAcceptance(items, lines)
		status, err := s.rederiveStatusTx(ctx, tx, order, updated)
		if err != nil {
			return err
		}
		newStatus = status
		storeID = order.StoreID

		eventEntries = entryEventData(updated, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.AcceptancesProcessedTotal.Inc()
	if newStatus == models.StatusCompleted {
		util.SupplyOrdersCompletedTotal.Inc()
	}
	s.logger.Info("Return accepted",
		zap.Int64("order_id", orderID),
		zap.Int64("acceptance_id", acc.ID),
		zap.String("status", newStatus))

	// Fast path: credit stock inline. Failures are left for the outbox
	// sweep, the credit is deduplicated by entry id either way.
	for _, e := range acc.Entries {
		productID := productIDFor(eventEntries, e.ItemID)
		if err := s.inventory.IncrementStock(ctx, e.ID, productID, storeID, e.Quantity); err != nil {
			s.logger.Warn("Inline stock credit failed, outbox sweep will retry",
				zap.Int64("entry_id", e.ID),
				zap.Error(err))
			continue
		}
		if err := s.store.MarkStockCreditedByEntry(ctx, e.ID); err != nil {
			s.logger.Error("Failed to confirm stock credit", zap.Int64("entry_id", e.ID), zap.Error(err))
		}
	}

	s.publish(ctx, func() error {
		return s.eventPublisher.PublishReturnAccepted(ctx, &models.ReturnAcceptedEvent{
			BaseEvent:    s.baseEvent(models.EventTypeReturnAccepted),
			OrderID:      orderID,
			AcceptanceID: acc.ID,
			StoreID:      storeID,
			Status:       newStatus,
			Entries:      eventEntries,
		})
	})
	s.recordActivity(ctx, models.EventTypeReturnAccepted,
		fmt.Sprintf("acceptance %d processed on supply order %d", acc.ID, orderID),
		fmt.Sprintf(`{"order_id":%d,"acceptance_id":%d}`, orderID, acc.ID))

	return s.GetOrder(ctx, orderID)
}

// ProcessPayment commits a payment against the balance owed at transaction
// time, never against a stale snapshot.
func (s *SupplyService) ProcessPayment(ctx context.Context, orderID int64, req *ProcessPaymentRequest) (*models.OrderView, error) {
	ctx, span := util.StartSpan(ctx, "SupplyService.ProcessPayment")
	defer span.End()

	if !models.ValidPaymentMethod(req.Method) {
		util.MutationsRejectedTotal.WithLabelValues("invalid_method").Inc()
		return nil, fmt.Errorf("%w: unknown payment method %q", reconcile.ErrExceedsBalance, req.Method)
	}

	payment := &models.SupplyPayment{
		OrderID:    orderID,
		Amount:     req.Amount,
		Method:     req.Method,
		ReceivedBy: req.ReceivedBy,
		Notes:      req.Notes,
	}
	var newStatus string
	var remaining int64

	err := s.mutateOrder(ctx, orderID, func(tx *sqlx.Tx, order *models.SupplyOrder, items []models.SupplyOrderItem) error {
		payments, err := s.store.GetPaymentsTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		balance := reconcile.ComputeBalance(items, payments)
		if err := reconcile.ValidatePayment(balance, req.Amount); err != nil {
			util.MutationsRejectedTotal.WithLabelValues("exceeds_balance").Inc()
			return err
		}

		if err := s.store.InsertPaymentTx(ctx, tx, payment); err != nil {
			return err
		}

		totals := reconcile.OrderTotals(items)
		remaining = balance.RemainingBalance - req.Amount
		newStatus = reconcile.DeriveStatus(totals, remaining, order.Status == models.StatusCancelled)
		return s.store.UpdateOrderStatusTx(ctx, tx, orderID, newStatus)
	})
	if err != nil {
		return nil, err
	}

	util.PaymentsRecordedTotal.Inc()
	if newStatus == models.StatusCompleted {
		util.SupplyOrdersCompletedTotal.Inc()
	}
	s.logger.Info("Payment recorded",
		zap.Int64("order_id", orderID),
		zap.Int64("payment_id", payment.ID),
		zap.Int64("amount", req.Amount),
		zap.Int64("remaining_balance", remaining),
		zap.String("status", newStatus))

	s.publish(ctx, func() error {
		return s.eventPublisher.PublishPaymentRecorded(ctx, &models.PaymentRecordedEvent{
			BaseEvent:        s.baseEvent(models.EventTypePaymentRecorded),
			OrderID:          orderID,
			PaymentID:        payment.ID,
			Amount:           req.Amount,
			Method:           req.Method,
			RemainingBalance: remaining,
			Status:           newStatus,
		})
	})
	s.recordActivity(ctx, models.EventTypePaymentRecorded,
		fmt.Sprintf("payment of %d recorded on supply order %d", req.Amount, orderID),
		fmt.Sprintf(`{"order_id":%d,"payment_id":%d,"amount":%d}`, orderID, payment.ID, req.Amount))

	return s.GetOrder(ctx, orderID)
}

// CancelOrder voids a non-terminal order. Cancelled is terminal; no further
// mutations are accepted.
func (s *SupplyService) CancelOrder(ctx context.Context, orderID int64) (*models.OrderView, error) {
	ctx, span := util.StartSpan(ctx, "SupplyService.CancelOrder")
	defer span.End()

	err := s.store.WithOrderTx(ctx, orderID, func(tx *sqlx.Tx) error {
		order, err := s.store.GetOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if models.IsTerminalStatus(order.Status) {
			util.MutationsRejectedTotal.WithLabelValues("terminal").Inc()
			return fmt.Errorf("%w: order %d is %s", ErrInvalidTransition, orderID, order.Status)
		}
		return s.store.UpdateOrderStatusTx(ctx, tx, orderID, models.StatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	util.SupplyOrdersCancelledTotal.Inc()
	s.logger.Info("Supply order cancelled", zap.Int64("order_id", orderID))

	s.publish(ctx, func() error {
		return s.eventPublisher.PublishOrderCancelled(ctx, &models.OrderCancelledEvent{
			BaseEvent: s.baseEvent(models.EventTypeOrderCancelled),
			OrderID:   orderID,
		})
	})
	s.recordActivity(ctx, models.EventTypeOrderCancelled,
		fmt.Sprintf("supply order %d cancelled", orderID),
		fmt.Sprintf(`{"order_id":%d}`, orderID))

	return s.GetOrder(ctx, orderID)
}

// DeleteOrder removes a non-completed order with its items and full event
// history. The removal is always written to the audit trail.
func (s *SupplyService) DeleteOrder(ctx context.Context, orderID, deletedBy int64) error {
	ctx, span := util.StartSpan(ctx, "SupplyService.DeleteOrder")
	defer span.End()

	var storeID int64
	err := s.store.WithOrderTx(ctx, orderID, func(tx *sqlx.Tx) error {
		order, err := s.store.GetOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := checkDeletable(order); err != nil {
			util.MutationsRejectedTotal.WithLabelValues("delete_completed").Inc()
			return err
		}
		storeID = order.StoreID
		return s.store.DeleteOrderTx(ctx, tx, orderID)
	})
	if err != nil {
		return err
	}

	util.SupplyOrdersDeletedTotal.Inc()
	s.logger.Info("Supply order deleted",
		zap.Int64("order_id", orderID),
		zap.Int64("deleted_by", deletedBy))

	s.publish(ctx, func() error {
		return s.eventPublisher.PublishOrderDeleted(ctx, &models.OrderDeletedEvent{
			BaseEvent: s.baseEvent(models.EventTypeOrderDeleted),
			OrderID:   orderID,
			StoreID:   storeID,
			DeletedBy: deletedBy,
		})
	})
	s.recordActivity(ctx, models.EventTypeOrderDeleted,
		fmt.Sprintf("supply order %d deleted by staff %d", orderID, deletedBy),
		fmt.Sprintf(`{"order_id":%d,"deleted_by":%d}`, orderID, deletedBy))

	return nil
}

// GetOrder returns the order with items, full event history and the derived
// monetary view. Counters are cross-checked against a replay of the history;
// drift is logged, never silently patched.
func (s *SupplyService) GetOrder(ctx context.Context, orderID int64) (*models.OrderView, error) {
	view, err := s.store.GetOrderView(ctx, orderID)
	if err != nil {
		return nil, err
	}

	balance := reconcile.ComputeBalance(view.Items, view.Payments)
	view.AmountOwed = balance.AmountOwed
	view.TotalPaid = balance.TotalPaid
	view.RemainingBalance = balance.RemainingBalance
	view.Overpayment = balance.Overpayment()

	replayed := reconcile.Replay(view.Items, view.Returns, view.Acceptances)
	for i := range view.Items {
		if view.Items[i].QuantityReturned != replayed[i].QuantityReturned ||
			view.Items[i].QuantityAccepted != replayed[i].QuantityAccepted {
			s.logger.Error("Stored counters drifted from event history",
				zap.Int64("order_id", orderID),
				zap.Int64("item_id", view.Items[i].ID))
		}
	}

	return view, nil
}

// ListPendingReturns lists orders in a store with goods awaiting acceptance.
func (s *SupplyService) ListPendingReturns(ctx context.Context, storeID int64) ([]models.PendingReturn, error) {
	return s.store.ListPendingReturns(ctx, storeID)
}

// mutateOrder is the shared transactional skeleton for return, acceptance
// and payment mutations: lock the order, reject terminal states, load the
// items, run the mutation.
func (s *SupplyService) mutateOrder(ctx context.Context, orderID int64, fn func(tx *sqlx.Tx, order *models.SupplyOrder, items []models.SupplyOrderItem) error) error {
	start := time.Now()
	defer func() {
		util.OrderTxLatency.Observe(time.Since(start).Seconds())
	}()

	err := s.store.WithOrderTx(ctx, orderID, func(tx *sqlx.Tx) error {
		order, err := s.store.GetOrderTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if models.IsTerminalStatus(order.Status) {
			util.MutationsRejectedTotal.WithLabelValues("terminal").Inc()
			return fmt.Errorf("%w: order %d is %s", ErrInvalidTransition, orderID, order.Status)
		}

		items, err := s.store.GetOrderItemsTx(ctx, tx, orderID)
		if err != nil {
			return err
		}

		return fn(tx, order, items)
	})
	if errors.Is(err, store.ErrContention) {
		util.OrderTxContentionTotal.Inc()
	}
	return err
}

// rederiveStatusTx recomputes the derived status from the post-mutation
// items and the transaction-time balance, and persists the cache.
func (s *SupplyService) rederiveStatusTx(ctx context.Context, tx *sqlx.Tx, order *models.SupplyOrder, items []models.SupplyOrderItem) (string, error) {
	if err := reconcile.CheckConservation(items); err != nil {
		return "", err
	}

	payments, err := s.store.GetPaymentsTx(ctx, tx, order.ID)
	if err != nil {
		return "", err
	}

	totals := reconcile.OrderTotals(items)
	balance := reconcile.ComputeBalance(items, payments)
	status := reconcile.DeriveStatus(totals, balance.RemainingBalance, order.Status == models.StatusCancelled)

	if err := s.store.UpdateOrderStatusTx(ctx, tx, order.ID, status); err != nil {
		return "", err
	}
	return status, nil
}

// checkDeletable enforces the deletion rule: a completed order is settled
// history and can never be removed; anything else may be, given an elevated
// role upstream.
func checkDeletable(order *models.SupplyOrder) error {
	if order.Status == models.StatusCompleted {
		return fmt.Errorf("%w: completed order %d cannot be deleted", ErrInvalidTransition, order.ID)
	}
	return nil
}

func (s *SupplyService) baseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// publish sends a domain event after commit; a broker outage is logged and
// never fails the committed operation.
func (s *SupplyService) publish(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Error("Failed to publish event", zap.Error(err))
	}
}

// recordActivity writes to the audit trail, fire and forget.
func (s *SupplyService) recordActivity(ctx context.Context, eventType, description, metadata string) {
	event := &models.ActivityRecordedEvent{
		BaseEvent:    s.baseEvent(models.EventTypeActivityRecorded),
		ActivityType: eventType,
		Description:  description,
		Metadata:     metadata,
	}
	if err := s.eventPublisher.PublishActivityRecorded(ctx, event); err != nil {
		s.logger.Warn("Failed to record activity, writing directly",
			zap.String("type", eventType),
			zap.Error(err))
		if err := s.store.InsertActivity(ctx, eventType, description, metadata); err != nil {
			s.logger.Error("Failed to write activity entry", zap.Error(err))
		}
	}
}

func entryEventData(items []models.SupplyOrderItem, lines []reconcile.ReturnLine) []models.EventEntryData {
	productByItem := make(map[int64]int64, len(items))
	for i := range items {
		productByItem[items[i].ID] = items[i].ProductID
	}
	out := make([]models.EventEntryData, len(lines))
	for i, l := range lines {
		out[i] = models.EventEntryData{
			ItemID:    l.ItemID,
			ProductID: productByItem[l.ItemID],
			Quantity:  l.Quantity,
		}
	}
	return out
}

func productIDFor(entries []models.EventEntryData, itemID int64) int64 {
	for _, e := range entries {
		if e.ItemID == itemID {
			return e.ProductID
		}
	}
	return 0
}

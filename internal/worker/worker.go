package worker

import (
	"context"
	"time"

	"supply-service/internal/broker"
	"supply-service/internal/models"
	"supply-service/internal/service"
	"supply-service/internal/store"
	"supply-service/internal/util"

	"go.uber.org/zap"
)

// StockCreditWorker sweeps the stock-credit outbox: acceptance entries whose
// inventory credit has not been confirmed yet. Credits are idempotent per
// entry id, so sweeping a row the inline fast path already applied is safe.
type StockCreditWorker struct {
	store     *store.Store
	inventory *service.InventoryClient
	every     time.Duration
	batch     int
	logger    *zap.Logger
}

// NewStockCreditWorker creates a new outbox sweep worker
func NewStockCreditWorker(store *store.Store, inventory *service.InventoryClient, every time.Duration, batch int) *StockCreditWorker {
	return &StockCreditWorker{
		store:     store,
		inventory: inventory,
		every:     every,
		batch:     batch,
		logger:    util.GetLogger(),
	}
}

// Start runs the sweep loop until the context is cancelled.
func (w *StockCreditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock credit worker", zap.Duration("every", w.every))

	ticker := time.NewTicker(w.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stock credit worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StockCreditWorker) sweep(ctx context.Context) {
	credits, err := w.store.ListUncreditedStockCredits(ctx, w.batch)
	if err != nil {
		w.logger.Error("Failed to list uncredited stock credits", zap.Error(err))
		return
	}

	util.StockCreditOutboxPending.Set(float64(len(credits)))
	if len(credits) == 0 {
		return
	}

	w.logger.Info("Sweeping stock credit outbox", zap.Int("pending", len(credits)))

	for _, credit := range credits {
		err := w.inventory.IncrementStock(ctx, credit.EntryID, credit.ProductID, credit.StoreID, credit.Quantity)
		if err != nil {
			w.logger.Warn("Stock credit retry failed",
				zap.Int64("credit_id", credit.ID),
				zap.Int64("entry_id", credit.EntryID),
				zap.Error(err))
			continue
		}
		if err := w.store.MarkStockCredited(ctx, credit.ID); err != nil {
			w.logger.Error("Failed to confirm swept stock credit",
				zap.Int64("credit_id", credit.ID),
				zap.Error(err))
		}
	}
}

// ActivityWorker consumes ActivityRecorded events and persists the audit
// trail, deduplicated by event id.
type ActivityWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewActivityWorker creates a new activity trail worker
func NewActivityWorker(consumer *broker.Consumer, st *store.Store) *ActivityWorker {
	w := &ActivityWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnActivityRecorded(w.handleActivity)
	w.eventHandler = eventHandler

	return w
}

func (w *ActivityWorker) handleActivity(ctx context.Context, event *models.ActivityRecordedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Debug("Activity event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := w.store.InsertActivity(ctx, event.ActivityType, event.Description, event.Metadata); err != nil {
		return err
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

// Start starts the worker
func (w *ActivityWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting activity worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ActivityWorker) Stop() error {
	w.logger.Info("Stopping activity worker")
	return w.consumer.Close()
}

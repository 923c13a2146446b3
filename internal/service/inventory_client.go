package service

import (
	"context"
	"fmt"

	"supply-service/internal/redisclient"
	"supply-service/internal/store"
	"supply-service/internal/util"

	"go.uber.org/zap"
)

// InventoryClient is the adapter for the inventory collaborator. Stock lives
// outside this engine's transaction boundary: credits are applied
// at-least-once and deduplicated by acceptance entry id, in redis and in the
// durable stock table both.
type InventoryClient struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewInventoryClient creates a new inventory client
func NewInventoryClient(store *store.Store, redis *redisclient.Client) *InventoryClient {
	return &InventoryClient{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// IncrementStock credits quantity back to sellable stock for a product at a
// store, keyed by the acceptance entry id. The redis mirror decides whether
// this entry was already applied; only a first application touches the
// durable stock table, so retries are safe.
func (ic *InventoryClient) IncrementStock(ctx context.Context, entryID, productID, storeID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "InventoryClient.IncrementStock")
	defer span.End()

	applied, err := ic.redis.CreditStock(ctx, entryID, productID, storeID, quantity)
	if err != nil {
		util.StockCreditsFailedTotal.WithLabelValues("redis").Inc()
		return fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}

	if !applied {
		ic.logger.Debug("Stock credit already applied",
			zap.Int64("entry_id", entryID),
			zap.Int64("product_id", productID))
		return nil
	}

	if err := ic.store.IncrementStock(ctx, productID, storeID, quantity); err != nil {
		util.StockCreditsFailedTotal.WithLabelValues("db").Inc()
		// Undo the mirror so the outbox retry can reapply the whole credit.
		if rerr := ic.redis.RevertCredit(ctx, entryID, productID, storeID, quantity); rerr != nil {
			ic.logger.Error("Failed to revert mirrored credit",
				zap.Int64("entry_id", entryID),
				zap.Error(rerr))
		}
		return fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}

	util.StockCreditsTotal.Inc()
	ic.logger.Info("Stock credited",
		zap.Int64("entry_id", entryID),
		zap.Int64("product_id", productID),
		zap.Int64("store_id", storeID),
		zap.Int("quantity", quantity))
	return nil
}

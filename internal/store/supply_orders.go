package store

import (
	"context"
	"database/sql"
	"fmt"

	"supply-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrder inserts a new supply order with its items in one transaction.
func (s *Store) CreateOrder(ctx context.Context, order *models.SupplyOrder, items []models.SupplyOrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO supply_orders
			(store_id, customer_id, created_by, supply_date, expected_return_date, notes, status, total_supplied_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = tx.GetContext(ctx, order, query,
		order.StoreID, order.CustomerID, order.CreatedBy, order.SupplyDate,
		order.ExpectedReturnDate, order.Notes, order.Status, order.TotalSuppliedValue)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO supply_order_items (order_id, product_id, unit_price, quantity_supplied)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.GetContext(ctx, &items[i].ID, itemQuery,
			order.ID, items[i].ProductID, items[i].UnitPrice, items[i].QuantitySupplied); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderTx loads the order row inside an open per-order transaction.
func (s *Store) GetOrderTx(ctx context.Context, tx *sqlx.Tx, orderID int64) (*models.SupplyOrder, error) {
	var order models.SupplyOrder
	err := tx.GetContext(ctx, &order, "SELECT * FROM supply_orders WHERE id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItemsTx loads the order's items inside an open transaction.
func (s *Store) GetOrderItemsTx(ctx context.Context, tx *sqlx.Tx, orderID int64) ([]models.SupplyOrderItem, error) {
	var items []models.SupplyOrderItem
	err := tx.SelectContext(ctx, &items,
		"SELECT * FROM supply_order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetPaymentsTx loads the order's payments inside an open transaction.
func (s *Store) GetPaymentsTx(ctx context.Context, tx *sqlx.Tx, orderID int64) ([]models.SupplyPayment, error) {
	var payments []models.SupplyPayment
	err := tx.SelectContext(ctx, &payments,
		"SELECT * FROM supply_payments WHERE order_id = $1 ORDER BY id", orderID)
	return payments, err
}

// InsertReturnTx appends a return event with its entries and bumps the
// affected items' returned counters.
func (s *Store) InsertReturnTx(ctx context.Context, tx *sqlx.Tx, ret *models.SupplyReturn) error {
	query := `
		INSERT INTO supply_returns (order_id, processed_by, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := tx.GetContext(ctx, ret, query, ret.OrderID, ret.ProcessedBy, ret.Notes); err != nil {
		return fmt.Errorf("failed to insert return: %w", err)
	}

	entryQuery := `
		INSERT INTO supply_return_entries (return_id, item_id, quantity, condition, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for i := range ret.Entries {
		e := &ret.Entries[i]
		e.ReturnID = ret.ID
		if err := tx.GetContext(ctx, &e.ID, entryQuery, ret.ID, e.ItemID, e.Quantity, e.Condition, e.Reason); err != nil {
			return fmt.Errorf("failed to insert return entry: %w", err)
		}
		if err := s.bumpReturnedTx(ctx, tx, e.ItemID, e.Quantity); err != nil {
			return err
		}
	}

	return nil
}

// InsertAcceptanceTx appends an acceptance event with its entries, bumps the
// accepted counters and writes one stock-credit outbox row per entry. The
// outbox row commits atomically with the aggregate update, so a credit is
// never lost even when the inventory collaborator is down.
func (s *Store) InsertAcceptanceTx(ctx context.Context, tx *sqlx.Tx, acc *models.SupplyAcceptance, storeID int64, productByItem map[int64]int64) error {
	query := `
		INSERT INTO supply_acceptances (order_id, processed_by, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := tx.GetContext(ctx, acc, query, acc.OrderID, acc.ProcessedBy, acc.Notes); err != nil {
		return fmt.Errorf("failed to insert acceptance: %w", err)
	}

	entryQuery := `
		INSERT INTO supply_acceptance_entries (acceptance_id, item_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`

	creditQuery := `
		INSERT INTO stock_credits (entry_id, order_id, store_id, product_id, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	for i := range acc.Entries {
		e := &acc.Entries[i]
		e.AcceptanceID = acc.ID
		if err := tx.GetContext(ctx, &e.ID, entryQuery, acc.ID, e.ItemID, e.Quantity); err != nil {
			return fmt.Errorf("failed to insert acceptance entry: %w", err)
		}
		if err := s.bumpAcceptedTx(ctx, tx, e.ItemID, e.Quantity); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, creditQuery, e.ID, acc.OrderID, storeID, productByItem[e.ItemID], e.Quantity); err != nil {
			return fmt.Errorf("failed to insert stock credit: %w", err)
		}
	}

	return nil
}

// InsertPaymentTx appends a payment event.
func (s *Store) InsertPaymentTx(ctx context.Context, tx *sqlx.Tx, payment *models.SupplyPayment) error {
	query := `
		INSERT INTO supply_payments (order_id, amount, method, received_by, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	if err := tx.GetContext(ctx, payment, query,
		payment.OrderID, payment.Amount, payment.Method, payment.ReceivedBy, payment.Notes); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// UpdateOrderStatusTx persists the derived status cache.
func (s *Store) UpdateOrderStatusTx(ctx context.Context, tx *sqlx.Tx, orderID int64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE supply_orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// DeleteOrderTx removes the order and cascades over its items and full
// event history.
func (s *Store) DeleteOrderTx(ctx context.Context, tx *sqlx.Tx, orderID int64) error {
	statements := []string{
		"DELETE FROM stock_credits WHERE order_id = $1",
		"DELETE FROM supply_return_entries WHERE return_id IN (SELECT id FROM supply_returns WHERE order_id = $1)",
		"DELETE FROM supply_returns WHERE order_id = $1",
		"DELETE FROM supply_acceptance_entries WHERE acceptance_id IN (SELECT id FROM supply_acceptances WHERE order_id = $1)",
		"DELETE FROM supply_acceptances WHERE order_id = $1",
		"DELETE FROM supply_payments WHERE order_id = $1",
		"DELETE FROM supply_order_items WHERE order_id = $1",
		"DELETE FROM supply_orders WHERE id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, orderID); err != nil {
			return fmt.Errorf("failed to delete order %d: %w", orderID, err)
		}
	}
	return nil
}

func (s *Store) bumpReturnedTx(ctx context.Context, tx *sqlx.Tx, itemID int64, quantity int) error {
	// The WHERE clause re-checks the bound under the row lock; the service
	// validates first, so zero rows here means a logic error upstream.
	res, err := tx.ExecContext(ctx, `
		UPDATE supply_order_items
		SET quantity_returned = quantity_returned + $1
		WHERE id = $2 AND quantity_returned + $1 <= quantity_supplied`,
		quantity, itemID)
	if err != nil {
		return fmt.Errorf("failed to update returned quantity: %w", err)
	}
	return requireOneRow(res, itemID)
}

func (s *Store) bumpAcceptedTx(ctx context.Context, tx *sqlx.Tx, itemID int64, quantity int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE supply_order_items
		SET quantity_accepted = quantity_accepted + $1
		WHERE id = $2 AND quantity_accepted + $1 <= quantity_returned`,
		quantity, itemID)
	if err != nil {
		return fmt.Errorf("failed to update accepted quantity: %w", err)
	}
	return requireOneRow(res, itemID)
}

func requireOneRow(res sql.Result, itemID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("item %d: counter update rejected by conservation check", itemID)
	}
	return nil
}

// GetOrderByID loads an order outside any transaction, for the read path.
func (s *Store) GetOrderByID(ctx context.Context, orderID int64) (*models.SupplyOrder, error) {
	var order models.SupplyOrder
	err := s.db.GetContext(ctx, &order, "SELECT * FROM supply_orders WHERE id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderView loads the order with items and full event history embedded.
func (s *Store) GetOrderView(ctx context.Context, orderID int64) (*models.OrderView, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	view := &models.OrderView{Order: *order}

	if err := s.db.SelectContext(ctx, &view.Items,
		"SELECT * FROM supply_order_items WHERE order_id = $1 ORDER BY id", orderID); err != nil {
		return nil, err
	}
	if err := s.db.SelectContext(ctx, &view.Payments,
		"SELECT * FROM supply_payments WHERE order_id = $1 ORDER BY id", orderID); err != nil {
		return nil, err
	}

	returns, err := s.getReturns(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view.Returns = returns

	acceptances, err := s.getAcceptances(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view.Acceptances = acceptances

	return view, nil
}

func (s *Store) getReturns(ctx context.Context, orderID int64) ([]models.SupplyReturn, error) {
	var returns []models.SupplyReturn
	err := s.db.SelectContext(ctx, &returns,
		"SELECT * FROM supply_returns WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	for i := range returns {
		err := s.db.SelectContext(ctx, &returns[i].Entries,
			"SELECT * FROM supply_return_entries WHERE return_id = $1 ORDER BY id", returns[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return returns, nil
}

func (s *Store) getAcceptances(ctx context.Context, orderID int64) ([]models.SupplyAcceptance, error) {
	var acceptances []models.SupplyAcceptance
	err := s.db.SelectContext(ctx, &acceptances,
		"SELECT * FROM supply_acceptances WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	for i := range acceptances {
		err := s.db.SelectContext(ctx, &acceptances[i].Entries,
			"SELECT * FROM supply_acceptance_entries WHERE acceptance_id = $1 ORDER BY id", acceptances[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return acceptances, nil
}

// ListPendingReturns lists orders in a store with goods returned but not
// yet accepted back into stock.
func (s *Store) ListPendingReturns(ctx context.Context, storeID int64) ([]models.PendingReturn, error) {
	var pending []models.PendingReturn
	err := s.db.SelectContext(ctx, &pending, `
		SELECT i.order_id,
		       COUNT(*) AS items_awaiting,
		       SUM(i.quantity_returned - i.quantity_accepted) AS quantity_pending
		FROM supply_order_items i
		JOIN supply_orders o ON o.id = i.order_id
		WHERE o.store_id = $1
		  AND o.status NOT IN ($2, $3)
		  AND i.quantity_returned > i.quantity_accepted
		GROUP BY i.order_id
		ORDER BY i.order_id`,
		storeID, models.StatusCompleted, models.StatusCancelled)
	return pending, err
}

// ListUncreditedStockCredits returns outbox rows whose stock increment has
// not yet been confirmed, oldest first.
func (s *Store) ListUncreditedStockCredits(ctx context.Context, limit int) ([]models.StockCredit, error) {
	var credits []models.StockCredit
	err := s.db.SelectContext(ctx, &credits,
		"SELECT * FROM stock_credits WHERE credited_at IS NULL ORDER BY id LIMIT $1", limit)
	return credits, err
}

// MarkStockCredited confirms one outbox row after the collaborator call
// succeeded.
func (s *Store) MarkStockCredited(ctx context.Context, creditID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE stock_credits SET credited_at = NOW() WHERE id = $1 AND credited_at IS NULL",
		creditID)
	return err
}

// MarkStockCreditedByEntry confirms the outbox row for an acceptance entry,
// used by the inline fast path right after commit.
func (s *Store) MarkStockCreditedByEntry(ctx context.Context, entryID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE stock_credits SET credited_at = NOW() WHERE entry_id = $1 AND credited_at IS NULL",
		entryID)
	return err
}

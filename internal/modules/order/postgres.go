package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sndev/marketplace-backend/internal/modules/suborder"
)

// postgresRepo persists orders in the orders/order_items tables and, at
// confirmation time, writes sub_orders in the same transaction. The
// single-active-cart invariant is additionally backed by a partial
// unique index on orders(user_id) WHERE status='CART'.
type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, user_id, status, payment_method, total, is_split, version, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, payment_method, total, is_split, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.UserID, o.Status, string(o.PaymentMethod), o.Total, o.IsSplit, o.Version, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) GetAll(ctx context.Context) ([]*Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) FindCartByUser(ctx context.Context, userID string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id=$1 AND status=$2`, userID, StatusCart))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) Save(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateOrderRow(ctx, tx, o); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return fmt.Errorf("clear order_items: %w", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	o.Version++
	return nil
}

func (r *postgresRepo) SaveSplit(ctx context.Context, o *Order, subOrders []*suborder.SubOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, sub := range subOrders {
		items, err := json.Marshal(sub.Items)
		if err != nil {
			return fmt.Errorf("encode sub_order items: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sub_orders (id, parent_order_id, seller_id, user_id, sub_total, status, items, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			sub.ID, sub.ParentOrderID, sub.SellerID, sub.UserID,
			sub.SubTotal, sub.Status, items, sub.CreatedAt, sub.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert sub_order: %w", err)
		}
	}

	if err := updateOrderRow(ctx, tx, o); err != nil {
		return err
	}
	// items carry the seller ids resolved during enrichment
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return fmt.Errorf("clear order_items: %w", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	o.Version++
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *postgresRepo) DeleteByUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE user_id=$1)`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE user_id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

// updateOrderRow writes the order row guarded by its version so a lost
// concurrent update surfaces as ErrVersionConflict instead of silently
// overwriting quantities or re-splitting.
func updateOrderRow(ctx context.Context, tx *sql.Tx, o *Order) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status=$1, payment_method=$2, total=$3, is_split=$4, version=version+1, updated_at=$5
		WHERE id=$6 AND version=$7`,
		o.Status, string(o.PaymentMethod), o.Total, o.IsSplit, time.Now().UTC(), o.ID, o.Version)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var v int64
		if err := tx.QueryRowContext(ctx, `SELECT version FROM orders WHERE id=$1`, o.ID).Scan(&v); err == sql.ErrNoRows {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, o *Order) error {
	for pos, item := range o.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, seller_id, quantity, unit_price, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, o.ID, item.ProductID, item.SellerID, item.Quantity, item.UnitPrice, pos)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}
	return nil
}

func scanOrder(row *sql.Row) (*Order, error) {
	o := &Order{}
	var payment string
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &payment, &o.Total,
		&o.IsSplit, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.PaymentMethod = PaymentMethod(payment)
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	byID := map[uuid.UUID]*Order{}
	var ids []uuid.UUID
	for rows.Next() {
		o := &Order{}
		var payment string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &payment, &o.Total,
			&o.IsSplit, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.PaymentMethod = PaymentMethod(payment)
		orders = append(orders, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	// one items query for the whole page instead of one per order
	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, seller_id, quantity, unit_price
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position ASC`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			return nil, err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return orders, itemRows.Err()
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, seller_id, quantity, unit_price
		FROM order_items WHERE order_id=$1 ORDER BY position ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(rows *sql.Rows) (*OrderItem, error) {
	item := &OrderItem{}
	var sellerID sql.NullString
	if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
		&sellerID, &item.Quantity, &item.UnitPrice); err != nil {
		return nil, err
	}
	if sellerID.Valid {
		item.SellerID = &sellerID.String
	}
	return item, nil
}

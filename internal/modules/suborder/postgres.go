package suborder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const subOrderColumns = `id, parent_order_id, seller_id, user_id, sub_total, status, items, created_at, updated_at`

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*SubOrder, error) {
	s, err := scanSubOrder(r.db.QueryRowContext(ctx, `
		SELECT `+subOrderColumns+` FROM sub_orders WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *postgresRepo) Update(ctx context.Context, s *SubOrder) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sub_orders SET status=$1, updated_at=$2 WHERE id=$3`,
		s.Status, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("update sub_order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListByParent(ctx context.Context, parentOrderID uuid.UUID) ([]*SubOrder, error) {
	return r.querySubOrders(ctx, `
		SELECT `+subOrderColumns+` FROM sub_orders
		WHERE parent_order_id=$1 ORDER BY created_at DESC`, parentOrderID)
}

func (r *postgresRepo) ListBySeller(ctx context.Context, sellerID string, status Status, limit, offset int) ([]*SubOrder, error) {
	query := `SELECT ` + subOrderColumns + ` FROM sub_orders WHERE seller_id=$1`
	args := []interface{}{sellerID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.querySubOrders(ctx, query, args...)
}

func (r *postgresRepo) CountBySeller(ctx context.Context, sellerID string, status Status) (int64, error) {
	query := `SELECT COUNT(*) FROM sub_orders WHERE seller_id=$1`
	args := []interface{}{sellerID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, status)
	}
	var total int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanSubOrder(row rowScanner) (*SubOrder, error) {
	s := &SubOrder{}
	var items []byte
	err := row.Scan(&s.ID, &s.ParentOrderID, &s.SellerID, &s.UserID,
		&s.SubTotal, &s.Status, &items, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &s.Items); err != nil {
			return nil, fmt.Errorf("decode sub_order items: %w", err)
		}
	}
	return s, nil
}

func (r *postgresRepo) querySubOrders(ctx context.Context, query string, args ...interface{}) ([]*SubOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subOrders []*SubOrder
	for rows.Next() {
		s, err := scanSubOrder(rows)
		if err != nil {
			return nil, err
		}
		subOrders = append(subOrders, s)
	}
	return subOrders, rows.Err()
}

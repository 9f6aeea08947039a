package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
)

// CreateOrderFromDetail snapshots the referenced offer detail into a new
// order inside one transaction: either the full order exists afterwards or
// nothing does.
func (r *SQLiteRepo) CreateOrderFromDetail(ctx context.Context, customerUserID, offerDetailID int64) (*models.Order, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT d.id, d.offer_id, d.revisions, d.delivery_time_in_days, d.price, d.features, d.offer_type, o.title, o.user_id
FROM offer_details d JOIN offers o ON o.id = d.offer_id WHERE d.id = ?`, offerDetailID)

	var ord models.Order
	var features string
	if err := row.Scan(&ord.OfferDetailID, &ord.OfferID, &ord.Revisions, &ord.DeliveryTimeInDays, &ord.Price, &features, &ord.OfferType, &ord.Title, &ord.BusinessUserID); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrOfferDetailNotFound
		}

		return nil, fmt.Errorf("resolve offer detail: %w", err)
	}

	ord.Features = featuresFromJSON(features)
	ord.CustomerUserID = customerUserID
	ord.Status = models.StatusInProgress
	ts := now()
	ord.CreatedAt = ts
	ord.UpdatedAt = ts

	res, err := tx.ExecContext(ctx, `INSERT INTO orders (customer_user_id, business_user_id, offer_id, offer_detail_id, title, revisions, delivery_time_in_days, price, features, offer_type, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ord.CustomerUserID, ord.BusinessUserID, ord.OfferID, ord.OfferDetailID, ord.Title, ord.Revisions, ord.DeliveryTimeInDays, ord.Price.StringFixed(2), features, ord.OfferType, ord.Status, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	ord.ID = id

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &ord, nil
}

const orderColumns = `id, customer_user_id, business_user_id, offer_id, offer_detail_id, title, revisions, delivery_time_in_days, price, features, offer_type, status, created_at, updated_at`

func scanOrder(scan func(dest ...any) error) (*models.Order, error) {
	var o models.Order
	var features string
	if err := scan(&o.ID, &o.CustomerUserID, &o.BusinessUserID, &o.OfferID, &o.OfferDetailID, &o.Title, &o.Revisions, &o.DeliveryTimeInDays, &o.Price, &features, &o.OfferType, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Features = featuresFromJSON(features)

	return &o, nil
}

func (r *SQLiteRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return o, nil
}

func (r *SQLiteRepo) collectOrders(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}

	return r.collectOrders(rows)
}

func (r *SQLiteRepo) ListOrdersByParticipant(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_user_id = ? OR business_user_id = ? ORDER BY created_at DESC`, userID, userID)
	if err != nil {
		return nil, err
	}

	return r.collectOrders(rows)
}

func (r *SQLiteRepo) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	_, err := r.conn.Exec(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	return err
}

func (r *SQLiteRepo) DeleteOrder(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM orders WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) CountOrdersByStatus(ctx context.Context, businessUserID int64, status string) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE business_user_id = ? AND status = ?`, businessUserID, status)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

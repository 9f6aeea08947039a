package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
	"github.com/shopspring/decimal"
)

// offerQuery computes the derived aggregates inline so filtering and
// ordering on them stay in SQL. The outer select exists because SQLite
// cannot reference column aliases in WHERE.
const offerQuery = `SELECT * FROM (
SELECT o.id, o.user_id, o.title, o.image, o.description, o.created_at, o.updated_at,
       u.username, u.first_name, u.last_name,
       (SELECT MIN(d.price) FROM offer_details d WHERE d.offer_id = o.id) AS min_price,
       (SELECT MIN(d.delivery_time_in_days) FROM offer_details d WHERE d.offer_id = o.id) AS min_delivery_time,
       (SELECT MAX(d.delivery_time_in_days) FROM offer_details d WHERE d.offer_id = o.id) AS max_delivery_time
FROM offers o JOIN users u ON u.id = o.user_id
)`

// offerOrderings whitelists the ordering expressions reachable from the
// API; anything else falls back to newest-first.
var offerOrderings = map[string]string{
	"min_price":          "min_price ASC",
	"-min_price":         "min_price DESC",
	"created_at":         "created_at ASC",
	"-created_at":        "created_at DESC",
	"max_delivery_time":  "max_delivery_time ASC",
	"-max_delivery_time": "max_delivery_time DESC",
}

func scanOffer(scan func(dest ...any) error) (*models.Offer, error) {
	var o models.Offer
	var ud models.UserDetails
	var minPrice sql.NullFloat64
	var minDelivery, maxDelivery sql.NullInt64
	if err := scan(&o.ID, &o.UserID, &o.Title, &o.Image, &o.Description, &o.CreatedAt, &o.UpdatedAt,
		&ud.Username, &ud.FirstName, &ud.LastName, &minPrice, &minDelivery, &maxDelivery); err != nil {
		return nil, err
	}

	o.UserDetails = &ud
	if minPrice.Valid {
		p := decimal.NewFromFloat(minPrice.Float64).Round(2)
		o.MinPrice = &p
	}
	if minDelivery.Valid {
		v := int(minDelivery.Int64)
		o.MinDeliveryTime = &v
	}
	if maxDelivery.Valid {
		v := int(maxDelivery.Int64)
		o.MaxDeliveryTime = &v
	}

	return &o, nil
}

func (r *SQLiteRepo) CreateOffer(ctx context.Context, o *models.Offer, details []models.OfferDetail) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("offer is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	res, err := tx.ExecContext(ctx, `INSERT INTO offers (user_id, title, image, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		o.UserID, o.Title, o.Image, o.Description, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("insert offer: %w", err)
	}
	offerID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, d := range details {
		if _, err := tx.ExecContext(ctx, `INSERT INTO offer_details (offer_id, title, revisions, delivery_time_in_days, price, features, offer_type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			offerID, d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price.StringFixed(2), featuresToJSON(d.Features), d.OfferType); err != nil {
			return 0, fmt.Errorf("insert offer detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return offerID, nil
}

func (r *SQLiteRepo) GetOfferByID(ctx context.Context, id int64) (*models.Offer, error) {
	row := r.conn.QueryRow(ctx, offerQuery+` WHERE id = ?`, id)
	o, err := scanOffer(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	details, err := r.listDetailsByOffer(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Details = details

	return o, nil
}

func (r *SQLiteRepo) ListOffers(ctx context.Context, f repository.OfferFilter) ([]models.Offer, int64, error) {
	where := []string{"1=1"}
	var args []any

	if f.CreatorID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *f.CreatorID)
	}
	if f.MinPrice != nil {
		where = append(where, "min_price >= ?")
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxDeliveryTime != nil {
		where = append(where, "max_delivery_time <= ?")
		args = append(args, *f.MaxDeliveryTime)
	}
	if f.Search != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	cond := " WHERE " + strings.Join(where, " AND ")

	var total int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM (`+offerQuery+cond+`)`, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}

	ordering, ok := offerOrderings[f.Ordering]
	if !ok {
		ordering = "created_at DESC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 6
	}

	rows, err := r.conn.QueryRows(ctx, offerQuery+cond+` ORDER BY `+ordering+` LIMIT ? OFFSET ?`, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		details, err := r.listDetailsByOffer(ctx, out[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].Details = details
	}

	return out, total, nil
}

// UpdateOffer writes the offer row and, when details is non-nil, replaces
// the whole detail set in the same transaction. An update is a full
// replace, never an incremental merge.
func (r *SQLiteRepo) UpdateOffer(ctx context.Context, o *models.Offer, details []models.OfferDetail) error {
	if o == nil {
		return fmt.Errorf("offer is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE offers SET title = ?, image = ?, description = ?, updated_at = ? WHERE id = ?`,
		o.Title, o.Image, o.Description, now(), o.ID); err != nil {
		return fmt.Errorf("update offer: %w", err)
	}

	if details != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM offer_details WHERE offer_id = ?`, o.ID); err != nil {
			return fmt.Errorf("clear offer details: %w", err)
		}
		for _, d := range details {
			if _, err := tx.ExecContext(ctx, `INSERT INTO offer_details (offer_id, title, revisions, delivery_time_in_days, price, features, offer_type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				o.ID, d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price.StringFixed(2), featuresToJSON(d.Features), d.OfferType); err != nil {
				return fmt.Errorf("insert offer detail: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) DeleteOffer(ctx context.Context, id int64) error {
	// details go with the offer via ON DELETE CASCADE
	_, err := r.conn.Exec(ctx, `DELETE FROM offers WHERE id = ?`, id)
	return err
}

const detailColumns = `id, offer_id, title, revisions, delivery_time_in_days, price, features, offer_type`

func scanDetail(scan func(dest ...any) error) (*models.OfferDetail, error) {
	var d models.OfferDetail
	var features string
	if err := scan(&d.ID, &d.OfferID, &d.Title, &d.Revisions, &d.DeliveryTimeInDays, &d.Price, &features, &d.OfferType); err != nil {
		return nil, err
	}
	d.Features = featuresFromJSON(features)

	return &d, nil
}

func (r *SQLiteRepo) listDetailsByOffer(ctx context.Context, offerID int64) ([]models.OfferDetail, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+detailColumns+` FROM offer_details WHERE offer_id = ? ORDER BY id`, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OfferDetail{}
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CreateOfferDetail(ctx context.Context, d *models.OfferDetail) (int64, error) {
	if d == nil {
		return 0, fmt.Errorf("offer detail is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO offer_details (offer_id, title, revisions, delivery_time_in_days, price, features, offer_type) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.OfferID, d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price.StringFixed(2), featuresToJSON(d.Features), d.OfferType)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetOfferDetailByID(ctx context.Context, id int64) (*models.OfferDetail, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+detailColumns+` FROM offer_details WHERE id = ?`, id)
	d, err := scanDetail(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return d, nil
}

func (r *SQLiteRepo) ListOfferDetails(ctx context.Context, limit, offset int) ([]models.OfferDetail, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+detailColumns+` FROM offer_details ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OfferDetail
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateOfferDetail(ctx context.Context, d *models.OfferDetail) error {
	if d == nil {
		return fmt.Errorf("offer detail is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE offer_details SET title = ?, revisions = ?, delivery_time_in_days = ?, price = ?, features = ?, offer_type = ? WHERE id = ?`,
		d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price.StringFixed(2), featuresToJSON(d.Features), d.OfferType, d.ID)
	return err
}

func (r *SQLiteRepo) DeleteOfferDetail(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM offer_details WHERE id = ?`, id)
	return err
}

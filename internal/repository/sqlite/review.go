package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
)

func (r *SQLiteRepo) CreateReview(ctx context.Context, rv *models.Review) (int64, error) {
	if rv == nil {
		return 0, fmt.Errorf("review is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO reviews (customer_user_id, business_user_id, rating, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rv.CustomerUserID, rv.BusinessUserID, rv.Rating, rv.Description, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

const reviewColumns = `id, customer_user_id, business_user_id, rating, description, created_at, updated_at`

func scanReview(scan func(dest ...any) error) (*models.Review, error) {
	var rv models.Review
	if err := scan(&rv.ID, &rv.CustomerUserID, &rv.BusinessUserID, &rv.Rating, &rv.Description, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}

	return &rv, nil
}

func (r *SQLiteRepo) GetReviewByID(ctx context.Context, id int64) (*models.Review, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	rv, err := scanReview(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return rv, nil
}

var reviewOrderings = map[string]string{
	"updated_at":  "updated_at ASC",
	"-updated_at": "updated_at DESC",
	"rating":      "rating ASC",
	"-rating":     "rating DESC",
}

func (r *SQLiteRepo) ListReviews(ctx context.Context, f repository.ReviewFilter) ([]models.Review, error) {
	where := []string{"1=1"}
	var args []any

	if f.BusinessUserID != nil {
		where = append(where, "business_user_id = ?")
		args = append(args, *f.BusinessUserID)
	}
	if f.ReviewerID != nil {
		where = append(where, "customer_user_id = ?")
		args = append(args, *f.ReviewerID)
	}

	ordering, ok := reviewOrderings[f.Ordering]
	if !ok {
		ordering = "updated_at DESC"
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE `+strings.Join(where, " AND ")+` ORDER BY `+ordering, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateReview(ctx context.Context, rv *models.Review) error {
	if rv == nil {
		return fmt.Errorf("review is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE reviews SET rating = ?, description = ?, updated_at = ? WHERE id = ?`,
		rv.Rating, rv.Description, now(), rv.ID)
	return err
}

func (r *SQLiteRepo) DeleteReview(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) HasReview(ctx context.Context, customerUserID, businessUserID int64) (bool, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM reviews WHERE customer_user_id = ? AND business_user_id = ?`, customerUserID, businessUserID)
	var n int64
	if err := row.Scan(&n); err != nil {
		return false, err
	}

	return n > 0, nil
}

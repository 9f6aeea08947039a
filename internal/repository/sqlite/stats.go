package sqlite

import (
	"context"
	"database/sql"
	"math"

	"github.com/coderr-app/backend/pkg/models"
)

// BaseInfo gathers the public platform aggregates. The average rating is
// rounded to one decimal place and reported as 0 when no reviews exist.
func (r *SQLiteRepo) BaseInfo(ctx context.Context) (*models.BaseInfo, error) {
	var info models.BaseInfo

	row := r.conn.QueryRow(ctx, `SELECT COUNT(*), AVG(rating) FROM reviews`)
	var avg sql.NullFloat64
	if err := row.Scan(&info.ReviewCount, &avg); err != nil {
		return nil, err
	}
	if info.ReviewCount > 0 && avg.Valid {
		info.AverageRating = math.Round(avg.Float64*10) / 10
	}

	row = r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE type = ?`, models.TypeBusiness)
	if err := row.Scan(&info.BusinessProfileCount); err != nil {
		return nil, err
	}

	row = r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM offers`)
	if err := row.Scan(&info.OfferCount); err != nil {
		return nil, err
	}

	return &info, nil
}

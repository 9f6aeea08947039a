package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coderr-app/backend/pkg/models"
)

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO profiles (user_id, file, location, tel, description, working_hours, type, email, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.File, p.Location, p.Tel, p.Description, p.WorkingHours, p.Type, p.Email, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// profileQuery joins the owning user so listings carry username and names
// without extra lookups.
const profileQuery = `SELECT p.id, p.user_id, p.file, p.location, p.tel, p.description, p.working_hours, p.type, p.email, p.created_at, u.username, u.first_name, u.last_name
FROM profiles p JOIN users u ON u.id = p.user_id`

func scanProfile(scan func(dest ...any) error) (*models.Profile, error) {
	var p models.Profile
	if err := scan(&p.ID, &p.UserID, &p.File, &p.Location, &p.Tel, &p.Description, &p.WorkingHours, &p.Type, &p.Email, &p.CreatedAt, &p.Username, &p.FirstName, &p.LastName); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *SQLiteRepo) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	row := r.conn.QueryRow(ctx, profileQuery+` WHERE p.user_id = ?`, userID)
	p, err := scanProfile(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return p, nil
}

func (r *SQLiteRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	// type and created_at are immutable after registration
	_, err := r.conn.Exec(ctx, `UPDATE profiles SET file = ?, location = ?, tel = ?, description = ?, working_hours = ?, email = ? WHERE user_id = ?`,
		p.File, p.Location, p.Tel, p.Description, p.WorkingHours, p.Email, p.UserID)
	return err
}

func (r *SQLiteRepo) ListProfilesByType(ctx context.Context, profileType string) ([]models.Profile, error) {
	rows, err := r.conn.QueryRows(ctx, profileQuery+` WHERE p.type = ? ORDER BY u.username`, profileType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

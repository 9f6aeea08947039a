package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coderr-app/backend/pkg/models"
	"github.com/coderr-app/backend/pkg/repository"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO users (username, email, first_name, last_name, is_staff, password_hash, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.FirstName, u.LastName, boolToInt(u.IsStaff), u.PasswordHash, now())
	if err != nil {
		// concurrent registrations land on the unique index rather than
		// the caller's pre-check
		switch {
		case strings.Contains(err.Error(), "users.username"):
			return 0, repository.ErrUsernameTaken
		case strings.Contains(err.Error(), "users.email"):
			return 0, repository.ErrEmailTaken
		}
		return 0, err
	}

	return res.LastInsertId()
}

const userColumns = `id, username, email, first_name, last_name, is_staff, password_hash, created`

func (r *SQLiteRepo) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var staff int
	var pw sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &staff, &pw, &u.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	u.IsStaff = staff != 0
	if pw.Valid {
		u.PasswordHash = pw.String
	}

	return &u, nil
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, is_staff = ?, password_hash = ? WHERE id = ?`,
		u.Username, u.Email, u.FirstName, u.LastName, boolToInt(u.IsStaff), u.PasswordHash, u.ID)
	return err
}

func (r *SQLiteRepo) DeleteUserByUsername(ctx context.Context, username string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM users WHERE username = ?`, username)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

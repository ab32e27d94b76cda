package repo

import (
	"context"
	"database/sql"

	"binsight/internal/domain"
)

func (r Repo) InsertAdmin(ctx context.Context, a domain.Admin) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO admins(id,username,email,password_hash,created_at) VALUES (?,?,?,?,?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.CreatedAt)
	return translateUnique(err)
}

func (r Repo) GetAdmin(ctx context.Context, id string) (domain.Admin, error) {
	return scanAdmin(r.DB.QueryRowContext(ctx, `SELECT id,username,email,password_hash,created_at FROM admins WHERE id=?`, id))
}

func (r Repo) GetAdminByUsername(ctx context.Context, username string) (domain.Admin, error) {
	return scanAdmin(r.DB.QueryRowContext(ctx, `SELECT id,username,email,password_hash,created_at FROM admins WHERE username=?`, username))
}

func (r Repo) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,username,email,password_hash,created_at FROM admins ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Admin
	for rows.Next() {
		var a domain.Admin
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func scanAdmin(row *sql.Row) (domain.Admin, error) {
	var a domain.Admin
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

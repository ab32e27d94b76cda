package repo

import (
	"context"
	"database/sql"

	"binsight/internal/domain"
)

func (r Repo) InsertNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO notifications(bin_category,admin_id,is_full,notif_sent,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		string(n.BinCategory), n.AdminID, n.IsFull, n.NotifSent, n.CreatedAt, n.UpdatedAt)
	return translateUnique(err)
}

func (r Repo) GetNotification(ctx context.Context, bin domain.BinCategory) (domain.Notification, error) {
	return scanNotification(r.DB.QueryRowContext(ctx,
		`SELECT bin_category,admin_id,is_full,notif_sent,created_at,updated_at FROM notifications WHERE bin_category=?`, string(bin)))
}

func (r Repo) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT bin_category,admin_id,is_full,notif_sent,created_at,updated_at FROM notifications ORDER BY bin_category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var cat string
		if err := rows.Scan(&cat, &n.AdminID, &n.IsFull, &n.NotifSent, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		n.BinCategory = domain.BinCategory(cat)
		res = append(res, n)
	}
	return res, rows.Err()
}

// UpdateNotificationState sets is_full and/or notif_sent for a bin.
// Nil pointers leave the field untouched.
func (r Repo) UpdateNotificationState(ctx context.Context, tx *sql.Tx, bin domain.BinCategory, isFull, notifSent *bool, updatedAt string) error {
	set := "updated_at=?"
	args := []any{updatedAt}
	if isFull != nil {
		set += ", is_full=?"
		args = append(args, *isFull)
	}
	if notifSent != nil {
		set += ", notif_sent=?"
		args = append(args, *notifSent)
	}
	args = append(args, string(bin))
	res, err := tx.ExecContext(ctx, `UPDATE notifications SET `+set+` WHERE bin_category=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNotification(row *sql.Row) (domain.Notification, error) {
	var n domain.Notification
	var cat string
	err := row.Scan(&cat, &n.AdminID, &n.IsFull, &n.NotifSent, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return n, ErrNotFound
	}
	n.BinCategory = domain.BinCategory(cat)
	return n, err
}

package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"binsight/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// ErrAlreadyExists reports a unique-key conflict, e.g. a second disposal
// time or verification for the same waste item.
var ErrAlreadyExists = errors.New("already exists")

// translateUnique maps SQLite unique-index violations onto ErrAlreadyExists
// so callers never parse driver error strings themselves.
func translateUnique(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyExists
	}
	return err
}

func (r Repo) InsertWasteItem(ctx context.Context, tx *sql.Tx, w domain.WasteItem) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO waste_items(id,analyzed_category,created_at) VALUES (?,?,?)`,
		w.ID, string(w.AnalyzedCategory), w.CreatedAt)
	return translateUnique(err)
}

func (r Repo) GetWasteItem(ctx context.Context, id string) (domain.WasteItem, error) {
	var w domain.WasteItem
	var cat string
	err := r.DB.QueryRowContext(ctx, `SELECT id,analyzed_category,created_at FROM waste_items WHERE id=?`, id).
		Scan(&w.ID, &cat, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return w, ErrNotFound
	}
	w.AnalyzedCategory = domain.AnalyzedCategory(cat)
	return w, err
}

func (r Repo) ListWasteItemIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM waste_items ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r Repo) InsertDisposalTime(ctx context.Context, tx *sql.Tx, d domain.DisposalTime) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO disposal_times(waste_item_id,disposed_at) VALUES (?,?)`,
		d.WasteItemID, d.DisposedAt)
	return translateUnique(err)
}

func (r Repo) GetDisposalTime(ctx context.Context, wasteItemID string) (domain.DisposalTime, error) {
	var d domain.DisposalTime
	err := r.DB.QueryRowContext(ctx, `SELECT waste_item_id,disposed_at FROM disposal_times WHERE waste_item_id=?`, wasteItemID).
		Scan(&d.WasteItemID, &d.DisposedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	return d, err
}

func (r Repo) InsertVerification(ctx context.Context, tx *sql.Tx, v domain.Verification) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO verifications(waste_item_id,bin_category) VALUES (?,?)`,
		v.WasteItemID, string(v.BinCategory))
	return translateUnique(err)
}

func (r Repo) GetVerification(ctx context.Context, wasteItemID string) (domain.Verification, error) {
	var v domain.Verification
	var cat string
	err := r.DB.QueryRowContext(ctx, `SELECT waste_item_id,bin_category FROM verifications WHERE waste_item_id=?`, wasteItemID).
		Scan(&v.WasteItemID, &cat)
	if err == sql.ErrNoRows {
		return v, ErrNotFound
	}
	v.BinCategory = domain.BinCategory(cat)
	return v, err
}

// CountVerificationsByCategory counts verifications with the given bin
// category, inside the caller's transaction.
func (r Repo) CountVerificationsByCategory(ctx context.Context, tx *sql.Tx, bin domain.BinCategory) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT count(*) FROM verifications WHERE bin_category=?`, string(bin)).Scan(&n)
	return n, err
}

// CountVerifications counts all verifications, inside the caller's transaction.
func (r Repo) CountVerifications(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT count(*) FROM verifications`).Scan(&n)
	return n, err
}

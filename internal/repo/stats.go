package repo

import (
	"context"
	"database/sql"

	"binsight/internal/domain"
)

// UpsertStatisticTotal creates the statistic row for a category with ratio 0,
// or updates its total if the row exists.
func (r Repo) UpsertStatisticTotal(ctx context.Context, tx *sql.Tx, bin domain.BinCategory, total int) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO statistics(bin_category,total,ratio) VALUES (?,?,0)
ON CONFLICT(bin_category) DO UPDATE SET total=excluded.total`, string(bin), total)
	return err
}

// UpdateStatisticRatio updates the ratio of an existing row. Rows that do
// not exist yet are left alone.
func (r Repo) UpdateStatisticRatio(ctx context.Context, tx *sql.Tx, bin domain.BinCategory, ratio float64) error {
	_, err := tx.ExecContext(ctx, `UPDATE statistics SET ratio=? WHERE bin_category=?`, ratio, string(bin))
	return err
}

func (r Repo) GetStatistic(ctx context.Context, bin domain.BinCategory) (domain.Statistic, error) {
	var s domain.Statistic
	var cat string
	err := r.DB.QueryRowContext(ctx, `SELECT bin_category,total,ratio FROM statistics WHERE bin_category=?`, string(bin)).
		Scan(&cat, &s.Total, &s.Ratio)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	s.BinCategory = domain.BinCategory(cat)
	return s, err
}

func (r Repo) ListStatistics(ctx context.Context) ([]domain.Statistic, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT bin_category,total,ratio FROM statistics ORDER BY bin_category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Statistic
	for rows.Next() {
		var s domain.Statistic
		var cat string
		if err := rows.Scan(&cat, &s.Total, &s.Ratio); err != nil {
			return nil, err
		}
		s.BinCategory = domain.BinCategory(cat)
		res = append(res, s)
	}
	return res, rows.Err()
}

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"binsight/internal/config"
	"binsight/internal/domain"
	"binsight/internal/events"
	"binsight/internal/repo"
)

// DisposedAtLayout is the day-first wall-clock format recorded for each
// disposal, matching what the station displays.
const DisposedAtLayout = "02/01/2006 15:04:05"

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Mail   Mailer
	Now    func() time.Time
}

// Mailer delivers bin-full alerts. The zero value of Engine has no
// mailer; notifications are then recorded but never emailed.
type Mailer interface {
	SendBinFull(ctx context.Context, to string, bin domain.BinCategory) error
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// RecordDisposal registers one disposal reported by the station: the
// classifier's category plus the bin the user actually chose. The waste
// item, its disposal time, its verification and the statistics update
// all land in one transaction, so a failure leaves no partial rows.
func (e Engine) RecordDisposal(ctx context.Context, analyzed domain.AnalyzedCategory, bin domain.BinCategory) (domain.DisposalView, error) {
	if !analyzed.Valid() {
		return domain.DisposalView{}, fmt.Errorf("invalid analyzed category %q", analyzed)
	}
	if !bin.Valid() {
		return domain.DisposalView{}, fmt.Errorf("invalid bin category %q", bin)
	}
	now := e.now()
	item := domain.WasteItem{
		ID:               uuid.New().String(),
		AnalyzedCategory: analyzed,
		CreatedAt:        now.UTC().Format(time.RFC3339),
	}
	disposedAt := now.Format(DisposedAtLayout)

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.DisposalView{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertWasteItem(ctx, tx, item); err != nil {
		return domain.DisposalView{}, fmt.Errorf("insert waste item: %w", err)
	}
	if err := e.Repo.InsertDisposalTime(ctx, tx, domain.DisposalTime{WasteItemID: item.ID, DisposedAt: disposedAt}); err != nil {
		return domain.DisposalView{}, fmt.Errorf("insert disposal time: %w", err)
	}
	if err := e.Repo.InsertVerification(ctx, tx, domain.Verification{WasteItemID: item.ID, BinCategory: bin}); err != nil {
		return domain.DisposalView{}, fmt.Errorf("insert verification: %w", err)
	}
	if err := e.bumpCategoryTx(ctx, tx, bin); err != nil {
		return domain.DisposalView{}, err
	}
	if err := e.Events.Append(ctx, tx, "disposal.recorded", "waste_item", item.ID, e.stationID(), events.EventPayload{
		"analyzed_category": string(analyzed),
		"bin_category":      string(bin),
	}); err != nil {
		return domain.DisposalView{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.DisposalView{}, err
	}
	return domain.DisposalView{
		WasteItemID:      item.ID,
		AnalyzedCategory: analyzed,
		BinCategory:      bin,
		DisposedAt:       disposedAt,
	}, nil
}

// BumpCategoryCount recounts one bin's verifications and refreshes every
// ratio, in its own transaction.
func (e Engine) BumpCategoryCount(ctx context.Context, bin domain.BinCategory) (domain.Statistic, error) {
	if !bin.Valid() {
		return domain.Statistic{}, fmt.Errorf("invalid bin category %q", bin)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Statistic{}, err
	}
	defer tx.Rollback()
	if err := e.bumpCategoryTx(ctx, tx, bin); err != nil {
		return domain.Statistic{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Statistic{}, err
	}
	return e.Repo.GetStatistic(ctx, bin)
}

// bumpCategoryTx recounts a single category's total and then refreshes
// the ratios of every category against the new grand total.
func (e Engine) bumpCategoryTx(ctx context.Context, tx *sql.Tx, bin domain.BinCategory) error {
	total, err := e.Repo.CountVerificationsByCategory(ctx, tx, bin)
	if err != nil {
		return err
	}
	if err := e.Repo.UpsertStatisticTotal(ctx, tx, bin, total); err != nil {
		return fmt.Errorf("upsert statistic: %w", err)
	}
	return e.recomputeRatiosTx(ctx, tx)
}

// recomputeRatiosTx refreshes the ratio of every bin category against
// the grand total of verifications. A grand total of zero leaves every
// ratio as it was.
func (e Engine) recomputeRatiosTx(ctx context.Context, tx *sql.Tx) error {
	grand, err := e.Repo.CountVerifications(ctx, tx)
	if err != nil {
		return err
	}
	if grand == 0 {
		return nil
	}
	for _, bin := range domain.BinCategories() {
		n, err := e.Repo.CountVerificationsByCategory(ctx, tx, bin)
		if err != nil {
			return err
		}
		ratio := roundRatio(float64(n) / float64(grand) * 100)
		if err := e.Repo.UpdateStatisticRatio(ctx, tx, bin, ratio); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeAllRatios refreshes every bin ratio in one transaction.
func (e Engine) RecomputeAllRatios(ctx context.Context) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.recomputeRatiosTx(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (e Engine) ListStatistics(ctx context.Context) ([]domain.Statistic, error) {
	return e.Repo.ListStatistics(ctx)
}

func (e Engine) GetStatistic(ctx context.Context, bin domain.BinCategory) (domain.Statistic, error) {
	if !bin.Valid() {
		return domain.Statistic{}, fmt.Errorf("invalid bin category %q", bin)
	}
	return e.Repo.GetStatistic(ctx, bin)
}

// GetView assembles the denormalized projection for one waste item.
// The projection needs all three records; a missing disposal time or
// verification makes the whole view a not-found.
func (e Engine) GetView(ctx context.Context, wasteItemID string) (domain.DisposalView, error) {
	item, err := e.Repo.GetWasteItem(ctx, wasteItemID)
	if err != nil {
		return domain.DisposalView{}, err
	}
	dt, err := e.Repo.GetDisposalTime(ctx, wasteItemID)
	if err != nil {
		return domain.DisposalView{}, err
	}
	v, err := e.Repo.GetVerification(ctx, wasteItemID)
	if err != nil {
		return domain.DisposalView{}, err
	}
	return domain.DisposalView{
		WasteItemID:      item.ID,
		AnalyzedCategory: item.AnalyzedCategory,
		BinCategory:      v.BinCategory,
		DisposedAt:       dt.DisposedAt,
	}, nil
}

// GetViews assembles projections for many waste items at once, fanning
// out one lookup per id. The result keeps the input order; ids whose
// view cannot be assembled yield a nil entry. A nil input returns nil.
func (e Engine) GetViews(ctx context.Context, ids []string) ([]*domain.DisposalView, error) {
	if ids == nil {
		return nil, nil
	}
	views := make([]*domain.DisposalView, len(ids))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			v, err := e.GetView(ctx, id)
			if errors.Is(err, repo.ErrNotFound) {
				return
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			views[i] = &v
		}(i, id)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return views, nil
}

// ListDisposals returns the projection of every recorded waste item,
// newest first.
func (e Engine) ListDisposals(ctx context.Context) ([]*domain.DisposalView, error) {
	ids, err := e.Repo.ListWasteItemIDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return []*domain.DisposalView{}, nil
	}
	return e.GetViews(ctx, ids)
}

func (e Engine) stationID() string {
	if e.Config != nil && e.Config.Station.ID != "" {
		return e.Config.Station.ID
	}
	return "station"
}

func roundRatio(v float64) float64 {
	return math.Round(v*100) / 100
}

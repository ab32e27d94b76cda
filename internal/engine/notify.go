package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"binsight/internal/domain"
	"binsight/internal/events"
	"binsight/internal/repo"
)

// CreateNotification registers the fill-level tracker for one bin and
// the admin who receives its alerts.
func (e Engine) CreateNotification(ctx context.Context, bin domain.BinCategory, adminID string) (domain.Notification, error) {
	if !bin.Valid() {
		return domain.Notification{}, fmt.Errorf("invalid bin category %q", bin)
	}
	if _, err := e.Repo.GetAdmin(ctx, adminID); err != nil {
		return domain.Notification{}, fmt.Errorf("admin %s: %w", adminID, err)
	}
	now := e.now().UTC().Format(time.RFC3339)
	n := domain.Notification{
		BinCategory: bin,
		AdminID:     adminID,
		IsFull:      false,
		NotifSent:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Repo.InsertNotification(ctx, n); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

func (e Engine) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	return e.Repo.ListNotifications(ctx)
}

func (e Engine) GetNotification(ctx context.Context, bin domain.BinCategory) (domain.Notification, error) {
	if !bin.Valid() {
		return domain.Notification{}, fmt.Errorf("invalid bin category %q", bin)
	}
	return e.Repo.GetNotification(ctx, bin)
}

// SetBinFull records the fill state reported for a bin. Reporting full
// sends at most one email until the bin is emptied again; reporting
// not-full rearms the alert.
func (e Engine) SetBinFull(ctx context.Context, bin domain.BinCategory, isFull bool) (domain.Notification, error) {
	if !bin.Valid() {
		return domain.Notification{}, fmt.Errorf("invalid bin category %q", bin)
	}
	n, err := e.Repo.GetNotification(ctx, bin)
	if err != nil {
		return domain.Notification{}, err
	}

	sendMail := isFull && !n.NotifSent
	notifSent := n.NotifSent
	if sendMail {
		if err := e.sendBinFullMail(ctx, bin, n.AdminID); err != nil {
			return domain.Notification{}, fmt.Errorf("send alert: %w", err)
		}
		notifSent = true
	}
	if !isFull {
		notifSent = false
	}

	now := e.now().UTC().Format(time.RFC3339)
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Notification{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateNotificationState(ctx, tx, bin, &isFull, &notifSent, now); err != nil {
		return domain.Notification{}, err
	}
	if err := e.Events.Append(ctx, tx, "bin.fill.updated", "notification", string(bin), e.stationID(), events.EventPayload{
		"is_full":    isFull,
		"notif_sent": notifSent,
		"mailed":     sendMail,
	}); err != nil {
		return domain.Notification{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Notification{}, err
	}
	n.IsFull = isFull
	n.NotifSent = notifSent
	n.UpdatedAt = now
	return n, nil
}

func (e Engine) sendBinFullMail(ctx context.Context, bin domain.BinCategory, adminID string) error {
	if e.Mail == nil {
		return nil
	}
	to := ""
	if e.Config != nil {
		to = e.Config.Mail.NotifyTo
	}
	if to == "" {
		admin, err := e.Repo.GetAdmin(ctx, adminID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			return err
		}
		to = admin.Email
	}
	if to == "" {
		return nil
	}
	return e.Mail.SendBinFull(ctx, to, bin)
}

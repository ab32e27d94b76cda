package engine_test

import (
	"context"
	"errors"
	"testing"

	"binsight/internal/domain"
	"binsight/internal/repo"
)

type fakeMailer struct {
	sent []domain.BinCategory
	to   []string
	err  error
}

func (f *fakeMailer) SendBinFull(_ context.Context, to string, bin domain.BinCategory) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, bin)
	f.to = append(f.to, to)
	return nil
}

func seedNotification(t *testing.T, env testEnv, bin domain.BinCategory) domain.Admin {
	t.Helper()
	admin, err := env.Engine.CreateAdmin(env.Ctx, "gardien", "gardien@example.org", "motdepasse")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if _, err := env.Engine.CreateNotification(env.Ctx, bin, admin.ID); err != nil {
		t.Fatalf("create notification: %v", err)
	}
	return admin
}

func TestSetBinFullSendsOnce(t *testing.T) {
	env := newTestEnv(t)
	admin := seedNotification(t, env, domain.BinCompost)
	mail := &fakeMailer{}
	env.Engine.Mail = mail

	n, err := env.Engine.SetBinFull(env.Ctx, domain.BinCompost, true)
	if err != nil {
		t.Fatalf("set full: %v", err)
	}
	if !n.IsFull || !n.NotifSent {
		t.Fatalf("expected full and sent, got %+v", n)
	}
	if len(mail.sent) != 1 || mail.sent[0] != domain.BinCompost {
		t.Fatalf("expected one compost alert, got %v", mail.sent)
	}
	if mail.to[0] != admin.Email {
		t.Fatalf("expected alert to %s, got %s", admin.Email, mail.to[0])
	}

	// still full, already alerted
	n, err = env.Engine.SetBinFull(env.Ctx, domain.BinCompost, true)
	if err != nil {
		t.Fatalf("set full again: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected no second alert, got %v", mail.sent)
	}
	if !n.NotifSent {
		t.Fatalf("expected notif_sent to stay true")
	}
}

func TestEmptyingBinRearmsAlert(t *testing.T) {
	env := newTestEnv(t)
	seedNotification(t, env, domain.BinRecyclage)
	mail := &fakeMailer{}
	env.Engine.Mail = mail

	if _, err := env.Engine.SetBinFull(env.Ctx, domain.BinRecyclage, true); err != nil {
		t.Fatal(err)
	}
	n, err := env.Engine.SetBinFull(env.Ctx, domain.BinRecyclage, false)
	if err != nil {
		t.Fatal(err)
	}
	if n.IsFull || n.NotifSent {
		t.Fatalf("expected cleared state, got %+v", n)
	}
	if _, err := env.Engine.SetBinFull(env.Ctx, domain.BinRecyclage, true); err != nil {
		t.Fatal(err)
	}
	if len(mail.sent) != 2 {
		t.Fatalf("expected a second alert after emptying, got %d", len(mail.sent))
	}
}

func TestSetBinFullMailFailureKeepsState(t *testing.T) {
	env := newTestEnv(t)
	seedNotification(t, env, domain.BinPoubelle)
	env.Engine.Mail = &fakeMailer{err: errors.New("smtp down")}

	if _, err := env.Engine.SetBinFull(env.Ctx, domain.BinPoubelle, true); err == nil {
		t.Fatalf("expected mail error")
	}
	n, err := env.Engine.GetNotification(env.Ctx, domain.BinPoubelle)
	if err != nil {
		t.Fatal(err)
	}
	if n.IsFull || n.NotifSent {
		t.Fatalf("expected unchanged state after mail failure, got %+v", n)
	}
}

func TestSetBinFullWithoutTracker(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.SetBinFull(env.Ctx, domain.BinAutre, true); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateNotificationDuplicate(t *testing.T) {
	env := newTestEnv(t)
	admin := seedNotification(t, env, domain.BinCompost)
	if _, err := env.Engine.CreateNotification(env.Ctx, domain.BinCompost, admin.ID); !errors.Is(err, repo.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"binsight/internal/domain"
	"binsight/internal/repo"
)

// ErrBadCredentials covers both the unknown-username and wrong-password
// cases so login responses never reveal which one happened.
var ErrBadCredentials = errors.New("invalid username or password")

func (e Engine) CreateAdmin(ctx context.Context, username, email, password string) (domain.Admin, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.Admin{}, errors.New("username is required")
	}
	if email == "" {
		return domain.Admin{}, errors.New("email is required")
	}
	if len(password) < 8 {
		return domain.Admin{}, errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Admin{}, err
	}
	a := domain.Admin{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertAdmin(ctx, a); err != nil {
		return domain.Admin{}, err
	}
	return a, nil
}

// Authenticate verifies a username/password pair and returns the admin.
func (e Engine) Authenticate(ctx context.Context, username, password string) (domain.Admin, error) {
	a, err := e.Repo.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Admin{}, ErrBadCredentials
		}
		return domain.Admin{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return domain.Admin{}, ErrBadCredentials
	}
	return a, nil
}

func (e Engine) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return e.Repo.ListAdmins(ctx)
}

func (e Engine) GetAdmin(ctx context.Context, id string) (domain.Admin, error) {
	return e.Repo.GetAdmin(ctx, id)
}

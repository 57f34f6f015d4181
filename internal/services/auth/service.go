// Package auth registers and logs in users and turns bearer tokens into principals.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/utils"
)

type Service interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.AuthResponse, error)
	Login(ctx context.Context, in models.LoginInput) (*models.AuthResponse, error)
	Me(ctx context.Context, p domain.Principal) (*domain.User, error)
	UpdateDetails(ctx context.Context, p domain.Principal, in models.UpdateDetailsInput) (*domain.User, error)
	UpdatePassword(ctx context.Context, p domain.Principal, in models.UpdatePasswordInput) (*models.AuthResponse, error)
	// ResolvePrincipal verifies a bearer token and loads the current role and
	// vendor of its user, so role changes apply without a new login.
	ResolvePrincipal(ctx context.Context, token string) (domain.Principal, error)
}

type service struct {
	store  *domain.Store
	secret []byte
	ttl    time.Duration
	v      *validator.Validate
}

func NewService(store *domain.Store, secret []byte, ttl time.Duration) Service {
	return &service{store: store, secret: secret, ttl: ttl, v: domain.NewValidator()}
}

var errBadCredentials = domain.Unauthorized("invalid credentials")

func (s *service) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResponse, error) {
	if len(in.Password) < 6 {
		return nil, domain.Validation("validation failed: password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.Upstream(err, "hash password")
	}

	u := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := domain.Check(s.v, u); err != nil {
		return nil, err
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, in models.LoginInput) (*models.AuthResponse, error) {
	u, err := s.store.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(u.PasswordHash, in.Password) {
		return nil, errBadCredentials
	}
	return s.issue(u)
}

func (s *service) issue(u *domain.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return nil, domain.Upstream(err, "issue token")
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}

func (s *service) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.store.Users.GetByID(ctx, p.ID)
}

func (s *service) UpdateDetails(ctx context.Context, p domain.Principal, in models.UpdateDetailsInput) (*domain.User, error) {
	u, err := s.store.Users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if err := domain.Check(s.v, u); err != nil {
		return nil, err
	}
	if err := s.store.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) UpdatePassword(ctx context.Context, p domain.Principal, in models.UpdatePasswordInput) (*models.AuthResponse, error) {
	u, err := s.store.Users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return nil, domain.Unauthorized("password is incorrect")
	}
	if len(in.NewPassword) < 6 {
		return nil, domain.Validation("validation failed: newPassword must be at least 6 characters")
	}
	if u.PasswordHash, err = utils.HashPassword(in.NewPassword); err != nil {
		return nil, domain.Upstream(err, "hash password")
	}
	if err := s.store.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) ResolvePrincipal(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := utils.VerifyToken(s.secret, token)
	if err != nil {
		return domain.Principal{}, domain.Unauthorized("%v", err)
	}

	u, err := s.store.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Principal{}, domain.Unauthorized("user no longer exists")
	}
	if err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{ID: u.ID, Role: u.Role}
	if u.Role != domain.RoleVendor {
		return p, nil
	}
	v, err := s.store.Vendors.GetByUserID(ctx, u.ID)
	switch {
	case err == nil:
		p.VendorID = v.ID
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Principal{}, err
	}
	return p, nil
}

// Package admin implements vendor moderation, user administration and reporting.
package admin

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/core/policy"
	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/utils"
)

type Service interface {
	ListPendingVendors(ctx context.Context, p domain.Principal) ([]models.PendingVendor, error)
	ApproveVendor(ctx context.Context, p domain.Principal, id string) (*domain.Vendor, error)
	RejectVendor(ctx context.Context, p domain.Principal, id string) (*domain.Vendor, error)

	ListUsers(ctx context.Context, p domain.Principal, q models.UserQuery) (*models.UserPage, error)
	GetUser(ctx context.Context, p domain.Principal, id string) (*domain.User, error)
	CreateUser(ctx context.Context, p domain.Principal, in models.CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, p domain.Principal, id string, in models.UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, p domain.Principal, id string) error

	ExportBookings(ctx context.Context, p domain.Principal, w io.Writer) error
}

type service struct {
	store *domain.Store
	v     *validator.Validate
	log   logrus.FieldLogger
}

func NewService(store *domain.Store, log logrus.FieldLogger) Service {
	return &service{store: store, v: domain.NewValidator(), log: log}
}

func (s *service) ListPendingVendors(ctx context.Context, p domain.Principal) ([]models.PendingVendor, error) {
	if err := policy.Admin(p); err != nil {
		return nil, err
	}

	var pending []domain.Vendor
	q := domain.ListQuery{Page: 1, Limit: domain.MaxPageLimit, Sort: "createdAt"}
	for {
		page, total, err := s.store.Vendors.List(ctx, domain.VendorFilter{Status: domain.VendorPending}, q)
		if err != nil {
			return nil, err
		}
		pending = append(pending, page...)
		if len(page) == 0 || int64(len(pending)) >= total {
			break
		}
		q.Page++
	}

	ids := make([]string, 0, len(pending))
	for _, v := range pending {
		ids = append(ids, v.UserID)
	}
	owners, err := s.store.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.PendingVendor, 0, len(pending))
	for i := range pending {
		v := pending[i]
		out = append(out, models.PendingVendor{Vendor: &v, User: owners[v.UserID].Summary()})
	}
	return out, nil
}

// ApproveVendor sets the vendor approved and promotes its owner to the vendor
// role. Both writes commit together or not at all.
func (s *service) ApproveVendor(ctx context.Context, p domain.Principal, id string) (*domain.Vendor, error) {
	if err := policy.Admin(p); err != nil {
		return nil, err
	}
	v, err := s.store.Vendors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		owner, err := s.store.Users.GetByID(ctx, v.UserID)
		if err != nil {
			return err
		}
		if err := s.store.Vendors.SetStatus(ctx, v.ID, domain.VendorApproved); err != nil {
			return err
		}
		// an administrator who owns a vendor keeps the admin role
		if owner.Role == domain.RoleAdmin {
			return nil
		}
		return s.store.Users.SetRole(ctx, owner.ID, domain.RoleVendor)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"vendorId": v.ID, "userId": v.UserID, "by": p.ID}).Info("vendor approved")
	return s.store.Vendors.GetByID(ctx, v.ID)
}

// RejectVendor marks the vendor rejected. An owner that had been promoted by an
// earlier approval goes back to the user role.
func (s *service) RejectVendor(ctx context.Context, p domain.Principal, id string) (*domain.Vendor, error) {
	if err := policy.Admin(p); err != nil {
		return nil, err
	}
	v, err := s.store.Vendors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Vendors.SetStatus(ctx, v.ID, domain.VendorRejected); err != nil {
			return err
		}
		owner, err := s.store.Users.GetByID(ctx, v.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if owner.Role != domain.RoleVendor {
			return nil
		}
		return s.store.Users.SetRole(ctx, owner.ID, domain.RoleUser)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"vendorId": v.ID, "by": p.ID}).Info("vendor rejected")
	return s.store.Vendors.GetByID(ctx, v.ID)
}

func (s *service) ListUsers(ctx context.Context, p domain.Principal, q models.UserQuery) (*models.UserPage, error) {
	if err := policy.Admin(p); err != nil {
		return nil, err
	}
	lq := domain.ListQuery{Page: q.Page, Limit: q.Limit, Sort: q.Sort}.Normalize()
	users, total, err := s.store.Users.List(ctx, lq)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return &models.UserPage{Users: users, Total: total, Page: lq.Page, Limit: lq.Limit}, nil
}

func (s *service) GetUser(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	if err := policy.Admin(p); err != nil {
		return nil, err
	}
	return s.store.Users.GetByID(ctx, id)
}

func (s *service) CreateUser(ctx context.Context, p domain.Principal, in models.CreateUserInput) (*domain.User, error) {
	if err := policy.Admin(p); err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if in.Role != "" {
		var err error
		if role, err = domain.ParseRole(in.Role); err != nil {
			return nil, err
		}
	}
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
		Role:         role,
	}
	if err := domain.Check(s.v, u); err != nil {
		return nil, err
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) UpdateUser(ctx context.Context, p domain.Principal, id string, in models.UpdateUserInput) (*domain.User, error) {
	if err := policy.Admin(p); err != nil {
		return nil, err
	}
	u, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	var role domain.Role
	if in.Role != nil {
		if role, err = domain.ParseRole(*in.Role); err != nil {
			return nil, err
		}
		u.Role = role
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return nil, domain.Validation("validation failed: password must be at least 6 characters")
		}
		if u.PasswordHash, err = utils.HashPassword(*in.Password); err != nil {
			return nil, domain.Upstream(err, "hash password")
		}
	}

	if err := domain.Check(s.v, u); err != nil {
		return nil, err
	}
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Users.Update(ctx, u); err != nil {
			return err
		}
		if role == "" {
			return nil
		}
		if err := s.store.Users.SetRole(ctx, u.ID, role); err != nil {
			return err
		}
		u.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) DeleteUser(ctx context.Context, p domain.Principal, id string) error {
	if err := policy.Admin(p); err != nil {
		return err
	}
	if _, err := s.store.Users.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.Users.Delete(ctx, id)
}

package memory

import (
	"context"
	"strings"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type Users struct{ s *Store }

func (r *Users) Create(ctx context.Context, user *domain.User) error {
	unlock, err := r.s.enter(ctx, "users.Create")
	if err != nil {
		return err
	}
	defer unlock()

	if r.emailTaken(user.Email, "") {
		return domain.Conflict("email %s is already registered", user.Email)
	}
	now := r.s.Now()
	user.ID = newID()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) emailTaken(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	unlock, err := r.s.enter(ctx, "users.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user not found with id of %s", id)
	}
	return &u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	unlock, err := r.s.enter(ctx, "users.GetByEmail")
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.NotFound("user not found with email %s", email)
}

func (r *Users) GetMany(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	unlock, err := r.s.enter(ctx, "users.GetMany")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

var userSortFields = map[string]bool{"createdAt": true, "name": true, "email": true}

func (r *Users) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	unlock, err := r.s.enter(ctx, "users.List")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	all := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, u)
	}
	field, desc := q.SortField(userSortFields, "-createdAt")
	sortBy(all, desc, func(a, b domain.User) bool {
		switch field {
		case "name":
			return a.Name < b.Name
		case "email":
			return a.Email < b.Email
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return page(all, q), int64(len(all)), nil
}

func (r *Users) Update(ctx context.Context, user *domain.User) error {
	unlock, err := r.s.enter(ctx, "users.Update")
	if err != nil {
		return err
	}
	defer unlock()

	u, ok := r.s.users[user.ID]
	if !ok {
		return domain.NotFound("user not found with id of %s", user.ID)
	}
	if r.emailTaken(user.Email, user.ID) {
		return domain.Conflict("email %s is already registered", user.Email)
	}
	u.Name = user.Name
	u.Email = user.Email
	u.PasswordHash = user.PasswordHash
	u.UpdatedAt = r.s.Now()
	r.s.users[u.ID] = u
	*user = u
	return nil
}

func (r *Users) SetRole(ctx context.Context, id string, role domain.Role) error {
	unlock, err := r.s.enter(ctx, "users.SetRole")
	if err != nil {
		return err
	}
	defer unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.NotFound("user not found with id of %s", id)
	}
	u.Role = role
	u.UpdatedAt = r.s.Now()
	r.s.users[id] = u
	return nil
}

func (r *Users) Delete(ctx context.Context, id string) error {
	unlock, err := r.s.enter(ctx, "users.Delete")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.NotFound("user not found with id of %s", id)
	}
	delete(r.s.users, id)
	return nil
}

// Package memory is an in-process datastore. It enforces the same unique
// constraints as the MongoDB and Postgres adapters and supports transactions
// by snapshotting state, so services behave identically on top of it.
package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type txKey struct{}

type Store struct {
	mu       sync.Mutex
	users    map[string]domain.User
	vendors  map[string]domain.Vendor
	bookings map[string]domain.Booking
	reviews  map[string]domain.Review
	failures map[string]error

	Now func() time.Time
}

func New() *Store {
	return &Store{
		users:    map[string]domain.User{},
		vendors:  map[string]domain.Vendor{},
		bookings: map[string]domain.Booking{},
		reviews:  map[string]domain.Review{},
		failures: map[string]error{},
		Now:      time.Now,
	}
}

// Domain exposes the store through the repository ports.
func (s *Store) Domain() *domain.Store {
	return &domain.Store{
		Users:    &Users{s: s},
		Vendors:  &Vendors{s: s},
		Bookings: &Bookings{s: s},
		Reviews:  &Reviews{s: s},
		Tx:       s,
		Ping:     func(context.Context) error { return nil },
		Close:    func(context.Context) error { return nil },
	}
}

// FailOn makes the named operation (e.g. "users.SetRole") return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, vendors := maps.Clone(s.users), maps.Clone(s.vendors)
	bookings, reviews := maps.Clone(s.bookings), maps.Clone(s.reviews)

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.users, s.vendors, s.bookings, s.reviews = users, vendors, bookings, reviews
		return err
	}
	return nil
}

// enter locks the store unless ctx already holds it through a transaction,
// then reports any injected failure for op.
func (s *Store) enter(ctx context.Context, op string) (func(), error) {
	unlock := func() {}
	if ctx.Value(txKey{}) != s {
		s.mu.Lock()
		unlock = s.mu.Unlock
	}
	if err := s.failures[op]; err != nil {
		unlock()
		return nil, domain.Upstream(err, "memory %s", op)
	}
	return unlock, nil
}

func newID() string { return uuid.NewString() }

func page[T any](items []T, q domain.ListQuery) []T {
	q = q.Normalize()
	start := q.Skip()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+q.Limit, len(items))
	return items[start:end]
}

func sortBy[T any](items []T, desc bool, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Package postgres implements the repository ports on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type txKey struct{}

type Store struct {
	db *gorm.DB
}

// Open connects with dsn and migrates the schema, including the unique
// indexes on users.email, vendors.user_id, bookings(vendor_id, event_date)
// and reviews.booking_id.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(ctx, db)
}

// New wraps an existing gorm handle and runs the migrations.
func New(ctx context.Context, db *gorm.DB) (*Store, error) {
	if err := db.WithContext(ctx).AutoMigrate(&userModel{}, &vendorModel{}, &bookingModel{}, &reviewModel{}); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Domain() *domain.Store {
	return &domain.Store{
		Users:    &UserRepository{s: s},
		Vendors:  &VendorRepository{s: s},
		Bookings: &BookingRepository{s: s},
		Reviews:  &ReviewRepository{s: s},
		Tx:       s,
		Ping:     s.Ping,
		Close:    s.Close,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithinTransaction runs fn in a database transaction; repositories called
// with the derived context use it. Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		return mapErr(err, "transaction")
	}
	return nil
}

// conn returns the transaction bound to ctx, or the pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func parseID(id, kind string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.NotFound("%s not found with id of %s", kind, id)
	}
	return u, nil
}

// ref parses a reference id; anything that is not a uuid maps to uuid.Nil.
func ref(id string) uuid.UUID {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return u
}

func str(u uuid.UUID) string {
	if u == uuid.Nil {
		return ""
	}
	return u.String()
}

func mapErr(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case domain.KindOf(err) != 0:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(format+" not found", args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict(format+" already exists", args...)
	}
	return domain.Upstream(err, format, args...)
}

func orderBy(q domain.ListQuery, columns map[string]string, def string) string {
	allowed := make(map[string]bool, len(columns))
	for k := range columns {
		allowed[k] = true
	}
	field, desc := q.SortField(allowed, def)
	if desc {
		return columns[field] + " DESC, id DESC"
	}
	return columns[field] + " ASC, id ASC"
}

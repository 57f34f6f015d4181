// Package mongodb implements the repository ports on MongoDB. Transactions need
// a replica set or sharded cluster; a standalone server rejects them.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

const (
	usersCollection    = "users"
	vendorsCollection  = "vendors"
	bookingsCollection = "bookings"
	reviewsCollection  = "reviews"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, verifies the connection and makes sure the unique
// indexes the repositories rely on exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(30 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := EnsureIndexes(ctx, s.db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Domain() *domain.Store {
	return &domain.Store{
		Users:    NewUserRepository(s.db),
		Vendors:  NewVendorRepository(s.db),
		Bookings: NewBookingRepository(s.db),
		Reviews:  NewReviewRepository(s.db),
		Tx:       s,
		Ping:     s.Ping,
		Close:    s.client.Disconnect,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// WithinTransaction runs fn in a session transaction. Calls made with the
// session context join it; a nested call reuses the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return domain.Upstream(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return mapErr(err, "transaction")
	}
	return nil
}

// oid parses a hex id. Malformed ids cannot exist, so they read as not found.
func oid(id, kind string) (primitive.ObjectID, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.NotFound("%s not found with id of %s", kind, id)
	}
	return o, nil
}

// ref parses a reference id; references that are not ObjectIDs map to the nil id.
func ref(id string) primitive.ObjectID {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return o
}

func hex(o primitive.ObjectID) string {
	if o.IsZero() {
		return ""
	}
	return o.Hex()
}

func mapErr(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case domain.KindOf(err) != 0:
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.NotFound(format+" not found", args...)
	case mongo.IsDuplicateKeyError(err):
		return domain.Conflict(format+" already exists", args...)
	}
	return domain.Upstream(err, format, args...)
}

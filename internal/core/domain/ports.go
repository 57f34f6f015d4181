package domain

import (
	"context"
	"io"
	"strings"
)

// ListQuery is the generic pagination and sort shape used by public listings.
type ListQuery struct {
	Page  int
	Limit int
	// Sort is a field name, prefixed with '-' for descending order.
	Sort string
}

const (
	DefaultPageLimit = 25
	MaxPageLimit     = 100
)

// Normalize clamps page and limit into range.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	q.Sort = strings.TrimSpace(q.Sort)
	return q
}

func (q ListQuery) Skip() int { return (q.Page - 1) * q.Limit }

// SortField splits Sort into the field name and whether it is descending.
// Fields outside allowed fall back to def.
func (q ListQuery) SortField(allowed map[string]bool, def string) (string, bool) {
	s := q.Sort
	if s == "" {
		s = def
	}
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")
	if !allowed[field] {
		field = strings.TrimPrefix(def, "-")
		desc = strings.HasPrefix(def, "-")
	}
	return field, desc
}

// Transactor runs fn inside a datastore transaction. Repositories called with
// the context passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories and the transaction boundary of one datastore.
type Store struct {
	Users    UserRepository
	Vendors  VendorRepository
	Bookings BookingRepository
	Reviews  ReviewRepository
	Tx       Transactor
	// Ping reports whether the datastore is reachable.
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// FileStorage persists uploaded bytes under a name and returns a reference.
type FileStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// PaymentIntent is the gateway-side payment handle returned to clients.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentEvent is a verified gateway notification about a payment intent.
type PaymentEvent struct {
	Type        string
	IntentID    string
	BookingID   string
	AmountCents int64
}

const PaymentSucceeded = "payment_intent.succeeded"

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*PaymentIntent, error)
	// ParseWebhook verifies the signature of a webhook payload and decodes it.
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

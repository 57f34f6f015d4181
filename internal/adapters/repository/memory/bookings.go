package memory

import (
	"context"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type Bookings struct{ s *Store }

func (r *Bookings) slotTaken(b *domain.Booking) bool {
	day := domain.EventDay(b.EventDate)
	for id, other := range r.s.bookings {
		if id != b.ID && other.VendorID == b.VendorID && domain.EventDay(other.EventDate).Equal(day) {
			return true
		}
	}
	return false
}

func (r *Bookings) Create(ctx context.Context, b *domain.Booking) error {
	unlock, err := r.s.enter(ctx, "bookings.Create")
	if err != nil {
		return err
	}
	defer unlock()

	if r.slotTaken(b) {
		return domain.Conflict("vendor %s is already booked on %s", b.VendorID, b.EventDate.Format("2006-01-02"))
	}
	now := r.s.Now()
	b.ID = newID()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *Bookings) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	unlock, err := r.s.enter(ctx, "bookings.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NotFound("booking not found with id of %s", id)
	}
	return &b, nil
}

func (r *Bookings) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	unlock, err := r.s.enter(ctx, "bookings.List")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []domain.Booking{}
	for _, b := range r.s.bookings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.VendorID != "" && b.VendorID != f.VendorID {
			continue
		}
		out = append(out, b)
	}
	sortBy(out, false, func(a, b domain.Booking) bool { return a.EventDate.Before(b.EventDate) })
	return out, nil
}

func (r *Bookings) Update(ctx context.Context, b *domain.Booking) error {
	unlock, err := r.s.enter(ctx, "bookings.Update")
	if err != nil {
		return err
	}
	defer unlock()

	cur, ok := r.s.bookings[b.ID]
	if !ok {
		return domain.NotFound("booking not found with id of %s", b.ID)
	}
	if r.slotTaken(b) {
		return domain.Conflict("vendor %s is already booked on %s", b.VendorID, b.EventDate.Format("2006-01-02"))
	}
	cur.ServiceType = b.ServiceType
	cur.EventDate = b.EventDate
	cur.Location = b.Location
	cur.Guests = b.Guests
	cur.SpecialRequests = b.SpecialRequests
	cur.Status = b.Status
	cur.Price = b.Price
	cur.UpdatedAt = r.s.Now()
	r.s.bookings[cur.ID] = cur
	*b = cur
	return nil
}

func (r *Bookings) SetPayment(ctx context.Context, id, expectIntent string, p domain.Payment) error {
	unlock, err := r.s.enter(ctx, "bookings.SetPayment")
	if err != nil {
		return err
	}
	defer unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return domain.NotFound("booking not found with id of %s", id)
	}
	if b.PaymentIntentID != expectIntent {
		return domain.Conflict("booking %s payment intent has changed", id)
	}
	b.AmountPaid = p.AmountPaid
	b.PaymentStatus = p.Status
	b.PaymentIntentID = p.IntentID
	b.UpdatedAt = r.s.Now()
	r.s.bookings[id] = b
	return nil
}

func (r *Bookings) Delete(ctx context.Context, id string) error {
	unlock, err := r.s.enter(ctx, "bookings.Delete")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.s.bookings[id]; !ok {
		return domain.NotFound("booking not found with id of %s", id)
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *Bookings) DeleteByVendor(ctx context.Context, vendorID string) (int64, error) {
	unlock, err := r.s.enter(ctx, "bookings.DeleteByVendor")
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for id, b := range r.s.bookings {
		if b.VendorID == vendorID {
			delete(r.s.bookings, id)
			n++
		}
	}
	return n, nil
}

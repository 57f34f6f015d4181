package memory

import (
	"context"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type Reviews struct{ s *Store }

func (r *Reviews) Create(ctx context.Context, review *domain.Review) error {
	unlock, err := r.s.enter(ctx, "reviews.Create")
	if err != nil {
		return err
	}
	defer unlock()

	for _, other := range r.s.reviews {
		if other.BookingID == review.BookingID {
			return domain.Conflict("booking %s has already been reviewed", review.BookingID)
		}
	}
	review.ID = newID()
	review.CreatedAt = r.s.Now()
	r.s.reviews[review.ID] = *review
	return nil
}

func (r *Reviews) ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error) {
	unlock, err := r.s.enter(ctx, "reviews.ListByVendor")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []domain.Review{}
	for _, rv := range r.s.reviews {
		if rv.VendorID == vendorID {
			out = append(out, rv)
		}
	}
	sortBy(out, true, func(a, b domain.Review) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return out, nil
}

func (r *Reviews) AverageRating(ctx context.Context, vendorID string) (float64, int, error) {
	unlock, err := r.s.enter(ctx, "reviews.AverageRating")
	if err != nil {
		return 0, 0, err
	}
	defer unlock()

	sum, n := 0, 0
	for _, rv := range r.s.reviews {
		if rv.VendorID == vendorID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (r *Reviews) DeleteByVendor(ctx context.Context, vendorID string) (int64, error) {
	unlock, err := r.s.enter(ctx, "reviews.DeleteByVendor")
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	for id, rv := range r.s.reviews {
		if rv.VendorID == vendorID {
			delete(r.s.reviews, id)
			n++
		}
	}
	return n, nil
}

package memory

import (
	"context"
	"slices"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type Vendors struct{ s *Store }

func cloneVendor(v domain.Vendor) domain.Vendor {
	v.Pricing = slices.Clone(v.Pricing)
	v.PortfolioImages = slices.Clone(v.PortfolioImages)
	if v.Rating != nil {
		r := *v.Rating
		v.Rating = &r
	}
	return v
}

func (r *Vendors) Create(ctx context.Context, vendor *domain.Vendor) error {
	unlock, err := r.s.enter(ctx, "vendors.Create")
	if err != nil {
		return err
	}
	defer unlock()

	for _, v := range r.s.vendors {
		if v.UserID == vendor.UserID {
			return domain.Conflict("user %s is already a vendor", vendor.UserID)
		}
	}
	now := r.s.Now()
	vendor.ID = newID()
	vendor.CreatedAt, vendor.UpdatedAt = now, now
	r.s.vendors[vendor.ID] = cloneVendor(*vendor)
	return nil
}

func (r *Vendors) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	unlock, err := r.s.enter(ctx, "vendors.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	v, ok := r.s.vendors[id]
	if !ok {
		return nil, domain.NotFound("vendor not found with id of %s", id)
	}
	v = cloneVendor(v)
	return &v, nil
}

func (r *Vendors) GetByUserID(ctx context.Context, userID string) (*domain.Vendor, error) {
	unlock, err := r.s.enter(ctx, "vendors.GetByUserID")
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, v := range r.s.vendors {
		if v.UserID == userID {
			v = cloneVendor(v)
			return &v, nil
		}
	}
	return nil, domain.NotFound("no vendor owned by user %s", userID)
}

var vendorSortFields = map[string]bool{"createdAt": true, "businessName": true, "rating": true}

func (r *Vendors) List(ctx context.Context, f domain.VendorFilter, q domain.ListQuery) ([]domain.Vendor, int64, error) {
	unlock, err := r.s.enter(ctx, "vendors.List")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	var out []domain.Vendor
	for _, v := range r.s.vendors {
		if f.ServiceType != "" && v.ServiceType != f.ServiceType {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.Search != "" && !containsFold(v.BusinessName, f.Search) {
			continue
		}
		out = append(out, cloneVendor(v))
	}
	field, desc := q.SortField(vendorSortFields, "-createdAt")
	sortBy(out, desc, func(a, b domain.Vendor) bool {
		switch field {
		case "businessName":
			return a.BusinessName < b.BusinessName
		case "rating":
			return ratingOf(a) < ratingOf(b)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return page(out, q), int64(len(out)), nil
}

func ratingOf(v domain.Vendor) float64 {
	if v.Rating == nil {
		return 0
	}
	return *v.Rating
}

func (r *Vendors) Update(ctx context.Context, vendor *domain.Vendor) error {
	unlock, err := r.s.enter(ctx, "vendors.Update")
	if err != nil {
		return err
	}
	defer unlock()

	v, ok := r.s.vendors[vendor.ID]
	if !ok {
		return domain.NotFound("vendor not found with id of %s", vendor.ID)
	}
	v.BusinessName = vendor.BusinessName
	v.Description = vendor.Description
	v.ServiceType = vendor.ServiceType
	v.Website = vendor.Website
	v.Phone = vendor.Phone
	v.Address = vendor.Address
	v.Pricing = vendor.Pricing
	v.PortfolioImages = vendor.PortfolioImages
	v.Photo = vendor.Photo
	v.UpdatedAt = r.s.Now()
	r.s.vendors[v.ID] = cloneVendor(v)
	*vendor = cloneVendor(v)
	return nil
}

func (r *Vendors) SetStatus(ctx context.Context, id string, status domain.VendorStatus) error {
	return r.mutate(ctx, "vendors.SetStatus", id, func(v *domain.Vendor) { v.Status = status })
}

func (r *Vendors) SetRating(ctx context.Context, id string, rating *float64) error {
	return r.mutate(ctx, "vendors.SetRating", id, func(v *domain.Vendor) { v.Rating = rating })
}

func (r *Vendors) mutate(ctx context.Context, op, id string, fn func(v *domain.Vendor)) error {
	unlock, err := r.s.enter(ctx, op)
	if err != nil {
		return err
	}
	defer unlock()

	v, ok := r.s.vendors[id]
	if !ok {
		return domain.NotFound("vendor not found with id of %s", id)
	}
	fn(&v)
	v.UpdatedAt = r.s.Now()
	r.s.vendors[id] = cloneVendor(v)
	return nil
}

func (r *Vendors) Delete(ctx context.Context, id string) error {
	unlock, err := r.s.enter(ctx, "vendors.Delete")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.s.vendors[id]; !ok {
		return domain.NotFound("vendor not found with id of %s", id)
	}
	delete(r.s.vendors, id)
	return nil
}

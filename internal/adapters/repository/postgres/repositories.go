package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	m.Email = strings.ToLower(m.Email)
	if err := r.s.conn(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Conflict("email %s is already registered", u.Email)
		}
		return mapErr(err, "create user")
	}
	*u = *m.toDomain()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	var m userModel
	if err := r.s.conn(ctx).First(&m, "id = ?", uid).Error; err != nil {
		return nil, mapErr(err, "user with id of %s", id)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := r.s.conn(ctx).First(&m, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, mapErr(err, "user with email %s", email)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) GetMany(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := map[string]*domain.User{}
	var keys []any
	for _, id := range ids {
		if u := ref(id); u.String() == id {
			keys = append(keys, u)
		}
	}
	if len(keys) == 0 {
		return out, nil
	}
	var ms []userModel
	if err := r.s.conn(ctx).Where("id IN ?", keys).Find(&ms).Error; err != nil {
		return nil, mapErr(err, "list users")
	}
	for i := range ms {
		out[ms[i].ID.String()] = ms[i].toDomain()
	}
	return out, nil
}

var userColumns = map[string]string{"createdAt": "created_at", "name": "name", "email": "email"}

func (r *UserRepository) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	q = q.Normalize()
	var total int64
	if err := r.s.conn(ctx).Model(&userModel{}).Count(&total).Error; err != nil {
		return nil, 0, mapErr(err, "count users")
	}
	var ms []userModel
	err := r.s.conn(ctx).
		Order(orderBy(q, userColumns, "-createdAt")).
		Offset(q.Skip()).Limit(q.Limit).
		Find(&ms).Error
	if err != nil {
		return nil, 0, mapErr(err, "list users")
	}
	users := make([]domain.User, 0, len(ms))
	for i := range ms {
		users = append(users, *ms[i].toDomain())
	}
	return users, total, nil
}

// updateColumns writes only the named columns of m and reloads it.
func updateColumns(db *gorm.DB, m any, id any, columns ...string) error {
	res := db.Model(m).Where("id = ?", id).Select(columns).Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.First(m, "id = ?", id).Error
}

var (
	userWritable    = []string{"name", "email", "password", "updated_at"}
	vendorWritable  = []string{"business_name", "description", "service_type", "website", "phone", "address", "pricing", "portfolio_images", "photo", "updated_at"}
	bookingWritable = []string{"service_type", "event_date", "location", "guests", "special_requests", "status", "price", "updated_at"}
)

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	uid, err := parseID(u.ID, "user")
	if err != nil {
		return err
	}
	u.Email = strings.ToLower(u.Email)
	u.UpdatedAt = time.Now().UTC()
	m := toUserModel(u)
	if err := updateColumns(r.s.conn(ctx), m, uid, userWritable...); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Conflict("email %s is already registered", u.Email)
		}
		return mapErr(err, "user with id of %s", u.ID)
	}
	*u = *m.toDomain()
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	uid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	res := r.s.conn(ctx).Model(&userModel{}).Where("id = ?", uid).Update("role", string(role))
	if res.Error != nil {
		return mapErr(res.Error, "set role of user %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user not found with id of %s", id)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	res := r.s.conn(ctx).Delete(&userModel{}, "id = ?", uid)
	if res.Error != nil {
		return mapErr(res.Error, "delete user %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user not found with id of %s", id)
	}
	return nil
}

type VendorRepository struct{ s *Store }

func (r *VendorRepository) Create(ctx context.Context, v *domain.Vendor) error {
	m := toVendorModel(v)
	if err := r.s.conn(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Conflict("user %s is already a vendor", v.UserID)
		}
		return mapErr(err, "create vendor")
	}
	*v = *m.toDomain()
	return nil
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	vid, err := parseID(id, "vendor")
	if err != nil {
		return nil, err
	}
	var m vendorModel
	if err := r.s.conn(ctx).First(&m, "id = ?", vid).Error; err != nil {
		return nil, mapErr(err, "vendor with id of %s", id)
	}
	return m.toDomain(), nil
}

func (r *VendorRepository) GetByUserID(ctx context.Context, userID string) (*domain.Vendor, error) {
	var m vendorModel
	if err := r.s.conn(ctx).First(&m, "user_id = ?", ref(userID)).Error; err != nil {
		return nil, mapErr(err, "vendor of user %s", userID)
	}
	return m.toDomain(), nil
}

var vendorColumns = map[string]string{"createdAt": "created_at", "businessName": "business_name", "rating": "rating"}

func (r *VendorRepository) List(ctx context.Context, f domain.VendorFilter, q domain.ListQuery) ([]domain.Vendor, int64, error) {
	q = q.Normalize()
	scope := func(db *gorm.DB) *gorm.DB {
		if f.ServiceType != "" {
			db = db.Where("service_type = ?", string(f.ServiceType))
		}
		if f.Status != "" {
			db = db.Where("status = ?", string(f.Status))
		}
		if f.Search != "" {
			db = db.Where("business_name ILIKE ?", "%"+escapeLike(f.Search)+"%")
		}
		return db
	}

	var total int64
	if err := r.s.conn(ctx).Model(&vendorModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, mapErr(err, "count vendors")
	}
	var ms []vendorModel
	err := r.s.conn(ctx).Scopes(scope).
		Order(orderBy(q, vendorColumns, "-createdAt")).
		Offset(q.Skip()).Limit(q.Limit).
		Find(&ms).Error
	if err != nil {
		return nil, 0, mapErr(err, "list vendors")
	}
	vendors := make([]domain.Vendor, 0, len(ms))
	for i := range ms {
		vendors = append(vendors, *ms[i].toDomain())
	}
	return vendors, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *VendorRepository) Update(ctx context.Context, v *domain.Vendor) error {
	vid, err := parseID(v.ID, "vendor")
	if err != nil {
		return err
	}
	v.UpdatedAt = time.Now().UTC()
	m := toVendorModel(v)
	if err := updateColumns(r.s.conn(ctx), m, vid, vendorWritable...); err != nil {
		return mapErr(err, "vendor with id of %s", v.ID)
	}
	*v = *m.toDomain()
	return nil
}

func (r *VendorRepository) set(ctx context.Context, id, column string, value any) error {
	vid, err := parseID(id, "vendor")
	if err != nil {
		return err
	}
	res := r.s.conn(ctx).Model(&vendorModel{}).Where("id = ?", vid).Update(column, value)
	if res.Error != nil {
		return mapErr(res.Error, "update vendor %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("vendor not found with id of %s", id)
	}
	return nil
}

func (r *VendorRepository) SetStatus(ctx context.Context, id string, status domain.VendorStatus) error {
	return r.set(ctx, id, "status", string(status))
}

func (r *VendorRepository) SetRating(ctx context.Context, id string, rating *float64) error {
	return r.set(ctx, id, "rating", rating)
}

func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	vid, err := parseID(id, "vendor")
	if err != nil {
		return err
	}
	res := r.s.conn(ctx).Delete(&vendorModel{}, "id = ?", vid)
	if res.Error != nil {
		return mapErr(res.Error, "delete vendor %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("vendor not found with id of %s", id)
	}
	return nil
}

type BookingRepository struct{ s *Store }

func slotConflict(b *domain.Booking) error {
	return domain.Conflict("vendor %s is already booked on %s", b.VendorID, domain.EventDay(b.EventDate).Format("2006-01-02"))
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.s.conn(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return slotConflict(b)
		}
		return mapErr(err, "create booking")
	}
	*b = *m.toDomain()
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	bid, err := parseID(id, "booking")
	if err != nil {
		return nil, err
	}
	var m bookingModel
	if err := r.s.conn(ctx).First(&m, "id = ?", bid).Error; err != nil {
		return nil, mapErr(err, "booking with id of %s", id)
	}
	return m.toDomain(), nil
}

func (r *BookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	db := r.s.conn(ctx)
	if f.UserID != "" {
		db = db.Where("user_id = ?", ref(f.UserID))
	}
	if f.VendorID != "" {
		db = db.Where("vendor_id = ?", ref(f.VendorID))
	}
	var ms []bookingModel
	if err := db.Order("event_date ASC").Find(&ms).Error; err != nil {
		return nil, mapErr(err, "list bookings")
	}
	bookings := make([]domain.Booking, 0, len(ms))
	for i := range ms {
		bookings = append(bookings, *ms[i].toDomain())
	}
	return bookings, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	bid, err := parseID(b.ID, "booking")
	if err != nil {
		return err
	}
	b.UpdatedAt = time.Now().UTC()
	m := toBookingModel(b)
	if err := updateColumns(r.s.conn(ctx), m, bid, bookingWritable...); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return slotConflict(b)
		}
		return mapErr(err, "booking with id of %s", b.ID)
	}
	*b = *m.toDomain()
	return nil
}

func (r *BookingRepository) SetPayment(ctx context.Context, id, expectIntent string, p domain.Payment) error {
	bid, err := parseID(id, "booking")
	if err != nil {
		return err
	}
	res := r.s.conn(ctx).Model(&bookingModel{}).
		Where("id = ? AND COALESCE(payment_intent_id, '') = ?", bid, expectIntent).
		Updates(map[string]any{
			"amount_paid":       p.AmountPaid,
			"payment_status":    string(p.Status),
			"payment_intent_id": p.IntentID,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return mapErr(res.Error, "set payment of booking %s", id)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := r.s.conn(ctx).Model(&bookingModel{}).Where("id = ?", bid).Count(&n).Error; err != nil {
		return mapErr(err, "booking with id of %s", id)
	}
	if n == 0 {
		return domain.NotFound("booking not found with id of %s", id)
	}
	return domain.Conflict("booking %s payment intent has changed", id)
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	bid, err := parseID(id, "booking")
	if err != nil {
		return err
	}
	res := r.s.conn(ctx).Delete(&bookingModel{}, "id = ?", bid)
	if res.Error != nil {
		return mapErr(res.Error, "delete booking %s", id)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("booking not found with id of %s", id)
	}
	return nil
}

func (r *BookingRepository) DeleteByVendor(ctx context.Context, vendorID string) (int64, error) {
	res := r.s.conn(ctx).Delete(&bookingModel{}, "vendor_id = ?", ref(vendorID))
	if res.Error != nil {
		return 0, mapErr(res.Error, "delete bookings of vendor %s", vendorID)
	}
	return res.RowsAffected, nil
}

type ReviewRepository struct{ s *Store }

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	m := &reviewModel{
		VendorID:  ref(review.VendorID),
		BookingID: ref(review.BookingID),
		UserID:    ref(review.UserID),
		UserName:  review.UserName,
		Rating:    review.Rating,
		Comment:   review.Comment,
	}
	if err := r.s.conn(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Conflict("booking %s has already been reviewed", review.BookingID)
		}
		return mapErr(err, "create review")
	}
	*review = m.toDomain()
	return nil
}

func (r *ReviewRepository) ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error) {
	var ms []reviewModel
	err := r.s.conn(ctx).Where("vendor_id = ?", ref(vendorID)).Order("created_at DESC").Find(&ms).Error
	if err != nil {
		return nil, mapErr(err, "list reviews")
	}
	reviews := make([]domain.Review, 0, len(ms))
	for i := range ms {
		reviews = append(reviews, ms[i].toDomain())
	}
	return reviews, nil
}

func (r *ReviewRepository) AverageRating(ctx context.Context, vendorID string) (float64, int, error) {
	var row struct {
		Avg   *float64
		Total int
	}
	err := r.s.conn(ctx).Model(&reviewModel{}).
		Select("AVG(rating) AS avg, COUNT(*) AS total").
		Where("vendor_id = ?", ref(vendorID)).
		Scan(&row).Error
	if err != nil {
		return 0, 0, mapErr(err, "average rating")
	}
	if row.Avg == nil {
		return 0, 0, nil
	}
	return *row.Avg, row.Total, nil
}

func (r *ReviewRepository) DeleteByVendor(ctx context.Context, vendorID string) (int64, error) {
	res := r.s.conn(ctx).Delete(&reviewModel{}, "vendor_id = ?", ref(vendorID))
	if res.Error != nil {
		return 0, mapErr(res.Error, "delete reviews of vendor %s", vendorID)
	}
	return res.RowsAffected, nil
}

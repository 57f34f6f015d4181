package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type userModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	Password  string    `gorm:"not null"`
	Role      string    `gorm:"size:20;not null;default:'user'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func toUserModel(u *domain.User) *userModel {
	return &userModel{
		ID:        ref(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           str(m.ID),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.Password,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type vendorModel struct {
	ID              uuid.UUID               `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID               `gorm:"type:uuid;uniqueIndex;not null"`
	BusinessName    string                  `gorm:"size:200;not null"`
	Description     string                  `gorm:"type:text"`
	ServiceType     string                  `gorm:"size:30;index;not null"`
	Website         string                  `gorm:"size:500"`
	Phone           string                  `gorm:"size:50"`
	Address         string                  `gorm:"size:500"`
	Pricing         []domain.PricingPackage `gorm:"serializer:json"`
	PortfolioImages []string                `gorm:"serializer:json"`
	Photo           string                  `gorm:"size:500"`
	Rating          *float64
	Status          string `gorm:"size:20;index;not null;default:'pending'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (vendorModel) TableName() string { return "vendors" }

func (m *vendorModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func toVendorModel(v *domain.Vendor) *vendorModel {
	return &vendorModel{
		ID:              ref(v.ID),
		UserID:          ref(v.UserID),
		BusinessName:    v.BusinessName,
		Description:     v.Description,
		ServiceType:     string(v.ServiceType),
		Website:         v.Website,
		Phone:           v.Phone,
		Address:         v.Address,
		Pricing:         v.Pricing,
		PortfolioImages: v.PortfolioImages,
		Photo:           v.Photo,
		Rating:          v.Rating,
		Status:          string(v.Status),
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func (m *vendorModel) toDomain() *domain.Vendor {
	return &domain.Vendor{
		ID:              str(m.ID),
		UserID:          str(m.UserID),
		BusinessName:    m.BusinessName,
		Description:     m.Description,
		ServiceType:     domain.ServiceType(m.ServiceType),
		Website:         m.Website,
		Phone:           m.Phone,
		Address:         m.Address,
		Pricing:         m.Pricing,
		PortfolioImages: m.PortfolioImages,
		Photo:           m.Photo,
		Rating:          m.Rating,
		Status:          domain.VendorStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type bookingModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;index;not null"`
	VendorID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_event_date"`
	ServiceType     string    `gorm:"size:100;not null"`
	EventDate       time.Time `gorm:"type:date;not null;uniqueIndex:idx_vendor_event_date"`
	Location        string    `gorm:"size:500;not null"`
	Guests          int       `gorm:"not null"`
	SpecialRequests string    `gorm:"type:text"`
	Status          string    `gorm:"size:20;not null;default:'pending'"`
	Price           float64   `gorm:"not null"`
	PaymentStatus   string    `gorm:"size:20;not null;default:'unpaid'"`
	AmountPaid      float64   `gorm:"not null;default:0"`
	PaymentIntentID string    `gorm:"size:100"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (bookingModel) TableName() string { return "bookings" }

func (m *bookingModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func toBookingModel(b *domain.Booking) *bookingModel {
	return &bookingModel{
		ID:              ref(b.ID),
		UserID:          ref(b.UserID),
		VendorID:        ref(b.VendorID),
		ServiceType:     b.ServiceType,
		EventDate:       domain.EventDay(b.EventDate),
		Location:        b.Location,
		Guests:          b.Guests,
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
		Price:           b.Price,
		PaymentStatus:   string(b.PaymentStatus),
		AmountPaid:      b.AmountPaid,
		PaymentIntentID: b.PaymentIntentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (m *bookingModel) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:              str(m.ID),
		UserID:          str(m.UserID),
		VendorID:        str(m.VendorID),
		ServiceType:     m.ServiceType,
		EventDate:       domain.EventDay(m.EventDate),
		Location:        m.Location,
		Guests:          m.Guests,
		SpecialRequests: m.SpecialRequests,
		Status:          domain.BookingStatus(m.Status),
		Price:           m.Price,
		PaymentStatus:   domain.PaymentStatus(m.PaymentStatus),
		AmountPaid:      m.AmountPaid,
		PaymentIntentID: m.PaymentIntentID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type reviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorID  uuid.UUID `gorm:"type:uuid;index;not null"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	UserName  string    `gorm:"size:100"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time
}

func (reviewModel) TableName() string { return "reviews" }

func (m *reviewModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *reviewModel) toDomain() domain.Review {
	return domain.Review{
		ID:        str(m.ID),
		VendorID:  str(m.VendorID),
		BookingID: str(m.BookingID),
		UserID:    str(m.UserID),
		UserName:  m.UserName,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

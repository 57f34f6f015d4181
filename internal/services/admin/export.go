package admin

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/core/policy"
)

const exportSheet = "Bookings"

var exportHeader = []any{
	"Booking", "Event date", "Vendor", "Service", "Customer", "Email",
	"Location", "Guests", "Status", "Price", "Payment", "Paid",
}

// ExportBookings writes every booking as an xlsx workbook, one row per booking
// in event date order.
func (s *service) ExportBookings(ctx context.Context, p domain.Principal, w io.Writer) error {
	if err := policy.Admin(p); err != nil {
		return err
	}

	bookings, err := s.store.Bookings.List(ctx, domain.BookingFilter{})
	if err != nil {
		return err
	}

	userIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		userIDs = append(userIDs, b.UserID)
	}
	users, err := s.store.Users.GetMany(ctx, userIDs)
	if err != nil {
		return err
	}
	vendors := map[string]string{}
	for _, b := range bookings {
		if _, ok := vendors[b.VendorID]; ok {
			continue
		}
		if v, err := s.store.Vendors.GetByID(ctx, b.VendorID); err == nil {
			vendors[b.VendorID] = v.BusinessName
		} else {
			vendors[b.VendorID] = b.VendorID
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return domain.Upstream(err, "name sheet")
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return domain.Upstream(err, "write header")
	}
	if style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	}); err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "L1", style)
	}

	for i, b := range bookings {
		var name, email string
		if u := users[b.UserID]; u != nil {
			name, email = u.Name, u.Email
		}
		row := []any{
			b.ID, b.EventDate.Format("2006-01-02"), vendors[b.VendorID], b.ServiceType,
			name, email, b.Location, b.Guests, string(b.Status),
			b.Price, string(b.PaymentStatus), b.AmountPaid,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return domain.Upstream(err, "row %d", i+2)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return domain.Upstream(err, "write row %d", i+2)
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "L", 16)

	if _, err := f.WriteTo(w); err != nil {
		return domain.Upstream(err, "write workbook")
	}
	return nil
}

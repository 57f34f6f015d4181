// Package policy is the single place where access to vendors and bookings is
// decided. Every function is pure: it looks only at the principal, the action
// and the ownership facts of the record.
package policy

import (
	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionUpload Action = "upload"
	ActionPay    Action = "pay"
	ActionReview Action = "review"
)

// BookingFacts are the ownership facts of a booking.
type BookingFacts struct {
	UserID   string
	VendorID string
}

// Vendor decides whether p may perform action on a vendor owned by ownerID.
// Reads and creates are open to everyone; the one-vendor-per-user rule is a
// conflict, not an authorization concern.
func Vendor(p domain.Principal, action Action, ownerID string) error {
	if p.IsAdmin() {
		return nil
	}
	switch action {
	case ActionRead:
		return nil
	case ActionCreate:
		if p.ID == "" {
			return domain.Unauthorized("authentication required to create a vendor")
		}
		return nil
	case ActionUpdate, ActionDelete, ActionUpload:
		if p.ID != "" && p.ID == ownerID {
			return nil
		}
		return domain.Unauthorized("user %s is not authorized to %s this vendor", p.ID, action)
	}
	return domain.Unauthorized("unknown vendor action %q", action)
}

// Booking decides whether p may perform action on a booking.
func Booking(p domain.Principal, action Action, b BookingFacts) error {
	if p.IsAdmin() && action != ActionReview {
		return nil
	}
	isOwner := p.ID != "" && p.ID == b.UserID
	isVendor := p.VendorID != "" && p.VendorID == b.VendorID

	switch action {
	case ActionCreate:
		if p.Role == domain.RoleUser {
			return nil
		}
		return domain.Unauthorized("role %s is not authorized to create bookings", p.Role)
	case ActionRead, ActionUpdate:
		if isOwner || isVendor {
			return nil
		}
	case ActionDelete, ActionPay:
		if isOwner {
			return nil
		}
	case ActionReview:
		// admins do not review on behalf of users
		if isOwner {
			return nil
		}
	}
	return domain.Unauthorized("user %s is not authorized to %s this booking", p.ID, action)
}

// BookingUpdateFields enforces that a vendor principal changes nothing but the
// booking status. fields are the json names present in the request body.
func BookingUpdateFields(p domain.Principal, fields []string) error {
	if p.Role != domain.RoleVendor {
		return nil
	}
	if len(fields) != 1 || fields[0] != "status" {
		return domain.Validation("vendors can only update booking status")
	}
	return nil
}

// Admin gates administrative operations.
func Admin(p domain.Principal) error {
	if p.IsAdmin() {
		return nil
	}
	return domain.Unauthorized("user %s is not an administrator", p.ID)
}

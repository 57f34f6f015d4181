package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

var (
	admin      = domain.Principal{ID: "admin", Role: domain.RoleAdmin}
	owner      = domain.Principal{ID: "u1", Role: domain.RoleUser}
	stranger   = domain.Principal{ID: "u2", Role: domain.RoleUser}
	vendorUser = domain.Principal{ID: "u3", Role: domain.RoleVendor, VendorID: "v1"}
	otherShop  = domain.Principal{ID: "u4", Role: domain.RoleVendor, VendorID: "v9"}
)

func TestVendorMutationRequiresOwnerOrAdmin(t *testing.T) {
	for _, action := range []Action{ActionUpdate, ActionDelete, ActionUpload} {
		assert.NoError(t, Vendor(admin, action, "u1"), action)
		assert.NoError(t, Vendor(owner, action, "u1"), action)

		err := Vendor(stranger, action, "u1")
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), action)
	}
}

func TestVendorReadIsPublic(t *testing.T) {
	assert.NoError(t, Vendor(domain.Principal{}, ActionRead, "u1"))
	assert.True(t, errors.Is(Vendor(domain.Principal{}, ActionCreate, ""), domain.ErrUnauthorized))
	assert.NoError(t, Vendor(vendorUser, ActionCreate, ""))
}

func TestBookingAccess(t *testing.T) {
	facts := BookingFacts{UserID: "u1", VendorID: "v1"}

	tests := []struct {
		name   string
		p      domain.Principal
		action Action
		allow  bool
	}{
		{"owner reads", owner, ActionRead, true},
		{"vendor reads", vendorUser, ActionRead, true},
		{"admin reads", admin, ActionRead, true},
		{"stranger reads", stranger, ActionRead, false},
		{"other vendor reads", otherShop, ActionRead, false},
		{"vendor updates", vendorUser, ActionUpdate, true},
		{"owner deletes", owner, ActionDelete, true},
		{"vendor deletes", vendorUser, ActionDelete, false},
		{"admin deletes", admin, ActionDelete, true},
		{"user creates", stranger, ActionCreate, true},
		{"vendor creates", vendorUser, ActionCreate, false},
		{"owner pays", owner, ActionPay, true},
		{"vendor pays", vendorUser, ActionPay, false},
		{"admin pays", admin, ActionPay, true},
		{"owner reviews", owner, ActionReview, true},
		{"vendor reviews", vendorUser, ActionReview, false},
		{"admin reviews", admin, ActionReview, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Booking(tc.p, tc.action, facts)
			if tc.allow {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		})
	}
}

func TestVendorMayOnlyTouchStatus(t *testing.T) {
	assert.NoError(t, BookingUpdateFields(vendorUser, []string{"status"}))
	assert.NoError(t, BookingUpdateFields(owner, []string{"status", "price"}))

	for _, fields := range [][]string{nil, {"price"}, {"status", "price"}} {
		err := BookingUpdateFields(vendorUser, fields)
		assert.True(t, errors.Is(err, domain.ErrValidation), "%v", fields)
		assert.False(t, errors.Is(err, domain.ErrUnauthorized))
	}
}

func TestAdminGate(t *testing.T) {
	assert.NoError(t, Admin(admin))
	assert.True(t, errors.Is(Admin(vendorUser), domain.ErrUnauthorized))
}

package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("vendor %s already booked", "v1"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, KindUpstream, KindOf(errors.New("boom")))
}

func TestUpstreamKeepsTaggedErrors(t *testing.T) {
	nf := NotFound("booking not found")
	assert.Same(t, nf, Upstream(nf, "load booking"))
	assert.Nil(t, Upstream(nil, "noop"))

	up := Upstream(errors.New("connection refused"), "load booking")
	assert.True(t, errors.Is(up, ErrUpstream))
	assert.Contains(t, up.Error(), "connection refused")
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Vendor ")
	require.NoError(t, err)
	assert.Equal(t, RoleVendor, r)

	_, err = ParseRole("superuser")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingCancelled, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEventDayNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	d := EventDay(time.Date(2024, 6, 1, 15, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)
}

func TestCheckReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()
	bad := 7.0
	vendor := &Vendor{
		UserID:       "u1",
		BusinessName: "Acme Photos",
		Description:  "Weddings",
		ServiceType:  "florist",
		Website:      "ftp://acme.example",
		Phone:        "555",
		Address:      "1 Main St",
		Rating:       &bad,
		Status:       VendorPending,
	}
	err := Check(v, vendor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "serviceType must be one of")
	assert.Contains(t, err.Error(), "website must be a valid URL")
	assert.Contains(t, err.Error(), "rating must not be more than 5")
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, Limit: 1000, Sort: "-rating"}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageLimit, q.Limit)
	assert.Equal(t, 0, q.Skip())

	field, desc := q.SortField(map[string]bool{"rating": true}, "-createdAt")
	assert.Equal(t, "rating", field)
	assert.True(t, desc)

	field, desc = ListQuery{Sort: "password"}.SortField(map[string]bool{"rating": true}, "-createdAt")
	assert.Equal(t, "createdAt", field)
	assert.True(t, desc)
}

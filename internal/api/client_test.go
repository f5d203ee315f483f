package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehero/heroctl/internal/models"
)

type stubRefresher struct {
	calls int
	token string
}

func (s *stubRefresher) ForceRefreshToken(ctx context.Context) string {
	s.calls++
	return s.token
}

func TestListServicesEncodesQuery(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode([]models.Service{
			{ID: "s1", ServiceName: "Deep Cleaning", Price: 80},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, nil)
	services, err := client.ListServices(context.Background(), ServiceQuery{
		Search:   "clean",
		MinPrice: 50,
		MaxPrice: 120.5,
	})
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Deep Cleaning", services[0].ServiceName)

	assert.Equal(t, []string{"clean"}, gotQuery["search"])
	assert.Equal(t, []string{"50"}, gotQuery["minPrice"])
	assert.Equal(t, []string{"120.5"}, gotQuery["maxPrice"])
}

func TestListServicesOmitsZeroFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		json.NewEncoder(w).Encode([]models.Service{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, nil)
	_, err := client.ListServices(context.Background(), ServiceQuery{})
	require.NoError(t, err)
}

func TestGetServiceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Service not found"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, nil)
	_, err := client.GetService(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Service not found")
}

func TestBusinessRejectionKeepsServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "cannot book own service"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, nil)
	_, err := client.CreateBooking(context.Background(), BookingRequest{
		UserEmail:   "user@example.com",
		ServiceID:   "s1",
		BookingDate: "2026-09-15",
		Price:       80,
	})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "cannot book own service", apiErr.Message)
	assert.True(t, apiErr.IsAuthFailure())
}

func TestCreateBookingForcesTokenRefresh(t *testing.T) {
	var gotBody BookingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bookings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(models.Booking{ID: "b1", ServiceID: gotBody.ServiceID})
	}))
	defer srv.Close()

	refresher := &stubRefresher{token: "fresh-token"}
	client := NewClient(srv.URL, srv.Client(), refresher, nil)

	booking, err := client.CreateBooking(context.Background(), BookingRequest{
		UserEmail:   "user@example.com",
		ServiceID:   "s1",
		BookingDate: "2026-09-15",
		Price:       80,
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", booking.ID)
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, "user@example.com", gotBody.UserEmail)
	assert.Equal(t, "2026-09-15", gotBody.BookingDate)
}

func TestBookingsForUserEscapesEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings/user@example.com", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Booking{
			{ID: "b1", UserEmail: "user@example.com", Service: &models.Service{ServiceName: "Plumbing"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, nil)
	bookings, err := client.BookingsForUser(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.NotNil(t, bookings[0].Service)
	assert.Equal(t, "Plumbing", bookings[0].Service.ServiceName)
}

func TestCancelBooking(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"deletedCount": 1})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, nil)
	require.NoError(t, client.CancelBooking(context.Background(), "b1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/bookings/b1", gotPath)
}

func TestProviderStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/provider/stats/pro@example.com", r.URL.Path)
		json.NewEncoder(w).Encode(models.ProviderStats{
			TotalServices: 3,
			TotalBookings: 12,
			TotalRevenue:  960,
			AverageRating: 4.5,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, nil)
	stats, err := client.ProviderStats(context.Background(), "pro@example.com")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalBookings)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
}

func TestBookingRequestValidate(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	base := BookingRequest{
		UserEmail:   "user@example.com",
		ServiceID:   "s1",
		BookingDate: "2026-09-15",
		Price:       80,
	}

	assert.NoError(t, base.Validate(now))

	sameDay := base
	sameDay.BookingDate = "2026-08-31"
	assert.NoError(t, sameDay.Validate(now), "today is still bookable")

	past := base
	past.BookingDate = "2026-08-30"
	assert.ErrorContains(t, past.Validate(now), "past")

	malformed := base
	malformed.BookingDate = "15/09/2026"
	assert.ErrorContains(t, malformed.Validate(now), "format")

	missing := base
	missing.BookingDate = ""
	assert.ErrorContains(t, missing.Validate(now), "booking date")

	noUser := base
	noUser.UserEmail = ""
	assert.ErrorContains(t, noUser.Validate(now), "email")
}

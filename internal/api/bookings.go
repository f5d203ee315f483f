package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/homehero/heroctl/internal/models"
)

// BookingRequest is the payload for creating a booking.
type BookingRequest struct {
	UserEmail   string  `json:"userEmail"`
	ServiceID   string  `json:"serviceId"`
	BookingDate string  `json:"bookingDate"`
	Price       float64 `json:"price"`
}

// Validate checks the request shape before dispatch. The server remains the
// authority on ownership and date rules; this only catches what a form
// would: missing fields, a malformed date, a date already in the past.
func (r BookingRequest) Validate(now time.Time) error {
	if r.UserEmail == "" {
		return errors.New("a signed-in user email is required")
	}
	if r.ServiceID == "" {
		return errors.New("a service id is required")
	}
	if r.BookingDate == "" {
		return errors.New("a booking date is required")
	}
	date, err := time.Parse(models.BookingDateLayout, r.BookingDate)
	if err != nil {
		return fmt.Errorf("booking date must be in %s format", models.BookingDateLayout)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return errors.New("booking date cannot be in the past")
	}
	return nil
}

// CreateBooking books a service. Requires auth. The bearer token is
// force-refreshed first so the sensitive write never rides a token at the
// end of its window.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	if c.refresher != nil {
		c.refresher.ForceRefreshToken(ctx)
	}

	var booking models.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", nil, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// BookingsForUser returns a user's bookings with embedded services.
// Requires auth.
func (c *Client) BookingsForUser(ctx context.Context, email string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(email), nil, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CancelBooking deletes a booking. Requires auth.
func (c *Client) CancelBooking(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(id), nil, nil, nil)
}

// ProviderStats returns aggregate statistics for a provider. Requires auth.
func (c *Client) ProviderStats(ctx context.Context, email string) (*models.ProviderStats, error) {
	var stats models.ProviderStats
	if err := c.do(ctx, http.MethodGet, "/provider/stats/"+url.PathEscape(email), nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

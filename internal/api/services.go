package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/homehero/heroctl/internal/models"
)

// ServiceQuery filters the services listing. Zero values are omitted.
type ServiceQuery struct {
	Search   string
	MinPrice float64
	MaxPrice float64
}

// ListServices returns services matching the query.
func (c *Client) ListServices(ctx context.Context, q ServiceQuery) ([]models.Service, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.MinPrice > 0 {
		query.Set("minPrice", itoa(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		query.Set("maxPrice", itoa(q.MaxPrice))
	}

	var services []models.Service
	if err := c.do(ctx, http.MethodGet, "/services", query, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// TopRatedServices returns the highest-rated services with embedded reviews.
func (c *Client) TopRatedServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := c.do(ctx, http.MethodGet, "/services/top-rated", nil, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// GetService fetches one service by id.
func (c *Client) GetService(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := c.do(ctx, http.MethodGet, "/services/"+url.PathEscape(id), nil, nil, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// CreateService lists a new service. Requires auth.
func (c *Client) CreateService(ctx context.Context, service models.Service) (*models.Service, error) {
	var created models.Service
	if err := c.do(ctx, http.MethodPost, "/services", nil, service, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateService patches an existing service. Requires auth.
func (c *Client) UpdateService(ctx context.Context, id string, service models.Service) (*models.Service, error) {
	var updated models.Service
	if err := c.do(ctx, http.MethodPatch, "/services/"+url.PathEscape(id), nil, service, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteService removes a service listing. Requires auth.
func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/services/"+url.PathEscape(id), nil, nil, nil)
}

// ServicesByProvider returns the services owned by a provider. Requires auth.
func (c *Client) ServicesByProvider(ctx context.Context, email string) ([]models.Service, error) {
	var services []models.Service
	if err := c.do(ctx, http.MethodGet, "/services/provider/"+url.PathEscape(email), nil, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// AddReview attaches a review to a service. Requires auth.
func (c *Client) AddReview(ctx context.Context, serviceID string, review models.Review) error {
	return c.do(ctx, http.MethodPost, "/services/"+url.PathEscape(serviceID)+"/reviews", nil, review, nil)
}

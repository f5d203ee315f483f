package models

import "time"

// Service is a marketplace service listing.
type Service struct {
	ID            string   `json:"_id"`
	ServiceName   string   `json:"serviceName"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	ProviderName  string   `json:"providerName"`
	ProviderEmail string   `json:"providerEmail"`
	ProviderImage string   `json:"providerImage,omitempty"`
	Reviews       []Review `json:"reviews,omitempty"`
}

// AverageRating computes the mean review rating, 0 when unreviewed.
func (s *Service) AverageRating() float64 {
	if len(s.Reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range s.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(s.Reviews))
}

// Review is a user rating attached to a service.
type Review struct {
	UserEmail string    `json:"userEmail"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

package models

// BookingDateLayout is the wire format for booking dates.
const BookingDateLayout = "2006-01-02"

// Booking is a confirmed reservation of a service by a user.
type Booking struct {
	ID          string   `json:"_id"`
	UserEmail   string   `json:"userEmail"`
	ServiceID   string   `json:"serviceId"`
	BookingDate string   `json:"bookingDate"`
	Price       float64  `json:"price"`
	Service     *Service `json:"service,omitempty"`
}

// ChartPoint is one labeled value in a provider statistics chart series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ProviderStats aggregates a provider's marketplace activity.
type ProviderStats struct {
	TotalServices            int          `json:"totalServices"`
	TotalBookings            int          `json:"totalBookings"`
	TotalRevenue             float64      `json:"totalRevenue"`
	AverageRating            float64      `json:"averageRating"`
	BookingsChartData        []ChartPoint `json:"bookingsChartData"`
	RevenueChartData         []ChartPoint `json:"revenueChartData"`
	ServiceBookingsChartData []ChartPoint `json:"serviceBookingsChartData"`
}

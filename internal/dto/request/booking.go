package request

type CreateBookingRequest struct {
	ShowtimeID    string   `json:"showtime_id" validate:"required,uuid4"`
	Seats         []string `json:"seats" validate:"required,min=1,max=10,unique,dive,min=2,max=4"`
	PaymentMethod string   `json:"payment_method" validate:"required,min=2,max=32"`
	TotalPrice    float64  `json:"total_price" validate:"required,gt=0"`
	// TransactionID is an optional reference from the (simulated) payment
	// provider, stored verbatim on the booking.
	TransactionID *string `json:"transaction_id,omitempty"`
}

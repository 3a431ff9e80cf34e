package response

import (
	"time"

	"movie-ticketing/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	BookingCode   string               `json:"booking_code"`
	UserID        string               `json:"user_id"`
	ShowtimeID    string               `json:"showtime_id"`
	MovieTitle    string               `json:"movie_title,omitempty"`
	CinemaName    string               `json:"cinema_name,omitempty"`
	ScreenName    string               `json:"screen_name,omitempty"`
	StartsAt      string               `json:"starts_at,omitempty"`
	Seats         []string             `json:"seats"`
	TotalPrice    float64              `json:"total_price"`
	PaymentMethod string               `json:"payment_method"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	QRCodeData    string               `json:"qr_code_data,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

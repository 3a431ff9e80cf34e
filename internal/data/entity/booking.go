package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking is one confirmed reservation. It is written exactly once by the
// booking transaction (insert as pending, mark paid before commit) and is
// immutable afterward. Movie and cinema references are denormalized from the
// showtime for query convenience.
type Booking struct {
	Base
	BookingCode   string        `db:"booking_code"`
	UserID        uuid.UUID     `db:"user_id"`
	MovieID       uuid.UUID     `db:"movie_id"`
	CinemaID      uuid.UUID     `db:"cinema_id"`
	ShowtimeID    uuid.UUID     `db:"showtime_id"`
	Seats         []string      `db:"seats"`
	TotalPrice    float64       `db:"total_price"`
	PaymentMethod string        `db:"payment_method"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	TransactionID *string       `db:"transaction_id"`
	QRCodeData    string        `db:"qr_code_data"`
}

package entity

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	FullName     string   `db:"full_name"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Role         UserRole `db:"role"`
	// BookingIDs is the append-only back-reference to the user's bookings,
	// in creation order. The coordinator appends inside the booking
	// transaction; nothing ever removes from it.
	BookingIDs []uuid.UUID `db:"booking_ids"`
}

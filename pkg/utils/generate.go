package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== BOOKING CODE ====================

// GenerateBookingCode creates the human-facing booking reference.
// Format: TIX-YYYYMMDD-HHMMSS-XXXXXXXX where the suffix is 4 random bytes.
// The timestamp component keeps codes roughly sortable; the random suffix
// makes collisions negligible at expected booking volume. The unique index
// on bookings.booking_code is the only backstop if one does occur.
func GenerateBookingCode() string {
	now := time.Now().UTC()

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// nanosecond bits so the code is still well-formed.
		return fmt.Sprintf("TIX-%s-%s-%08X",
			now.Format("20060102"), now.Format("150405"), now.UnixNano()&0xFFFFFFFF)
	}

	return fmt.Sprintf("TIX-%s-%s-%s",
		now.Format("20060102"),
		now.Format("150405"),
		strings.ToUpper(hex.EncodeToString(buf)),
	)
}

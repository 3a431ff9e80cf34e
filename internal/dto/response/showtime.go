package response

import (
	"movie-ticketing/internal/data/entity"
)

type ShowtimeResponse struct {
	ID           string   `json:"id"`
	MovieID      string   `json:"movie_id"`
	MovieTitle   string   `json:"movie_title,omitempty"`
	CinemaID     string   `json:"cinema_id"`
	CinemaName   string   `json:"cinema_name,omitempty"`
	ScreenName   string   `json:"screen_name"`
	StartsAt     string   `json:"starts_at"`
	EndsAt       string   `json:"ends_at"`
	PricePerSeat float64  `json:"price_per_seat"`
	BookedSeats  []string `json:"booked_seats"`
}

func ShowtimeToResponse(showtime *entity.Showtime) ShowtimeResponse {
	booked := showtime.BookedSeats
	if booked == nil {
		booked = []string{}
	}

	return ShowtimeResponse{
		ID:           showtime.ID.String(),
		MovieID:      showtime.MovieID.String(),
		CinemaID:     showtime.CinemaID.String(),
		ScreenName:   showtime.ScreenName,
		StartsAt:     showtime.StartsAt.Format("2006-01-02 15:04"),
		EndsAt:       showtime.EndsAt.Format("2006-01-02 15:04"),
		PricePerSeat: showtime.PricePerSeat,
		BookedSeats:  booked,
	}
}

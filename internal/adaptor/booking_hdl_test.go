package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/dto/response"
	"movie-ticketing/internal/usecase"
	"movie-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBookingService struct {
	createErr error
	created   *response.BookingResponse
}

func (s *stubBookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.created, nil
}

func (s *stubBookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	return response.NewPaginatedResponse([]response.BookingResponse{}, req.Page, req.PerPage, 0), nil
}

func (s *stubBookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return nil, usecase.ErrBookingNotFound
}

func createBookingRequest(t *testing.T) *http.Request {
	t.Helper()

	body := `{"showtime_id":"` + uuid.New().String() + `","seats":["B1","B2"],"payment_method":"card","total_price":20.00}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	ctx := utils.SetUserContext(req.Context(), uuid.New(), "customer")
	return req.WithContext(ctx)
}

func TestCreateBookingHandler_Success(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{
		created: &response.BookingResponse{BookingCode: "TIX-20260829-101500-AB12CD34"},
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.CreateBooking(rec, createBookingRequest(t))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Status)
}

func TestCreateBookingHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"showtime not found", usecase.ErrShowtimeNotFound, http.StatusNotFound},
		{"seat conflict", usecase.ErrSeatConflict, http.StatusConflict},
		{"invalid request", usecase.ErrInvalidRequest, http.StatusBadRequest},
		{"wrapped seat conflict", errors.Join(errors.New("ctx"), usecase.ErrSeatConflict), http.StatusConflict},
		{"internal error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewBookingHandler(&stubBookingService{createErr: tc.err}, zap.NewNop())

			rec := httptest.NewRecorder()
			handler.CreateBooking(rec, createBookingRequest(t))

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestCreateBookingHandler_PriceMismatchIncludesExpectedPrice(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{
		createErr: &usecase.PriceMismatchError{Expected: 10.00, Submitted: 5.00},
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.CreateBooking(rec, createBookingRequest(t))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	payload, ok := resp.Errors.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 10.00, payload["expected_price"])
}

func TestCreateBookingHandler_RequiresAuthentication(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.CreateBooking(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBookingHandler_RejectsMalformedBody(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{not json`))
	ctx := utils.SetUserContext(req.Context(), uuid.New(), "customer")
	rec := httptest.NewRecorder()
	handler.CreateBooking(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

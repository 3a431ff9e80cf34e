package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"movie-ticketing/internal/data/entity"
	"movie-ticketing/internal/data/repository"
	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/queue"
	"movie-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==================== IN-MEMORY FAKES ====================

// fakeStore emulates the database: one mutex plays the role of the storage
// layer's atomic conditional-update guarantee, and fakeTx keeps an undo log
// so a rollback restores every write made through it.
type fakeStore struct {
	mu        sync.Mutex
	showtimes map[uuid.UUID]*entity.Showtime
	bookings  map[uuid.UUID]*entity.Booking
	users     map[uuid.UUID]*entity.User
	movies    map[uuid.UUID]*entity.Movie
	cinemas   map[uuid.UUID]*entity.Cinema

	failCreateBooking bool
	failAppendUser    bool
	failMarkPaid      bool

	begun      int
	committed  int
	rolledBack int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		showtimes: make(map[uuid.UUID]*entity.Showtime),
		bookings:  make(map[uuid.UUID]*entity.Booking),
		users:     make(map[uuid.UUID]*entity.User),
		movies:    make(map[uuid.UUID]*entity.Movie),
		cinemas:   make(map[uuid.UUID]*entity.Cinema),
	}
}

type fakeDB struct {
	store *fakeStore
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not used")
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not used")
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("not used")
}

func (db *fakeDB) Begin(ctx context.Context) (database.Tx, error) {
	db.store.mu.Lock()
	db.store.begun++
	db.store.mu.Unlock()
	return &fakeTx{store: db.store}, nil
}

func (db *fakeDB) Ping(ctx context.Context) error { return nil }
func (db *fakeDB) Close()                         {}

type fakeTx struct {
	store *fakeStore
	undo  []func()
	done  bool
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not used")
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not used")
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	panic("not used")
}

func (tx *fakeTx) addUndo(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.done = true
	tx.undo = nil
	tx.store.committed++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if tx.done {
		return nil
	}
	tx.done = true
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	tx.store.rolledBack++
	return nil
}

// asFakeTx fails the test when a transactional method runs outside a transaction.
func asFakeTx(t *testing.T, q database.Querier) *fakeTx {
	t.Helper()
	tx, ok := q.(*fakeTx)
	require.True(t, ok, "transactional repository method called without a transaction")
	return tx
}

type fakeShowtimeRepo struct {
	t     *testing.T
	store *fakeStore
}

func (r *fakeShowtimeRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	showtime, ok := r.store.showtimes[id]
	if !ok {
		return nil, nil
	}
	copied := *showtime
	copied.BookedSeats = append([]string(nil), showtime.BookedSeats...)
	return &copied, nil
}

func (r *fakeShowtimeRepo) FindByMovieID(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*entity.Showtime, error) {
	return nil, nil
}

func (r *fakeShowtimeRepo) CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeShowtimeRepo) ReserveSeats(ctx context.Context, q database.Querier, id uuid.UUID, seats []string) (bool, error) {
	tx := asFakeTx(r.t, q)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	showtime, ok := r.store.showtimes[id]
	if !ok {
		return false, nil
	}
	for _, booked := range showtime.BookedSeats {
		for _, seat := range seats {
			if booked == seat {
				return false, nil
			}
		}
	}

	prev := append([]string(nil), showtime.BookedSeats...)
	showtime.BookedSeats = append(showtime.BookedSeats, seats...)
	tx.addUndo(func() { showtime.BookedSeats = prev })
	return true, nil
}

type fakeBookingRepo struct {
	t     *testing.T
	store *fakeStore
}

func (r *fakeBookingRepo) Create(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	tx := asFakeTx(r.t, q)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failCreateBooking {
		return errors.New("insert failed")
	}

	copied := *booking
	id := booking.ID
	r.store.bookings[id] = &copied
	tx.addUndo(func() { delete(r.store.bookings, id) })
	return nil
}

func (r *fakeBookingRepo) MarkPaid(ctx context.Context, q database.Querier, id uuid.UUID, transactionID *string, qrCodeData string) error {
	tx := asFakeTx(r.t, q)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failMarkPaid {
		return errors.New("update failed")
	}

	booking, ok := r.store.bookings[id]
	if !ok {
		return errors.New("booking not pending")
	}
	prevStatus := booking.PaymentStatus
	booking.PaymentStatus = entity.PaymentStatusPaid
	booking.TransactionID = transactionID
	booking.QRCodeData = qrCodeData
	tx.addUndo(func() {
		if b, ok := r.store.bookings[id]; ok {
			b.PaymentStatus = prevStatus
		}
	})
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByCode(ctx context.Context, code string) (*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, booking := range r.store.bookings {
		if booking.BookingCode == code {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var bookings []*entity.Booking
	for _, booking := range r.store.bookings {
		if booking.UserID == userID {
			copied := *booking
			bookings = append(bookings, &copied)
		}
	}
	return bookings, nil
}

func (r *fakeBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	bookings, _ := r.FindByUserID(ctx, userID, 0, 0)
	return int64(len(bookings)), nil
}

type fakeUserRepo struct {
	t     *testing.T
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) AppendBooking(ctx context.Context, q database.Querier, userID, bookingID uuid.UUID) error {
	tx := asFakeTx(r.t, q)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failAppendUser {
		return errors.New("update failed")
	}

	user, ok := r.store.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	user.BookingIDs = append(user.BookingIDs, bookingID)
	tx.addUndo(func() {
		if u, ok := r.store.users[userID]; ok && len(u.BookingIDs) > 0 {
			u.BookingIDs = u.BookingIDs[:len(u.BookingIDs)-1]
		}
	})
	return nil
}

type fakeMovieRepo struct{ store *fakeStore }

func (r *fakeMovieRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	movie, ok := r.store.movies[id]
	if !ok {
		return nil, nil
	}
	copied := *movie
	return &copied, nil
}

type fakeCinemaRepo struct{ store *fakeStore }

func (r *fakeCinemaRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Cinema, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cinema, ok := r.store.cinemas[id]
	if !ok {
		return nil, nil
	}
	copied := *cinema
	return &copied, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingCreatedEvent
}

func (p *capturingPublisher) PublishBookingCreated(ctx context.Context, event queue.BookingCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// ==================== FIXTURE ====================

type bookingFixture struct {
	store     *fakeStore
	repo      *repository.Repository
	service   BookingService
	publisher *capturingPublisher
	userID    uuid.UUID
	showtime  *entity.Showtime
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	store := newFakeStore()

	movieID := uuid.New()
	cinemaID := uuid.New()
	store.movies[movieID] = &entity.Movie{
		Base:  entity.Base{ID: movieID},
		Title: "Arrival",
	}
	store.cinemas[cinemaID] = &entity.Cinema{
		Base: entity.Base{ID: cinemaID},
		Name: "Grand Central",
		City: "Jakarta",
	}

	showtimeID := uuid.New()
	showtime := &entity.Showtime{
		Base:         entity.Base{ID: showtimeID},
		MovieID:      movieID,
		CinemaID:     cinemaID,
		ScreenName:   "Screen 1",
		StartsAt:     time.Now().Add(24 * time.Hour),
		EndsAt:       time.Now().Add(26 * time.Hour),
		PricePerSeat: 10.00,
		BookedSeats:  []string{"A1"},
	}
	store.showtimes[showtimeID] = showtime

	userID := uuid.New()
	store.users[userID] = &entity.User{
		Base:       entity.Base{ID: userID},
		FullName:   "Dana Q",
		Email:      "dana@example.com",
		Role:       entity.RoleCustomer,
		BookingIDs: []uuid.UUID{},
	}

	repo := &repository.Repository{
		User:     &fakeUserRepo{t: t, store: store},
		Movie:    &fakeMovieRepo{store: store},
		Cinema:   &fakeCinemaRepo{store: store},
		Showtime: &fakeShowtimeRepo{t: t, store: store},
		Booking:  &fakeBookingRepo{t: t, store: store},
	}

	publisher := &capturingPublisher{}
	service := NewBookingService(&fakeDB{store: store}, repo, publisher, zap.NewNop())

	return &bookingFixture{
		store:     store,
		repo:      repo,
		service:   service,
		publisher: publisher,
		userID:    userID,
		showtime:  showtime,
	}
}

func (f *bookingFixture) bookedSeats() []string {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return append([]string(nil), f.showtime.BookedSeats...)
}

func (f *bookingFixture) request(seats []string, total float64) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		ShowtimeID:    f.showtime.ID.String(),
		Seats:         seats,
		PaymentMethod: "card",
		TotalPrice:    total,
	}
}

// ==================== TESTS ====================

func TestCreateBooking_HappyPath(t *testing.T) {
	f := newBookingFixture(t)

	resp, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1", "B2"}, 20.00))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, []string{"B1", "B2"}, resp.Seats)
	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)
	assert.Equal(t, 20.00, resp.TotalPrice)
	assert.NotEmpty(t, resp.BookingCode)
	assert.Equal(t, resp.BookingCode, resp.QRCodeData)
	assert.Equal(t, "Arrival", resp.MovieTitle)
	assert.Equal(t, "Grand Central", resp.CinemaName)

	assert.Equal(t, []string{"A1", "B1", "B2"}, f.bookedSeats())
	assert.Equal(t, 1, f.store.committed)
	assert.Equal(t, 0, f.store.rolledBack)

	// Booking linked to user
	user := f.store.users[f.userID]
	require.Len(t, user.BookingIDs, 1)
	stored := f.store.bookings[user.BookingIDs[0]]
	require.NotNil(t, stored)
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)

	// Event published after commit
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, resp.BookingCode, f.publisher.events[0].BookingCode)
	assert.Equal(t, []string{"B1", "B2"}, f.publisher.events[0].Seats)
}

func TestCreateBooking_ShowtimeNotFound(t *testing.T) {
	f := newBookingFixture(t)

	req := f.request([]string{"B1"}, 10.00)
	req.ShowtimeID = uuid.New().String()

	_, err := f.service.CreateBooking(context.Background(), f.userID.String(), req)
	require.ErrorIs(t, err, ErrShowtimeNotFound)

	assert.Equal(t, 0, f.store.begun, "no transaction should be started")
	assert.Empty(t, f.store.bookings)
	assert.Equal(t, []string{"A1"}, f.bookedSeats())
}

func TestCreateBooking_PriceMismatch(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1"}, 5.00))

	var priceErr *PriceMismatchError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, 10.00, priceErr.Expected)
	assert.Equal(t, 5.00, priceErr.Submitted)

	assert.Equal(t, 0, f.store.begun, "no writes before the price check passes")
	assert.Empty(t, f.store.bookings)
	assert.Equal(t, []string{"A1"}, f.bookedSeats())
}

func TestCreateBooking_PriceWithinEpsilon(t *testing.T) {
	f := newBookingFixture(t)

	// 2 seats at 10.00; 19.995 is within the 0.01 tolerance.
	resp, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1", "B2"}, 19.995))
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)
}

func TestCreateBooking_SeatConflict(t *testing.T) {
	f := newBookingFixture(t)

	// A1 is already booked; the whole request must fail, including B1.
	_, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"A1", "B1"}, 20.00))
	require.ErrorIs(t, err, ErrSeatConflict)

	assert.Equal(t, []string{"A1"}, f.bookedSeats(), "no partial reservation")
	assert.Empty(t, f.store.bookings)
	assert.Equal(t, 1, f.store.rolledBack)
}

func TestCreateBooking_ConcurrentOverlap(t *testing.T) {
	f := newBookingFixture(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"C1"}, 10.00))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrSeatConflict)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one overlapping attempt may win")

	// C1 appears exactly once in the booked set.
	count := 0
	for _, seat := range f.bookedSeats() {
		if seat == "C1" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Exactly one booking references C1.
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	referencing := 0
	for _, booking := range f.store.bookings {
		for _, seat := range booking.Seats {
			if seat == "C1" {
				referencing++
			}
		}
	}
	assert.Equal(t, 1, referencing)
}

func TestCreateBooking_RollbackOnBookingInsertFailure(t *testing.T) {
	f := newBookingFixture(t)
	f.store.failCreateBooking = true

	_, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1", "B2"}, 20.00))
	require.Error(t, err)

	assert.Equal(t, []string{"A1"}, f.bookedSeats(), "reserved seats must be released on rollback")
	assert.Empty(t, f.store.bookings)
	assert.Empty(t, f.store.users[f.userID].BookingIDs)
	assert.Equal(t, 1, f.store.rolledBack)
	assert.Equal(t, 0, f.store.committed)
	assert.Empty(t, f.publisher.events, "no event for a failed booking")
}

func TestCreateBooking_RollbackOnUserLinkFailure(t *testing.T) {
	f := newBookingFixture(t)
	f.store.failAppendUser = true

	_, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1"}, 10.00))
	require.Error(t, err)

	assert.Equal(t, []string{"A1"}, f.bookedSeats())
	assert.Empty(t, f.store.bookings, "booking insert must be undone with the seats")
	assert.Equal(t, 1, f.store.rolledBack)
}

func TestCreateBooking_RollbackOnMarkPaidFailure(t *testing.T) {
	f := newBookingFixture(t)
	f.store.failMarkPaid = true

	_, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1"}, 10.00))
	require.Error(t, err)

	assert.Equal(t, []string{"A1"}, f.bookedSeats())
	assert.Empty(t, f.store.bookings)
	assert.Empty(t, f.store.users[f.userID].BookingIDs)
	assert.Equal(t, 1, f.store.rolledBack)
}

func TestCreateBooking_RejectsInvalidRequests(t *testing.T) {
	f := newBookingFixture(t)

	cases := []struct {
		name string
		req  *request.CreateBookingRequest
	}{
		{"empty seats", f.request([]string{}, 10.00)},
		{"duplicate seats", f.request([]string{"B1", "B1"}, 20.00)},
		{"zero total", f.request([]string{"B1"}, 0)},
		{"missing payment method", func() *request.CreateBookingRequest {
			r := f.request([]string{"B1"}, 10.00)
			r.PaymentMethod = ""
			return r
		}()},
		{"malformed showtime id", func() *request.CreateBookingRequest {
			r := f.request([]string{"B1"}, 10.00)
			r.ShowtimeID = "not-a-uuid"
			return r
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.CreateBooking(context.Background(), f.userID.String(), tc.req)
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Equal(t, []string{"A1"}, f.bookedSeats())
			assert.Empty(t, f.store.bookings)
		})
	}
}

func TestGetUserBookings(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1"}, 10.00))
	require.NoError(t, err)

	resp, err := f.service.GetUserBookings(context.Background(), f.userID.String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, []string{"B1"}, resp.Data[0].Seats)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestGetBookingByID(t *testing.T) {
	f := newBookingFixture(t)

	created, err := f.service.CreateBooking(context.Background(), f.userID.String(), f.request([]string{"B1"}, 10.00))
	require.NoError(t, err)

	found, err := f.service.GetBookingByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.BookingCode, found.BookingCode)

	_, err = f.service.GetBookingByID(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, ErrBookingNotFound)
}

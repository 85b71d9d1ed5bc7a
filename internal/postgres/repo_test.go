package postgres

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"sync"
	"testing"
	"time"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("op", nil))

	for _, code := range []string{codeExclusionViolation, codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected} {
		err := mapErr("insert", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, hotel.ErrConflict, code)
		assert.False(t, hotel.IsStorageError(err), code)
	}

	err := mapErr("insert", &pgconn.PgError{Code: "23502"})
	assert.True(t, hotel.IsStorageError(err))

	err = mapErr("query", errors.New("connection refused"))
	assert.True(t, hotel.IsStorageError(err))

	err = mapErr("query", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, hotel.IsStorageError(err))
}

// testPool connects to TEST_POSTGRES_DSN and gives every test a fresh schema.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping Postgres integration test")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dsn, 16)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS reservations, rooms, room_types`)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool), "migrate is idempotent")
	return pool
}

func seedSuites(t *testing.T, cat *CatalogRepo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, cat.CreateRoomType(ctx, hotel.RoomType{ID: "rt-suite", Name: "Suite Deluxe", BasePriceCents: 25000, MaxGuests: 4, Capacity: 2}))
	for _, n := range []string{"201", "202", "203", "204"} {
		require.NoError(t, cat.CreateRoom(ctx, hotel.Room{ID: "room-" + n, Number: n, Floor: 2, RoomTypeID: "rt-suite"}))
	}
}

func newReservation(room, in, out string, status hotel.ReservationStatus) hotel.Reservation {
	return hotel.Reservation{
		ID: uuid.NewString(), RoomID: room, UserID: "u-1",
		CheckIn: dates.MustParse(in), CheckOut: dates.MustParse(out),
		Guests: 2, Status: status,
	}
}

func TestReservationRepo_CreateAndOverlap(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	cat := &CatalogRepo{DB: pool}
	repo := &ReservationRepo{DB: pool}
	seedSuites(t, cat)

	first, err := repo.Create(ctx, newReservation("room-201", "2025-06-10", "2025-06-13", hotel.StatusConfirmed))
	require.NoError(t, err)
	assert.Equal(t, dates.MustParse("2025-06-10"), first.CheckIn)

	_, err = repo.Create(ctx, newReservation("room-201", "2025-06-12", "2025-06-14", hotel.StatusPendingPayment))
	assert.ErrorIs(t, err, hotel.ErrConflict)

	// Adjacent stay is fine.
	_, err = repo.Create(ctx, newReservation("room-201", "2025-06-13", "2025-06-15", hotel.StatusPendingPayment))
	require.NoError(t, err)

	// Inactive rows never block.
	cancelled, err := repo.Create(ctx, newReservation("room-202", "2025-06-10", "2025-06-13", hotel.StatusPendingPayment))
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, cancelled.ID, hotel.StatusPendingPayment, hotel.StatusCancelled)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newReservation("room-202", "2025-06-11", "2025-06-12", hotel.StatusConfirmed))
	require.NoError(t, err)

	got, err := repo.FindOverlapping(ctx, []string{"room-201", "room-202"}, dates.Range{Start: dates.MustParse("2025-06-12"), End: dates.MustParse("2025-06-13")}, hotel.ActiveStatuses)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.True(t, r.Status.Active())
	}

	_, err = repo.Create(ctx, newReservation("room-999", "2025-06-10", "2025-06-11", hotel.StatusConfirmed))
	assert.ErrorIs(t, err, hotel.ErrRoomNotFound)
}

func TestReservationRepo_ExternalIDIsIdempotent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	seedSuites(t, &CatalogRepo{DB: pool})
	repo := &ReservationRepo{DB: pool}

	r := newReservation("room-203", "2025-07-01", "2025-07-03", hotel.StatusPendingPayment)
	r.ExternalID = "web-42"
	a, err := repo.Create(ctx, r)
	require.NoError(t, err)

	r.ID = uuid.NewString()
	b, err := repo.Create(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	got, err := repo.GetByExternalID(ctx, "u-1", "web-42")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	// another user may reuse the same external id
	_, err = repo.GetByExternalID(ctx, "u-2", "web-42")
	assert.ErrorIs(t, err, hotel.ErrReservationNotFound)

	other := newReservation("room-204", "2025-07-01", "2025-07-03", hotel.StatusPendingPayment)
	other.UserID = "u-2"
	other.ExternalID = "web-42"
	c, err := repo.Create(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, other.ID, c.ID)
	assert.Equal(t, "u-2", c.UserID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestCatalogRepo_MissingRoomType(t *testing.T) {
	pool := testPool(t)
	_, err := (&CatalogRepo{DB: pool}).GetRoomType(context.Background(), "rt-none")
	assert.ErrorIs(t, err, hotel.ErrRoomTypeNotFound)
	assert.EqualError(t, err, "room type not found")
}

func TestReservationRepo_ConcurrentCreateNeverDoubleBooks(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	seedSuites(t, &CatalogRepo{DB: pool})
	repo := &ReservationRepo{DB: pool}

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, newReservation("room-204", "2025-08-01", "2025-08-05", hotel.StatusPendingPayment))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, hotel.ErrConflict)
	}
	assert.Equal(t, 1, ok)
}

func TestReservationRepo_UpdateStatus(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	seedSuites(t, &CatalogRepo{DB: pool})
	repo := &ReservationRepo{DB: pool}

	r, err := repo.Create(ctx, newReservation("room-201", "2025-06-10", "2025-06-13", hotel.StatusPendingPayment))
	require.NoError(t, err)

	up, err := repo.UpdateStatus(ctx, r.ID, hotel.StatusPendingPayment, hotel.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, hotel.StatusConfirmed, up.Status)

	_, err = repo.UpdateStatus(ctx, r.ID, hotel.StatusPendingPayment, hotel.StatusCancelled)
	assert.ErrorIs(t, err, hotel.ErrConflict)

	_, err = repo.UpdateStatus(ctx, "missing", hotel.StatusPendingPayment, hotel.StatusCancelled)
	assert.ErrorIs(t, err, hotel.ErrReservationNotFound)
}

func TestEngineOnPostgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	cat := &CatalogRepo{DB: pool}
	repo := &ReservationRepo{DB: pool}
	seedSuites(t, cat)
	_, err := repo.Create(ctx, newReservation("room-201", "2025-06-10", "2025-06-13", hotel.StatusConfirmed))
	require.NoError(t, err)

	e := availability.NewEngine(cat, repo, time.UTC, nil)
	e.Now = func() time.Time { return time.Date(2025, time.June, 11, 9, 0, 0, 0, time.UTC) }

	room, err := e.FindAvailableRoom(ctx, "rt-suite", dates.Range{Start: dates.MustParse("2025-06-11"), End: dates.MustParse("2025-06-12")}, 2)
	require.NoError(t, err)
	assert.Equal(t, "room-202", room.ID)

	month, err := e.MonthAvailability(ctx, "rt-suite", 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, 3, month["2025-06-12"].AvailableRooms)
	assert.Equal(t, 4, month["2025-06-13"].AvailableRooms)

	res, err := e.ReconcileRoomStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	r201, err := cat.GetRoom(ctx, "room-201")
	require.NoError(t, err)
	assert.Equal(t, hotel.RoomOccupied, r201.Status())

	res, err = e.ReconcileRoomStatuses(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Updated)

	r202, err := cat.SetMaintenance(ctx, "room-202", true)
	require.NoError(t, err)
	assert.Equal(t, hotel.RoomMaintenance, r202.Status())
	assert.ErrorIs(t, cat.SetOccupancy(ctx, "room-202", hotel.OccupancyOccupied), hotel.ErrRoomNotFound)
}

package service

import (
    "context"
    "testing"
    "time"

    sqlmock "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking-core/internal/gateway"
    "github.com/iliyamo/cinema-booking-core/internal/model"
    "github.com/iliyamo/cinema-booking-core/internal/repository"
)

func buildCheckout(t *testing.T) (*CheckoutService, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mockDB, err := sqlmock.New()
    require.NoError(t, err)

    slots := repository.NewSlotRepo(db)
    seats := repository.NewSeatRepo(db)
    holds := repository.NewHoldRepo(db)
    svc := &CheckoutService{
        Slots:    slots,
        Seats:    seats,
        Holds:    holds,
        Sessions: repository.NewSessionRepo(db),
        Products: repository.NewProductRepo(db),
        Promos:   repository.NewPromotionRepo(db),
        Payments: repository.NewPaymentRepo(db),
        HoldMgr:  &HoldManager{Holds: holds, Seats: seats, Slots: slots},
        Gateway: gateway.New(gateway.Config{
            BaseURL:   "https://pay.example.com/v2",
            TmnCode:   "DEMO0001",
            Secret:    "secret",
            Version:   "2.1.0",
            Locale:    "vn",
            Currency:  "VND",
            OrderType: "190000",
            ReturnURL: "https://example.com/return",
        }),
    }
    return svc, mockDB, func() { db.Close() }
}

var slotCols = []string{"id", "movie_id", "cinema_id", "room_id", "starts_at", "base_price_cents", "empty_seats"}

func slotRow() *sqlmock.Rows {
    return sqlmock.NewRows(slotCols).
        AddRow(uint64(9), uint64(1), uint64(2), uint64(3), time.Now().UTC().Add(time.Hour), int64(100_000), uint32(50))
}

func TestCreateHoldClaimsSeatsAtomically(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectBegin()
    mockDB.ExpectQuery("FROM slots WHERE id").WithArgs(uint64(9)).WillReturnRows(slotRow())
    mockDB.ExpectQuery("FROM holds").WithArgs(uint64(9), model.HoldActive).
        WillReturnRows(sqlmock.NewRows(holdCols)) // nothing overdue to sweep
    mockDB.ExpectExec("UPDATE seats SET status").
        WithArgs(model.SeatHeld, model.SeatAvailable, uint64(3), uint64(11), uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mockDB.ExpectExec("UPDATE slots SET empty_seats").
        WithArgs(2, uint64(9), 2).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mockDB.ExpectExec("INSERT INTO holds").
        WillReturnResult(sqlmock.NewResult(42, 1))
    mockDB.ExpectExec("INSERT INTO hold_seats").
        WillReturnResult(sqlmock.NewResult(0, 2))
    mockDB.ExpectExec("INSERT INTO sessions").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mockDB.ExpectCommit()

    before := time.Now().UTC()
    res, err := svc.CreateHold(context.Background(), 9, 5, []uint64{11, 12})
    require.NoError(t, err)
    assert.NotEmpty(t, res.SessionToken)
    assert.Equal(t, []uint64{11, 12}, res.SeatIDs)
    assert.WithinDuration(t, before.Add(model.HoldTTL), res.ExpiresAt, 5*time.Second)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateHoldRollsBackWhenSeatTaken(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectBegin()
    mockDB.ExpectQuery("FROM slots WHERE id").WithArgs(uint64(9)).WillReturnRows(slotRow())
    mockDB.ExpectQuery("FROM holds").WithArgs(uint64(9), model.HoldActive).
        WillReturnRows(sqlmock.NewRows(holdCols))
    // One of the two seats is already held by a racing session.
    mockDB.ExpectExec("UPDATE seats SET status").
        WithArgs(model.SeatHeld, model.SeatAvailable, uint64(3), uint64(11), uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mockDB.ExpectRollback()

    _, err := svc.CreateHold(context.Background(), 9, 5, []uint64{11, 12})
    assert.ErrorIs(t, err, repository.ErrSeatUnavailable)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateHoldRejectsSeatsFromAnotherRoom(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectBegin()
    mockDB.ExpectQuery("FROM slots WHERE id").WithArgs(uint64(9)).WillReturnRows(slotRow())
    mockDB.ExpectQuery("FROM holds").WithArgs(uint64(9), model.HoldActive).
        WillReturnRows(sqlmock.NewRows(holdCols))
    // The slot plays in room 3; both requested seats live in a
    // different room, so the room-scoped claim matches zero rows.
    mockDB.ExpectExec("AND room_id =").
        WithArgs(model.SeatHeld, model.SeatAvailable, uint64(3), uint64(101), uint64(102)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mockDB.ExpectRollback()

    _, err := svc.CreateHold(context.Background(), 9, 5, []uint64{101, 102})
    assert.ErrorIs(t, err, repository.ErrSeatUnavailable)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateHoldUnknownSlot(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectBegin()
    mockDB.ExpectQuery("FROM slots WHERE id").WithArgs(uint64(77)).
        WillReturnRows(sqlmock.NewRows(slotCols))
    mockDB.ExpectRollback()

    _, err := svc.CreateHold(context.Background(), 77, 5, []uint64{11})
    assert.ErrorIs(t, err, repository.ErrSlotNotFound)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCancelIsIdempotentOnTerminalSession(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectBegin()
    mockDB.ExpectQuery("FROM sessions WHERE token").WithArgs("tok-1").
        WillReturnRows(sessionRow(model.SessionCancelled, nil))
    mockDB.ExpectRollback()

    err := svc.Cancel(context.Background(), "tok-1")
    assert.NoError(t, err, "repeated cancel must be a no-op")
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCancelReleasesActiveHold(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectBegin()
    mockDB.ExpectQuery("FROM sessions WHERE token").WithArgs("tok-1").
        WillReturnRows(sessionRow(model.SessionSelecting, nil))
    mockDB.ExpectExec("UPDATE sessions SET state").
        WithArgs(model.SessionCancelled, "tok-1", model.SessionSelecting).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mockDB.ExpectQuery("FROM holds WHERE session_token").WithArgs("tok-1").
        WillReturnRows(holdRow(model.HoldActive))
    mockDB.ExpectExec("UPDATE holds SET status").
        WithArgs(model.HoldReleased, uint64(42), model.HoldActive).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mockDB.ExpectQuery("SELECT seat_id FROM hold_seats").WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(uint64(11)))
    mockDB.ExpectExec("UPDATE seats SET status").
        WithArgs(model.SeatAvailable, model.SeatHeld, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mockDB.ExpectExec("UPDATE slots SET empty_seats").
        WithArgs(1, uint64(9)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mockDB.ExpectCommit()

    err := svc.Cancel(context.Background(), "tok-1")
    assert.NoError(t, err)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestExtendHoldNeverLengthensWindow(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    deadline := time.Now().UTC().Add(90 * time.Second).Truncate(time.Second)
    mockDB.ExpectQuery("SELECT deadline FROM sessions").WithArgs("tok-1").
        WillReturnRows(sqlmock.NewRows([]string{"deadline"}).AddRow(deadline))

    got, err := svc.ExtendHold(context.Background(), "tok-1")
    require.NoError(t, err)
    assert.Equal(t, deadline, got.UTC(), "extend returns the original deadline unchanged")
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestExtendHoldRejectsExpiredSession(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectQuery("SELECT deadline FROM sessions").WithArgs("tok-1").
        WillReturnRows(sqlmock.NewRows([]string{"deadline"}).
            AddRow(time.Now().UTC().Add(-time.Second)))

    _, err := svc.ExtendHold(context.Background(), "tok-1")
    assert.ErrorIs(t, err, repository.ErrHoldExpired)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSetItemsRejectsUnknownProduct(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectQuery("FROM sessions WHERE token").WithArgs("tok-1").
        WillReturnRows(sessionRow(model.SessionSelecting, nil))
    mockDB.ExpectQuery("FROM products").
        WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price_cents"}))

    err := svc.SetItems(context.Background(), "tok-1", []ItemSelection{{ProductID: 3, Quantity: 2}})
    assert.ErrorIs(t, err, repository.ErrProductNotFound)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSetItemsRejectsFrozenSession(t *testing.T) {
    svc, mockDB, done := buildCheckout(t)
    defer done()

    mockDB.ExpectQuery("FROM sessions WHERE token").WithArgs("tok-1").
        WillReturnRows(sessionRow(model.SessionAwaitingPayment, nil))

    err := svc.SetItems(context.Background(), "tok-1", []ItemSelection{{ProductID: 3, Quantity: 2}})
    assert.ErrorIs(t, err, ErrInvalidState)
    assert.NoError(t, mockDB.ExpectationsWereMet())
}

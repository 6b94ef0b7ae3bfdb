package booking

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/queue"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// recorderNotifier captures dispatched events so tests can assert
// that notifications fire only after a commit.
type recorderNotifier struct {
    events []queue.BookingEvent
    err    error
}

func (r *recorderNotifier) Notify(_ context.Context, ev queue.BookingEvent) error {
    r.events = append(r.events, ev)
    return r.err
}

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock, *recorderNotifier) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    rec := &recorderNotifier{}
    e := NewEngine(db,
        repository.NewSlotRepo(db),
        repository.NewPricingRepo(db),
        repository.NewWalletRepo(db),
        repository.NewBookingRepo(db),
        rec)
    e.now = func() time.Time { return testNow }
    return e, mock, rec
}

const (
    slotCols    = `id, lot_id, label, vehicle_type, is_ev, pos_row, pos_col, is_available, created_at, updated_at`
    pricingCols = `id, lot_id, vehicle_type, hourly, daily, monthly, created_at, updated_at`
    bookingCols = `id, user_id, slot_id, status, billing_unit, duration_count, start_time, end_time, amount_charged, created_at, updated_at`
)

func slotRow(available bool) *sqlmock.Rows {
    return sqlmock.NewRows(regexp.MustCompile(`,\s*`).Split(slotCols, -1)).
        AddRow(5, 2, "A-01", model.VehicleCar, false, 1, 1, available, testNow, testNow)
}

func pricingRow() *sqlmock.Rows {
    return sqlmock.NewRows(regexp.MustCompile(`,\s*`).Split(pricingCols, -1)).
        AddRow(1, 2, model.VehicleCar, 8, 50, 900, testNow, testNow)
}

func bookingRow(id uint64, status string, start, end time.Time, amount uint32) *sqlmock.Rows {
    return sqlmock.NewRows(regexp.MustCompile(`,\s*`).Split(bookingCols, -1)).
        AddRow(id, 7, 5, status, model.UnitHour, 3, start, end, amount, testNow, testNow)
}

const (
    qSlotForUpdate  = `SELECT ` + slotCols + ` FROM parking_slots WHERE id = \? FOR UPDATE`
    qPricing        = `SELECT ` + pricingCols + ` FROM slot_pricing WHERE lot_id = \? AND vehicle_type = \?`
    qDebit          = `UPDATE users SET tokens = tokens - \? WHERE id = \? AND tokens >= \?`
    qCredit         = `UPDATE users SET tokens = tokens \+ \? WHERE id = \?`
    qBalance        = `SELECT tokens FROM users WHERE id = \?`
    qInsertBooking  = `INSERT INTO bookings`
    qSelectBooking  = `SELECT ` + bookingCols + ` FROM bookings WHERE id = \?`
    qBookingForUpd  = `SELECT ` + bookingCols + ` FROM bookings WHERE id = \? FOR UPDATE`
    qSetAvail       = `UPDATE parking_slots SET is_available = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`
    qBookingStatus  = `UPDATE bookings SET status = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`
    qStartable      = `FROM bookings\s+WHERE status = 'CONFIRMED' AND start_time <= \? AND end_time > \?`
    qDue            = `FROM bookings\s+WHERE status IN \('CONFIRMED','ACTIVE'\) AND end_time <= \?`
)

func TestCreateDebitsWalletAndOccupiesSlot(t *testing.T) {
    e, mock, rec := newTestEngine(t)
    end := testNow.Add(3 * time.Hour)

    mock.ExpectBegin()
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(true))
    mock.ExpectQuery(qPricing).WithArgs(uint64(2), model.VehicleCar).WillReturnRows(pricingRow())
    // balance 100, charge 3h x 8 = 24, leaving 76
    mock.ExpectExec(qDebit).WithArgs(uint32(24), uint64(7), uint32(24)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(qBalance).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(76))
    mock.ExpectExec(qInsertBooking).
        WithArgs(uint64(7), uint64(5), model.BookingConfirmed, model.UnitHour, uint32(3), testNow, end, uint32(24)).
        WillReturnResult(sqlmock.NewResult(11, 1))
    mock.ExpectQuery(qSelectBooking).WithArgs(uint64(11)).
        WillReturnRows(bookingRow(11, model.BookingConfirmed, testNow, end, 24))
    mock.ExpectExec(qSetAvail).WithArgs(false, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    b, err := e.Create(context.Background(), 7, 5, "car", DurationSpec{Unit: model.UnitHour, Count: 3})
    require.NoError(t, err)
    assert.Equal(t, uint64(11), b.ID)
    assert.Equal(t, model.BookingConfirmed, b.Status)
    assert.Equal(t, uint32(24), b.AmountCharged)

    require.Len(t, rec.events, 1)
    assert.Equal(t, queue.EventBookingConfirmed, rec.events[0].Kind)
    assert.Equal(t, uint64(11), rec.events[0].BookingID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInsufficientBalanceRollsBack(t *testing.T) {
    e, mock, rec := newTestEngine(t)

    mock.ExpectBegin()
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(true))
    mock.ExpectQuery(qPricing).WithArgs(uint64(2), model.VehicleCar).WillReturnRows(pricingRow())
    // charge 24 against a balance of 10: the conditional UPDATE
    // matches no row, so nothing is written anywhere.
    mock.ExpectExec(qDebit).WithArgs(uint32(24), uint64(7), uint32(24)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(qBalance).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(10))
    mock.ExpectRollback()

    _, err := e.Create(context.Background(), 7, 5, "CAR", DurationSpec{Unit: model.UnitHour, Count: 3})
    assert.True(t, errors.Is(err, repository.ErrInsufficientBalance))
    assert.Empty(t, rec.events)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSlotAlreadyOccupied(t *testing.T) {
    e, mock, rec := newTestEngine(t)

    mock.ExpectBegin()
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(false))
    mock.ExpectRollback()

    _, err := e.Create(context.Background(), 7, 5, "CAR", DurationSpec{Unit: model.UnitHour, Count: 1})
    assert.True(t, errors.Is(err, repository.ErrSlotUnavailable))
    assert.Empty(t, rec.events)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateVehicleTypeMismatch(t *testing.T) {
    e, mock, _ := newTestEngine(t)

    mock.ExpectBegin()
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(true))
    mock.ExpectRollback()

    _, err := e.Create(context.Background(), 7, 5, "EV", DurationSpec{Unit: model.UnitHour, Count: 1})
    assert.True(t, errors.Is(err, repository.ErrValidation))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePricingNotConfigured(t *testing.T) {
    e, mock, _ := newTestEngine(t)

    mock.ExpectBegin()
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(true))
    mock.ExpectQuery(qPricing).WithArgs(uint64(2), model.VehicleCar).WillReturnError(sql.ErrNoRows)
    mock.ExpectRollback()

    _, err := e.Create(context.Background(), 7, 5, "CAR", DurationSpec{Unit: model.UnitHour, Count: 1})
    assert.True(t, errors.Is(err, repository.ErrPricingNotConfigured))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsBadInputBeforeLocking(t *testing.T) {
    e, mock, _ := newTestEngine(t)

    _, err := e.Create(context.Background(), 7, 5, "BICYCLE", DurationSpec{Unit: model.UnitHour, Count: 1})
    assert.True(t, errors.Is(err, repository.ErrValidation))

    _, err = e.Create(context.Background(), 0, 5, "CAR", DurationSpec{Unit: model.UnitHour, Count: 1})
    assert.True(t, errors.Is(err, repository.ErrValidation))

    // no Begin expected: validation failures never reach the database
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRetriesDeadlockThenGivesUp(t *testing.T) {
    e, mock, _ := newTestEngine(t)
    deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}

    for i := 0; i < maxAttempts; i++ {
        mock.ExpectBegin()
        mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnError(deadlock)
        mock.ExpectRollback()
    }

    _, err := e.Create(context.Background(), 7, 5, "CAR", DurationSpec{Unit: model.UnitHour, Count: 1})
    assert.True(t, errors.Is(err, repository.ErrRetryExhausted))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBeforeStartRefundsInFull(t *testing.T) {
    e, mock, rec := newTestEngine(t)
    start := testNow.Add(2 * time.Hour)

    mock.ExpectBegin()
    mock.ExpectQuery(qBookingForUpd).WithArgs(uint64(11)).
        WillReturnRows(bookingRow(11, model.BookingConfirmed, start, start.Add(3*time.Hour), 24))
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(false))
    mock.ExpectExec(qBookingStatus).WithArgs(model.BookingCancelled, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(qCredit).WithArgs(uint32(24), uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(qBalance).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(100))
    mock.ExpectExec(qSetAvail).WithArgs(true, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    b, err := e.Cancel(context.Background(), 7, 11)
    require.NoError(t, err)
    assert.Equal(t, model.BookingCancelled, b.Status)

    require.Len(t, rec.events, 1)
    assert.Equal(t, queue.EventBookingCancelled, rec.events[0].Kind)
    assert.NoError(t, mock.ExpectationsWereMet())
}

// A booking created without an explicit start begins immediately, so
// its window has already opened by the time the driver cancels.  It is
// still CONFIRMED until the sweeper runs, and a CONFIRMED cancellation
// restores the pre-booking balance in full.
func TestCancelImmediateBookingRefundsInFull(t *testing.T) {
    e, mock, rec := newTestEngine(t)
    start := testNow

    mock.ExpectBegin()
    mock.ExpectQuery(qBookingForUpd).WithArgs(uint64(11)).
        WillReturnRows(bookingRow(11, model.BookingConfirmed, start, start.Add(3*time.Hour), 24))
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(false))
    mock.ExpectExec(qBookingStatus).WithArgs(model.BookingCancelled, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(qCredit).WithArgs(uint32(24), uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(qBalance).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(100))
    mock.ExpectExec(qSetAvail).WithArgs(true, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    b, err := e.Cancel(context.Background(), 7, 11)
    require.NoError(t, err)
    assert.Equal(t, model.BookingCancelled, b.Status)

    require.Len(t, rec.events, 1)
    assert.Equal(t, queue.EventBookingCancelled, rec.events[0].Kind)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelActiveFreesSlotWithoutRefund(t *testing.T) {
    e, mock, _ := newTestEngine(t)
    start := testNow.Add(-time.Hour)

    mock.ExpectBegin()
    mock.ExpectQuery(qBookingForUpd).WithArgs(uint64(11)).
        WillReturnRows(bookingRow(11, model.BookingActive, start, start.Add(3*time.Hour), 24))
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(false))
    mock.ExpectExec(qBookingStatus).WithArgs(model.BookingCancelled, uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    // no wallet credit: the occupancy window already began
    mock.ExpectExec(qSetAvail).WithArgs(true, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    b, err := e.Cancel(context.Background(), 7, 11)
    require.NoError(t, err)
    assert.Equal(t, model.BookingCancelled, b.Status)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForeignBookingForbidden(t *testing.T) {
    e, mock, _ := newTestEngine(t)

    mock.ExpectBegin()
    mock.ExpectQuery(qBookingForUpd).WithArgs(uint64(11)).
        WillReturnRows(bookingRow(11, model.BookingConfirmed, testNow.Add(time.Hour), testNow.Add(2*time.Hour), 24))
    mock.ExpectRollback()

    _, err := e.Cancel(context.Background(), 99, 11)
    assert.True(t, errors.Is(err, repository.ErrForbidden))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTerminalBookingConflicts(t *testing.T) {
    e, mock, _ := newTestEngine(t)

    mock.ExpectBegin()
    mock.ExpectQuery(qBookingForUpd).WithArgs(uint64(11)).
        WillReturnRows(bookingRow(11, model.BookingCompleted, testNow.Add(-3*time.Hour), testNow.Add(-time.Hour), 24))
    mock.ExpectRollback()

    _, err := e.Cancel(context.Background(), 7, 11)
    assert.True(t, errors.Is(err, repository.ErrConflict))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteElapsedActivatesAndCompletes(t *testing.T) {
    e, mock, rec := newTestEngine(t)

    mock.ExpectBegin()
    mock.ExpectQuery(qStartable).WithArgs(testNow, testNow).
        WillReturnRows(bookingRow(21, model.BookingConfirmed, testNow.Add(-time.Minute), testNow.Add(time.Hour), 8))
    mock.ExpectExec(qBookingStatus).WithArgs(model.BookingActive, uint64(21)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(qDue).WithArgs(testNow).
        WillReturnRows(bookingRow(22, model.BookingActive, testNow.Add(-4*time.Hour), testNow.Add(-time.Hour), 24))
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(false))
    mock.ExpectExec(qBookingStatus).WithArgs(model.BookingCompleted, uint64(22)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(qSetAvail).WithArgs(true, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    activated, completed, err := e.CompleteElapsed(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 1, activated)
    assert.Equal(t, 1, completed)

    require.Len(t, rec.events, 1)
    assert.Equal(t, queue.EventBookingCompleted, rec.events[0].Kind)
    assert.Equal(t, uint64(22), rec.events[0].BookingID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotAvailabilityReadsFlag(t *testing.T) {
    e, mock, _ := newTestEngine(t)

    mock.ExpectQuery(`SELECT is_available FROM parking_slots WHERE id = \?`).
        WithArgs(uint64(5)).
        WillReturnRows(sqlmock.NewRows([]string{"is_available"}).AddRow(true))

    free, err := e.SlotAvailability(context.Background(), 5)
    require.NoError(t, err)
    assert.True(t, free)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifierFailureDoesNotFailCreate(t *testing.T) {
    e, mock, rec := newTestEngine(t)
    rec.err = errors.New("broker down")
    end := testNow.Add(time.Hour)

    mock.ExpectBegin()
    mock.ExpectQuery(qSlotForUpdate).WithArgs(uint64(5)).WillReturnRows(slotRow(true))
    mock.ExpectQuery(qPricing).WithArgs(uint64(2), model.VehicleCar).WillReturnRows(pricingRow())
    mock.ExpectExec(qDebit).WithArgs(uint32(8), uint64(7), uint32(8)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(qBalance).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(92))
    mock.ExpectExec(qInsertBooking).
        WithArgs(uint64(7), uint64(5), model.BookingConfirmed, model.UnitHour, uint32(1), testNow, end, uint32(8)).
        WillReturnResult(sqlmock.NewResult(12, 1))
    mock.ExpectQuery(qSelectBooking).WithArgs(uint64(12)).
        WillReturnRows(bookingRow(12, model.BookingConfirmed, testNow, end, 8))
    mock.ExpectExec(qSetAvail).WithArgs(false, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    b, err := e.Create(context.Background(), 7, 5, "CAR", DurationSpec{Unit: model.UnitHour, Count: 1})
    require.NoError(t, err)
    assert.Equal(t, model.BookingConfirmed, b.Status)
    assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/avialane/charterops/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error)
	ListActiveIntervals(ctx context.Context, resourceID int64, w domain.Window) ([]domain.BookingInterval, error)
	ReserveResources(ctx context.Context, bookingID int64, aircraftID *int64, crewIDs []int64, w domain.Window) error
	ListOverdueRequested(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference, requested_by, origin, destination, scheduled_start, scheduled_end, actual_start, actual_end, aircraft_id, passenger_count, status, cost_estimate_cents, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Reference, &b.RequestedBy, &b.Origin, &b.Destination,
		&b.ScheduledStart, &b.ScheduledEnd, &b.ActualStart, &b.ActualEnd,
		&b.AircraftID, &b.PassengerCount, &b.Status, &b.CostEstimateCents,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusRequested
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (reference, requested_by, origin, destination, scheduled_start, scheduled_end, passenger_count, status, cost_estimate_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		booking.Reference, booking.RequestedBy, booking.Origin, booking.Destination,
		booking.ScheduledStart, booking.ScheduledEnd, booking.PassengerCount,
		booking.Status, booking.CostEstimateCents).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("booking reference %s already exists", booking.Reference)
	}
	return err
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1`, reference)
	return r.withCrew(ctx, row)
}

func (r *PGBookingRepository) withCrew(ctx context.Context, row pgx.Row) (*domain.Booking, error) {
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b.CrewIDs, err = r.crewIDs(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) crewIDs(ctx context.Context, bookingID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT resource_id FROM booking_crew WHERE booking_id=$1 ORDER BY resource_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY scheduled_start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// UpdateStatus is the state machine's single atomic write: the status column
// flips only if the row still holds the expected current status. Losing the
// race surfaces ErrConcurrentModification, never a partial update.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1,
		actual_start = CASE WHEN $1 = 'IN_PROGRESS' THEN now() ELSE actual_start END,
		actual_end   = CASE WHEN $1 = 'COMPLETED' THEN now() ELSE actual_end END,
		updated_at = now()
		WHERE id=$2 AND status=$3
		RETURNING `+bookingColumns, to, id, from)
	b, err := scanBooking(row)
	if err == nil {
		b.CrewIDs, err = r.crewIDs(ctx, b.ID)
		return b, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var current domain.BookingStatus
	if err := r.db.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return nil, domain.ErrConcurrentModification
}

func (r *PGBookingRepository) ListActiveIntervals(ctx context.Context, resourceID int64, w domain.Window) ([]domain.BookingInterval, error) {
	statuses := make([]string, 0, len(domain.ActiveBookingStatuses))
	for _, s := range domain.ActiveBookingStatuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.db.Query(ctx, `SELECT bi.resource_id, bi.booking_id, b.reference, b.origin, b.destination, bi.start_time, bi.end_time, b.status
		FROM booking_intervals bi
		JOIN bookings b ON b.id = bi.booking_id
		WHERE bi.resource_id=$1 AND b.status = ANY($2) AND bi.start_time < $4 AND $3 < bi.end_time
		ORDER BY bi.start_time`, resourceID, statuses, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intervals := make([]domain.BookingInterval, 0)
	for rows.Next() {
		var iv domain.BookingInterval
		if err := rows.Scan(&iv.ResourceID, &iv.BookingID, &iv.Reference, &iv.Origin, &iv.Destination, &iv.Window.Start, &iv.Window.End, &iv.Status); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

// ReserveResources attaches the given aircraft and crew to a booking and
// writes their intervals in one transaction. Resource rows are locked
// FOR UPDATE in id order and overlap is re-checked under the lock, so of two
// racing reservations on the same resource exactly one commits; the other
// gets ErrConcurrentModification.
func (r *PGBookingRepository) ReserveResources(ctx context.Context, bookingID int64, aircraftID *int64, crewIDs []int64, w domain.Window) error {
	resourceIDs := make([]int64, 0, len(crewIDs)+1)
	if aircraftID != nil {
		resourceIDs = append(resourceIDs, *aircraftID)
	}
	resourceIDs = append(resourceIDs, crewIDs...)
	if len(resourceIDs) == 0 {
		return nil
	}
	slices.Sort(resourceIDs)

	statuses := make([]string, 0, len(domain.ActiveBookingStatuses))
	for _, s := range domain.ActiveBookingStatuses {
		statuses = append(statuses, string(s))
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id FROM resources WHERE id = ANY($1) ORDER BY id FOR UPDATE`, resourceIDs)
		if err != nil {
			return err
		}
		locked := 0
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			locked++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if locked != len(resourceIDs) {
			return domain.ErrResourceNotFound
		}

		for _, resourceID := range resourceIDs {
			var overlapping int
			if err := tx.QueryRow(ctx, `SELECT count(*) FROM booking_intervals bi
				JOIN bookings b ON b.id = bi.booking_id
				WHERE bi.resource_id=$1 AND bi.booking_id <> $2 AND b.status = ANY($3)
				AND bi.start_time < $5 AND $4 < bi.end_time`,
				resourceID, bookingID, statuses, w.Start, w.End).Scan(&overlapping); err != nil {
				return err
			}
			if overlapping > 0 {
				return domain.ErrConcurrentModification
			}
		}

		// Reassignment replaces any previous reservation of this booking.
		if _, err := tx.Exec(ctx, `DELETE FROM booking_intervals WHERE booking_id=$1`, bookingID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM booking_crew WHERE booking_id=$1`, bookingID); err != nil {
			return err
		}

		for _, resourceID := range resourceIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO booking_intervals (resource_id, booking_id, start_time, end_time) VALUES ($1, $2, $3, $4)`,
				resourceID, bookingID, w.Start, w.End); err != nil {
				return err
			}
		}
		for _, crewID := range crewIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO booking_crew (booking_id, resource_id) VALUES ($1, $2)`, bookingID, crewID); err != nil {
				return err
			}
		}

		cmd, err := tx.Exec(ctx, `UPDATE bookings SET aircraft_id=$1, updated_at=now() WHERE id=$2`, aircraftID, bookingID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrBookingNotFound
		}
		return nil
	})
}

func (r *PGBookingRepository) ListOverdueRequested(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 AND scheduled_start <= $2 ORDER BY scheduled_start`,
		domain.BookingStatusRequested, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.RequestedBy, &b.Origin, &b.Destination,
			&b.ScheduledStart, &b.ScheduledEnd, &b.ActualStart, &b.ActualEnd,
			&b.AircraftID, &b.PassengerCount, &b.Status, &b.CostEstimateCents,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/community-amenities/internal/model"
)

// ReservationRepo is the MySQL reservation store.  Rows live in
// amenity_reservations; reserved_on is a DATE and the slot bounds are TIME
// columns.  Only status changes after insertion.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Admission is the unit of work handed to the callback of Admit.  Both
// methods run inside the admission transaction and see the same snapshot.
type Admission interface {
	// ListActive returns the pending and confirmed reservations of the
	// locked amenity on the admitted date, ordered by start time.
	ListActive(ctx context.Context) ([]model.Reservation, error)
	// Insert stores res and fills in its ID and timestamps.
	Insert(ctx context.Context, res *model.Reservation) error
}

// ReservationFilter narrows List.  Zero values mean "no filter".
type ReservationFilter struct {
	AmenityID   uint64
	RequesterID uint64
	Status      model.ReservationStatus
	Date        model.Date
	Page        int
	Limit       int
}

const reservationColumns = `id, amenity_id, requester_id, reserved_on, start_time, end_time, status, reason, attendees, created_at, updated_at`

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	err := s.Scan(&res.ID, &res.AmenityID, &res.RequesterID, &res.Date, &res.StartTime, &res.EndTime,
		&res.Status, &res.Reason, &res.Attendees, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Admit opens a transaction, locks the amenity row with SELECT ... FOR
// UPDATE and runs fn.  Concurrent admissions for the same amenity
// serialize on that lock, so the conflict check in fn and its insert are
// atomic.  The transaction commits only when fn returns nil.  A missing
// amenity yields ErrNotFound without calling fn.
func (r *ReservationRepo) Admit(ctx context.Context, amenityID uint64, date model.Date, fn func(context.Context, Admission) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var locked uint64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM amenities WHERE id = ? FOR UPDATE`, amenityID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}
	err = fn(ctx, &txAdmission{repo: r, tx: tx, amenityID: amenityID, date: date})
	return err
}

type txAdmission struct {
	repo      *ReservationRepo
	tx        *sql.Tx
	amenityID uint64
	date      model.Date
}

func (a *txAdmission) ListActive(ctx context.Context) ([]model.Reservation, error) {
	return a.repo.ListActiveTx(ctx, a.tx, a.amenityID, a.date)
}

func (a *txAdmission) Insert(ctx context.Context, res *model.Reservation) error {
	return a.repo.CreateTx(ctx, a.tx, res)
}

// ListActiveTx returns the reservations holding a slot on (amenityID,
// date), earliest start first, within the provided transaction.
func (r *ReservationRepo) ListActiveTx(ctx context.Context, tx *sql.Tx, amenityID uint64, date model.Date) ([]model.Reservation, error) {
	return r.listActive(ctx, tx, amenityID, date)
}

// ListActive is ListActiveTx outside of a transaction.  It backs the
// availability view.
func (r *ReservationRepo) ListActive(ctx context.Context, amenityID uint64, date model.Date) ([]model.Reservation, error) {
	return r.listActive(ctx, r.db, amenityID, date)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *ReservationRepo) listActive(ctx context.Context, q querier, amenityID uint64, date model.Date) ([]model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM amenity_reservations
	             WHERE amenity_id = ? AND reserved_on = ? AND status IN (?, ?)
	             ORDER BY start_time ASC, id ASC`
	rows, err := q.QueryContext(ctx, sel, amenityID, date, model.StatusPending, model.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and reads the row back so generated columns are populated.
// The caller must commit or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO amenity_reservations (amenity_id, requester_id, reserved_on, start_time, end_time, status, reason, attendees)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.AmenityID, res.RequesterID, res.Date, res.StartTime, res.EndTime,
		res.Status, res.Reason, res.Attendees)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM amenity_reservations WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*res = *stored
	return nil
}

// GetByID returns a reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM amenity_reservations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

// UpdateStatus assigns status to the reservation and returns the stored
// row.  No overlap check is made.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) (*model.Reservation, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE amenity_reservations SET status = ? WHERE id = ?`, status, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// List returns one page of reservations, newest date and latest start
// first, together with the total number of matching rows.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, int, error) {
	var (
		where []string
		args  []any
	)
	if f.AmenityID != 0 {
		where = append(where, "amenity_id = ?")
		args = append(args, f.AmenityID)
	}
	if f.RequesterID != 0 {
		where = append(where, "requester_id = ?")
		args = append(args, f.RequesterID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Date != "" {
		where = append(where, "reserved_on = ?")
		args = append(args, f.Date)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM amenity_reservations`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(f.Page, f.Limit)
	q := `SELECT ` + reservationColumns + ` FROM amenity_reservations` + clause +
		` ORDER BY reserved_on DESC, start_time DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0, limit)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *res)
	}
	return out, total, rows.Err()
}

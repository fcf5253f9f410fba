package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/community-amenities/internal/model"
)

// AmenityRepo is the MySQL-backed amenity directory.  Administrators
// manage rows through it; the admission service only reads.
type AmenityRepo struct {
	db *sql.DB
}

// NewAmenityRepo constructs an AmenityRepo with the given DB handle.
func NewAmenityRepo(db *sql.DB) *AmenityRepo { return &AmenityRepo{db: db} }

// AmenityFilter narrows List.  Zero values mean "no filter".  Page starts
// at 1; Limit defaults to 10.
type AmenityFilter struct {
	Status              model.AmenityStatus
	Kind                model.AmenityKind
	RequiresReservation *bool
	Search              string
	Page                int
	Limit               int
}

const amenityColumns = `id, name, description, kind, location, capacity, status, opens_at, closes_at,
	requires_reservation, usage_fee_cents, rules, image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAmenity(s rowScanner) (*model.Amenity, error) {
	var a model.Amenity
	err := s.Scan(&a.ID, &a.Name, &a.Description, &a.Kind, &a.Location, &a.Capacity, &a.Status,
		&a.OpensAt, &a.ClosesAt, &a.RequiresReservation, &a.UsageFeeCents, &a.Rules, &a.ImageURL,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new amenity.  The ID and timestamps of a are filled in
// from the stored row.
func (r *AmenityRepo) Create(ctx context.Context, a *model.Amenity) error {
	const q = `INSERT INTO amenities (name, description, kind, location, capacity, status, opens_at, closes_at,
	           requires_reservation, usage_fee_cents, rules, image_url)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.Description, a.Kind, a.Location, a.Capacity, a.Status,
		a.OpensAt, a.ClosesAt, a.RequiresReservation, a.UsageFeeCents, a.Rules, a.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// GetByID returns the amenity or ErrNotFound.
func (r *AmenityRepo) GetByID(ctx context.Context, id uint64) (*model.Amenity, error) {
	a, err := scanAmenity(r.db.QueryRowContext(ctx, `SELECT `+amenityColumns+` FROM amenities WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns one page of amenities ordered by name together with the
// total number of matching rows.
func (r *AmenityRepo) List(ctx context.Context, f AmenityFilter) ([]model.Amenity, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.RequiresReservation != nil {
		where = append(where, "requires_reservation = ?")
		args = append(args, *f.RequiresReservation)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM amenities`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(f.Page, f.Limit)
	q := `SELECT ` + amenityColumns + ` FROM amenities` + clause + ` ORDER BY name ASC, id ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Amenity, 0, limit)
	for rows.Next() {
		a, err := scanAmenity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

// Update overwrites every mutable column of the amenity identified by
// a.ID and reloads it.  Returns ErrNotFound when the row is missing.
func (r *AmenityRepo) Update(ctx context.Context, a *model.Amenity) error {
	const q = `UPDATE amenities SET name = ?, description = ?, kind = ?, location = ?, capacity = ?, status = ?,
	           opens_at = ?, closes_at = ?, requires_reservation = ?, usage_fee_cents = ?, rules = ?, image_url = ?
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, a.Name, a.Description, a.Kind, a.Location, a.Capacity, a.Status,
		a.OpensAt, a.ClosesAt, a.RequiresReservation, a.UsageFeeCents, a.Rules, a.ImageURL, a.ID); err != nil {
		return err
	}
	// RowsAffected is 0 for an unchanged row in MySQL, so existence is
	// confirmed by the reload instead.
	stored, err := r.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// Delete removes an amenity.  Amenities still holding pending or
// confirmed reservations are kept and ErrConflict is returned; released
// reservations are removed with it.
func (r *AmenityRepo) Delete(ctx context.Context, id uint64) (err error) {
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
	if err = tx.QueryRowContext(ctx, `SELECT id FROM amenities WHERE id = ? FOR UPDATE`, id).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}
	var active int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM amenity_reservations WHERE amenity_id = ? AND status IN (?, ?)`,
		id, model.StatusPending, model.StatusConfirmed).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		err = ErrConflict
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM amenities WHERE id = ?`, id)
	return err
}

// normalizePage clamps pagination input: page >= 1, 1 <= limit <= 100.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

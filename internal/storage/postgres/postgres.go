package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"estate-booking/api"
	"estate-booking/internal/models"
	"estate-booking/pkg/response"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Migrate creates the tables if they do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### opening hours ####

const openingHoursColumns = `id, owner, monday, tuesday, wednesday, thursday, friday, saturday, sunday, availability, updated_at`

func (s *Storage) GetOpeningHours(ctx context.Context, owner string) (*models.OpeningHours, error) {
	const op = "storage.postgres.GetOpeningHours"

	row := s.db.QueryRowContext(ctx, `SELECT `+openingHoursColumns+` FROM opening_hours WHERE owner=$1`, owner)

	hours, err := scanOpeningHours(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hours, nil
}

// CreateOpeningHours inserts hours unless the owner already has a row, and
// returns whichever row is stored.
func (s *Storage) CreateOpeningHours(ctx context.Context, hours *models.OpeningHours) (*models.OpeningHours, error) {
	const op = "storage.postgres.CreateOpeningHours"

	args, err := openingHoursArgs(hours)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO opening_hours (`+openingHoursColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner) DO NOTHING`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	stored, err := s.GetOpeningHours(ctx, hours.Owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stored, nil
}

func (s *Storage) SaveOpeningHours(ctx context.Context, hours *models.OpeningHours) error {
	const op = "storage.postgres.SaveOpeningHours"

	args, err := openingHoursArgs(hours)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE opening_hours
		SET monday=$3, tuesday=$4, wednesday=$5, thursday=$6, friday=$7, saturday=$8, sunday=$9,
			availability=$10, updated_at=$11
		WHERE id=$1 AND owner=$2`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

var weekdayColumns = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func openingHoursArgs(hours *models.OpeningHours) ([]any, error) {
	args := []any{hours.ID, hours.Owner}
	for _, day := range weekdayColumns {
		ranges := hours.Ranges(day)
		if ranges == nil {
			ranges = []models.TimeRange{}
		}
		raw, err := json.Marshal(ranges)
		if err != nil {
			return nil, err
		}
		args = append(args, string(raw))
	}

	return append(args, string(hours.Availability), hours.UpdatedAt.UTC()), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOpeningHours(row scanner) (*models.OpeningHours, error) {
	var (
		hours        models.OpeningHours
		days         = make([][]byte, len(weekdayColumns))
		availability string
	)

	err := row.Scan(
		&hours.ID,
		&hours.Owner,
		&days[0], &days[1], &days[2], &days[3], &days[4], &days[5], &days[6],
		&availability,
		&hours.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for i, day := range weekdayColumns {
		var ranges []models.TimeRange
		if err := json.Unmarshal(days[i], &ranges); err != nil {
			return nil, fmt.Errorf("decode %s ranges: %w", day, err)
		}
		hours.SetRanges(day, ranges)
	}
	hours.Availability = models.Availability(availability)

	return &hours, nil
}

// #### appointments ####

const appointmentColumns = `id, owner, type, to_char(date, 'YYYY-MM-DD'), time_from, time_to, customer,
	call_reason, property_id, status, reschedule, created_at, updated_at`

func (s *Storage) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	const op = "storage.postgres.GetAppointment"

	row := s.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id=$1`, id)

	appointment, err := scanAppointment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointment, nil
}

// ListBlocking returns the owner's non-cancelled appointments dated between
// fromDate and toDate inclusive.
func (s *Storage) ListBlocking(ctx context.Context, owner string, fromDate, toDate string) ([]models.Appointment, error) {
	const op = "storage.postgres.ListBlocking"

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+`
		FROM appointments
		WHERE owner=$1 AND date BETWEEN $2 AND $3 AND status <> $4
		ORDER BY date, time_from`,
		owner, fromDate, toDate, string(models.StatusCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out, err := collectAppointments(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CreateAppointment inserts appointment after re-checking, inside the same
// transaction, that no blocking appointment of the owner overlaps it.
func (s *Storage) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	const op = "storage.postgres.CreateAppointment"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := lockOwner(ctx, tx, appointment.Owner); err != nil {
			return err
		}
		if err := checkOverlap(ctx, tx, appointment); err != nil {
			return err
		}

		customer, reschedule, err := appointmentJSON(appointment)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO appointments
			(id, owner, type, date, time_from, time_to, customer, call_reason, property_id, status, reschedule, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			appointment.ID,
			appointment.Owner,
			string(appointment.Type),
			appointment.Date,
			appointment.BookedTime.From,
			appointment.BookedTime.To,
			customer,
			appointment.CallReason,
			appointment.PropertyID,
			string(appointment.Status),
			reschedule,
			appointment.CreatedAt.UTC().Truncate(time.Microsecond),
			appointment.UpdatedAt.UTC().Truncate(time.Microsecond),
		)
		return mapError(err)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RescheduleAppointment replaces prev with next. It fails with ErrConflict if
// the stored row no longer matches prev, and with ErrSlotNotAvailable if next
// overlaps another blocking appointment.
func (s *Storage) RescheduleAppointment(ctx context.Context, prev, next *models.Appointment) error {
	const op = "storage.postgres.RescheduleAppointment"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var status, date, from, to string
		err := tx.QueryRowContext(ctx,
			`SELECT status, to_char(date, 'YYYY-MM-DD'), time_from, time_to
			FROM appointments WHERE id=$1 FOR UPDATE`,
			prev.ID,
		).Scan(&status, &date, &from, &to)
		if err != nil {
			if err == sql.ErrNoRows {
				return response.ErrNotFound
			}
			return err
		}
		if models.Status(status) != prev.Status || date != prev.Date || from != prev.BookedTime.From || to != prev.BookedTime.To {
			return fmt.Errorf("appointment %s changed concurrently: %w", prev.ID, response.ErrConflict)
		}

		if err := lockOwner(ctx, tx, next.Owner); err != nil {
			return err
		}
		if err := checkOverlap(ctx, tx, next); err != nil {
			return err
		}

		_, reschedule, err := appointmentJSON(next)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE appointments
			SET date=$2, time_from=$3, time_to=$4, status=$5, reschedule=$6, updated_at=$7
			WHERE id=$1`,
			next.ID,
			next.Date,
			next.BookedTime.From,
			next.BookedTime.To,
			string(next.Status),
			reschedule,
			next.UpdatedAt.UTC().Truncate(time.Microsecond),
		)
		return mapError(err)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateAppointmentStatus moves an appointment from one status to another.
// The update only applies while the stored status is still from.
func (s *Storage) UpdateAppointmentStatus(ctx context.Context, id string, from, to models.Status) error {
	const op = "storage.postgres.UpdateAppointmentStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		id, string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE id=$1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, response.ErrInvalidTransition)
}

// ListAppointments returns up to q.Limit of the owner's appointments ordered
// by (created_at, id) descending, strictly after the cursor in q.
func (s *Storage) ListAppointments(ctx context.Context, owner string, q api.FeedQuery) ([]models.Appointment, error) {
	const op = "storage.postgres.ListAppointments"

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE owner=$1`
	args := []any{owner}

	if q.Status != nil {
		args = append(args, string(*q.Status))
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if q.LastCreatedAt != nil {
		args = append(args, q.LastCreatedAt.UTC())
		at := len(args)
		if q.LastID != "" {
			args = append(args, q.LastID)
			query += fmt.Sprintf(` AND (created_at, id) < ($%d, $%d)`, at, len(args))
		} else {
			query += fmt.Sprintf(` AND created_at < $%d`, at)
		}
	}

	query += ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out, err := collectAppointments(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// lockOwner serialises slot changes for one owner until the transaction ends.
// Row locks alone cannot cover a day that has no appointments yet.
func lockOwner(ctx context.Context, tx *sql.Tx, owner string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, owner)
	return err
}

// checkOverlap fails with ErrSlotNotAvailable if another blocking appointment
// of the same owner shares any minute with a. Zero-padded HH:mm values
// compare correctly as text.
func checkOverlap(ctx context.Context, tx *sql.Tx, a *models.Appointment) error {
	var conflicting string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM appointments
		WHERE owner=$1 AND date=$2 AND id <> $3 AND status <> $4
			AND time_from < $6 AND time_to > $5
		LIMIT 1
		FOR UPDATE`,
		a.Owner, a.Date, a.ID, string(models.StatusCancelled), a.BookedTime.From, a.BookedTime.To,
	).Scan(&conflicting)

	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("overlaps appointment %s: %w", conflicting, response.ErrSlotNotAvailable)
	}
}

// appointmentJSON encodes the JSONB columns as text. A missing reschedule
// history is stored as NULL.
func appointmentJSON(a *models.Appointment) (string, any, error) {
	customer, err := json.Marshal(a.Customer)
	if err != nil {
		return "", nil, err
	}
	if a.Reschedule == nil {
		return string(customer), nil, nil
	}

	reschedule, err := json.Marshal(a.Reschedule)
	if err != nil {
		return "", nil, err
	}

	return string(customer), string(reschedule), nil
}

func scanAppointment(row scanner) (*models.Appointment, error) {
	var (
		a                    models.Appointment
		typ, status          string
		customer, reschedule []byte
	)

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&typ,
		&a.Date,
		&a.BookedTime.From,
		&a.BookedTime.To,
		&customer,
		&a.CallReason,
		&a.PropertyID,
		&status,
		&reschedule,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = models.AppointmentType(typ)
	a.Status = models.Status(status)
	if err := json.Unmarshal(customer, &a.Customer); err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	if reschedule != nil {
		a.Reschedule = &models.Reschedule{}
		if err := json.Unmarshal(reschedule, a.Reschedule); err != nil {
			return nil, fmt.Errorf("decode reschedule: %w", err)
		}
	}

	return &a, nil
}

func collectAppointments(rows *sql.Rows) ([]models.Appointment, error) {
	var out []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

// mapError turns constraint violations into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", pqErr.Constraint, response.ErrConflict)
		case "23P01":
			return fmt.Errorf("%s: %w", pqErr.Constraint, response.ErrSlotNotAvailable)
		case "55P03":
			return fmt.Errorf("%s: %w", pqErr.Message, response.ErrLocked)
		}
	}

	return err
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slotly/bookhub/internal/booking"
	"github.com/slotly/bookhub/internal/domain/appointment"
	"github.com/slotly/bookhub/internal/domain/business"
)

type AppointmentsRepo struct {
	pool *pgxpool.Pool
	prom DBObserver
}

func NewAppointmentsRepo(pool *pgxpool.Pool, prom DBObserver) *AppointmentsRepo {
	return &AppointmentsRepo{pool: pool, prom: prom}
}

// Create enforces the operating-hours invariant inside the write path:
// the target business is loaded in the same transaction, its declared
// window parsed, and an out-of-window time rejected before the insert.
// A business whose hours do not parse is unconstrained.
func (r *AppointmentsRepo) Create(ctx context.Context, userID, businessID string, date time.Time, clock string) (appointment.Appointment, error) {
	clock = booking.NormalizeClock(clock)
	appt := appointment.New(userID, businessID, date, clock)

	err := observe(r.prom, "appointments.create", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		var hours string

		err = tx.QueryRow(ctx,
			`SELECT operating_hours FROM businesses WHERE id = $1`, businessID).Scan(&hours)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return business.ErrNotFound
			}
			return err
		}

		if window, ok := booking.ParseOperatingHours(hours); ok {
			if !booking.ValidateTime(clock, window) {
				return appointment.ErrOutsideHours
			}
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO appointments(id, user_id, business_id, date, time, status, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
			appt.ID, appt.UserID, appt.BusinessID, appt.Date, appt.Time, appt.Status, appt.CreatedAt, appt.UpdatedAt)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return appointment.Appointment{}, err
	}

	return appt, nil
}

// ListForUser is newest-first: customers want their recent activity on
// top.
func (r *AppointmentsRepo) ListForUser(ctx context.Context, userID string) ([]appointment.Appointment, error) {
	var out []appointment.Appointment

	err := observe(r.prom, "appointments.list_for_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT a.id, a.user_id, a.business_id, a.date, a.time, a.status, a.created_at, a.updated_at,
			        COALESCE(b.name, '')
			 FROM appointments a
			 LEFT JOIN businesses b ON b.id = a.business_id
			 WHERE a.user_id = $1
			 ORDER BY a.created_at DESC`,
			userID)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var a appointment.Appointment

			err = rows.Scan(&a.ID, &a.UserID, &a.BusinessID, &a.Date, &a.Time, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.BusinessName)

			if err != nil {
				return err
			}

			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// ListForBusiness is the owner's queue, chronological so it can be
// worked front to back.
func (r *AppointmentsRepo) ListForBusiness(ctx context.Context, businessID string) ([]appointment.Appointment, error) {
	var out []appointment.Appointment

	err := observe(r.prom, "appointments.list_for_business", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT a.id, a.user_id, a.business_id, a.date, a.time, a.status, a.created_at, a.updated_at,
			        u.name, u.email
			 FROM appointments a
			 JOIN users u ON u.id = a.user_id
			 WHERE a.business_id = $1
			 ORDER BY a.date ASC, a.time ASC`,
			businessID)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var a appointment.Appointment

			err = rows.Scan(&a.ID, &a.UserID, &a.BusinessID, &a.Date, &a.Time, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.CustomerName, &a.CustomerEmail)

			if err != nil {
				return err
			}

			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointment.Appointment, error) {
	var a appointment.Appointment

	err := observe(r.prom, "appointments.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, business_id, date, time, status, created_at, updated_at
			 FROM appointments
			 WHERE id = $1`,
			id,
		).Scan(&a.ID, &a.UserID, &a.BusinessID, &a.Date, &a.Time, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return appointment.Appointment{}, appointment.ErrNotFound
		}
		return appointment.Appointment{}, err
	}

	return a, nil
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id string) error {
	return observe(r.prom, "appointments.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return appointment.ErrNotFound
		}

		return nil
	})
}

// UpdateStatus guards the transition inside the write: the current row
// is locked, the transition table consulted, and the new status only
// then written. A concurrent confirm/cancel therefore cannot skip a
// state.
func (r *AppointmentsRepo) UpdateStatus(ctx context.Context, id string, to appointment.Status) (appointment.Appointment, error) {
	var a appointment.Appointment

	err := observe(r.prom, "appointments.update_status", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		var current appointment.Status

		err = tx.QueryRow(ctx,
			`SELECT status FROM appointments WHERE id = $1 FOR UPDATE`, id).Scan(&current)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return appointment.ErrNotFound
			}
			return err
		}

		if !appointment.CanTransition(current, to) {
			return appointment.ErrBadTransition
		}

		err = tx.QueryRow(ctx,
			`UPDATE appointments
			 SET status = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, user_id, business_id, date, time, status, created_at, updated_at`,
			id, to,
		).Scan(&a.ID, &a.UserID, &a.BusinessID, &a.Date, &a.Time, &a.Status, &a.CreatedAt, &a.UpdatedAt)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return appointment.Appointment{}, err
	}

	return a, nil
}

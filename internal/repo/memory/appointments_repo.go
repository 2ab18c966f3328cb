package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/slotly/bookhub/internal/booking"
	"github.com/slotly/bookhub/internal/domain/appointment"
	"github.com/slotly/bookhub/internal/domain/business"
)

// AppointmentsRepo mirrors the postgres ledger, including the in-write
// operating-hours check, so scenario tests exercise the same rules.
type AppointmentsRepo struct {
	mu         sync.RWMutex
	items      map[string]appointment.Appointment
	businesses *BusinessesRepo
}

func NewAppointmentsRepo(businesses *BusinessesRepo) *AppointmentsRepo {
	return &AppointmentsRepo{
		items:      make(map[string]appointment.Appointment),
		businesses: businesses,
	}
}

func (r *AppointmentsRepo) Create(ctx context.Context, userID, businessID string, date time.Time, clock string) (appointment.Appointment, error) {
	b, err := r.businesses.GetByID(ctx, businessID)

	if err != nil {
		return appointment.Appointment{}, business.ErrNotFound
	}

	clock = booking.NormalizeClock(clock)

	if window, ok := booking.ParseOperatingHours(b.OperatingHours); ok {
		if !booking.ValidateTime(clock, window) {
			return appointment.Appointment{}, appointment.ErrOutsideHours
		}
	}

	appt := appointment.New(userID, businessID, date, clock)

	r.mu.Lock()
	r.items[appt.ID] = appt
	r.mu.Unlock()

	return appt, nil
}

func (r *AppointmentsRepo) ListForUser(_ context.Context, userID string) ([]appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []appointment.Appointment

	for _, a := range r.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}

	// newest first
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *AppointmentsRepo) ListForBusiness(_ context.Context, businessID string) ([]appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []appointment.Appointment

	for _, a := range r.items {
		if a.BusinessID != nil && *a.BusinessID == businessID {
			out = append(out, a)
		}
	}

	// queue order: date then time ascending
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})

	return out, nil
}

func (r *AppointmentsRepo) GetByID(_ context.Context, id string) (appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]

	if !ok {
		return appointment.Appointment{}, appointment.ErrNotFound
	}

	return a, nil
}

func (r *AppointmentsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return appointment.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *AppointmentsRepo) UpdateStatus(_ context.Context, id string, to appointment.Status) (appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]

	if !ok {
		return appointment.Appointment{}, appointment.ErrNotFound
	}

	if !appointment.CanTransition(a.Status, to) {
		return appointment.Appointment{}, appointment.ErrBadTransition
	}

	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	r.items[id] = a

	return a, nil
}

package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/slotly/bookhub/internal/domain/appointment"
	"github.com/slotly/bookhub/internal/domain/business"
	"github.com/slotly/bookhub/internal/http/handlers"
)

const (
	apptID     = "11111111-1111-4111-8111-111111111111"
	bizID      = "22222222-2222-4222-8222-222222222222"
	customerID = "33333333-3333-4333-8333-333333333333"
	ownerID    = "44444444-4444-4444-8444-444444444444"
	strangerID = "55555555-5555-4555-8555-555555555555"
)

type fakeAppointments struct {
	createFn       func(ctx context.Context, userID, businessID string, date time.Time, clock string) (appointment.Appointment, error)
	listForUserFn  func(ctx context.Context, userID string) ([]appointment.Appointment, error)
	getByIDFn      func(ctx context.Context, id string) (appointment.Appointment, error)
	deleteFn       func(ctx context.Context, id string) error
	updateStatusFn func(ctx context.Context, id string, to appointment.Status) (appointment.Appointment, error)
	deleted        int
}

func (f *fakeAppointments) Create(ctx context.Context, userID, businessID string, date time.Time, clock string) (appointment.Appointment, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, businessID, date, clock)
	}
	return appointment.Appointment{}, nil
}

func (f *fakeAppointments) ListForUser(ctx context.Context, userID string) ([]appointment.Appointment, error) {
	if f.listForUserFn != nil {
		return f.listForUserFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeAppointments) GetByID(ctx context.Context, id string) (appointment.Appointment, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return appointment.Appointment{}, appointment.ErrNotFound
}

func (f *fakeAppointments) Delete(ctx context.Context, id string) error {
	f.deleted++
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAppointments) UpdateStatus(ctx context.Context, id string, to appointment.Status) (appointment.Appointment, error) {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, to)
	}
	return appointment.Appointment{}, nil
}

type fakeBusinessReader struct {
	getByIDFn func(ctx context.Context, id string) (business.Business, error)
}

func (f *fakeBusinessReader) GetByID(ctx context.Context, id string) (business.Business, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return business.Business{}, business.ErrNotFound
}

func pendingAppt() appointment.Appointment {
	id := bizID
	return appointment.Appointment{
		ID:         apptID,
		UserID:     customerID,
		BusinessID: &id,
		Time:       "10:00",
		Status:     appointment.StatusPending,
	}
}

func ownerReader() *fakeBusinessReader {
	return &fakeBusinessReader{
		getByIDFn: func(_ context.Context, id string) (business.Business, error) {
			if id == bizID {
				return business.Business{ID: bizID, OwnerID: ownerID}, nil
			}
			return business.Business{}, business.ErrNotFound
		},
	}
}

func TestBookAppointment(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*fakeAppointments)
		wantStatus int
	}{
		{
			name: "success",
			body: `{"businessId":"` + bizID + `","date":"2026-09-01","time":"10:00"}`,
			setup: func(f *fakeAppointments) {
				f.createFn = func(_ context.Context, userID, businessID string, date time.Time, clock string) (appointment.Appointment, error) {
					if userID != customerID {
						t.Errorf("booked as %q, want caller identity", userID)
					}
					if clock != "10:00" {
						t.Errorf("clock = %q", clock)
					}
					return appointment.Appointment{ID: apptID, UserID: userID, BusinessID: &businessID, Date: date, Time: clock, Status: appointment.StatusPending}, nil
				}
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "outside operating hours",
			body: `{"businessId":"` + bizID + `","date":"2026-09-01","time":"23:30"}`,
			setup: func(f *fakeAppointments) {
				f.createFn = func(context.Context, string, string, time.Time, string) (appointment.Appointment, error) {
					return appointment.Appointment{}, appointment.ErrOutsideHours
				}
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown business",
			body: `{"businessId":"` + bizID + `","date":"2026-09-01","time":"10:00"}`,
			setup: func(f *fakeAppointments) {
				f.createFn = func(context.Context, string, string, time.Time, string) (appointment.Appointment, error) {
					return appointment.Appointment{}, business.ErrNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing businessId",
			body:       `{"date":"2026-09-01","time":"10:00"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "time is not a clock",
			body:       `{"businessId":"` + bizID + `","date":"2026-09-01","time":"morning"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "date in wrong shape",
			body:       `{"businessId":"` + bizID + `","date":"01/09/2026","time":"10:00"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeAppointments{}
			if tc.setup != nil {
				tc.setup(store)
			}

			h := handlers.NewAppointmentsHandler(store, ownerReader())
			r, cookie := authedRouter(t, http.MethodPost, "/appointments", h.Create, customerID, "customer")

			w := doJSON(r, http.MethodPost, "/appointments", tc.body, cookie)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestDeleteAppointmentOwnership(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		wantStatus int
		wantDelete int
	}{
		{name: "booking customer may delete", caller: customerID, wantStatus: http.StatusOK, wantDelete: 1},
		{name: "business owner may delete", caller: ownerID, wantStatus: http.StatusOK, wantDelete: 1},
		{name: "third party may not", caller: strangerID, wantStatus: http.StatusForbidden, wantDelete: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeAppointments{
				getByIDFn: func(_ context.Context, id string) (appointment.Appointment, error) {
					if id != apptID {
						return appointment.Appointment{}, appointment.ErrNotFound
					}
					return pendingAppt(), nil
				},
			}

			h := handlers.NewAppointmentsHandler(store, ownerReader())
			r, cookie := authedRouter(t, http.MethodDelete, "/appointments/:id", h.Delete, tc.caller, "customer")

			w := doJSON(r, http.MethodDelete, "/appointments/"+apptID, "", cookie)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			if store.deleted != tc.wantDelete {
				t.Fatalf("delete reached the store %d times, want %d", store.deleted, tc.wantDelete)
			}
		})
	}
}

func TestDeleteAppointmentRejectsBadID(t *testing.T) {
	h := handlers.NewAppointmentsHandler(&fakeAppointments{}, ownerReader())
	r, cookie := authedRouter(t, http.MethodDelete, "/appointments/:id", h.Delete, customerID, "customer")

	w := doJSON(r, http.MethodDelete, "/appointments/not-a-uuid", "", cookie)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestDeleteAppointmentNotFound(t *testing.T) {
	h := handlers.NewAppointmentsHandler(&fakeAppointments{}, ownerReader())
	r, cookie := authedRouter(t, http.MethodDelete, "/appointments/:id", h.Delete, customerID, "customer")

	w := doJSON(r, http.MethodDelete, "/appointments/"+apptID, "", cookie)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateStatusAuthorization(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		target     string
		wantStatus int
	}{
		{name: "owner confirms", caller: ownerID, target: "confirmed", wantStatus: http.StatusOK},
		{name: "owner cancels", caller: ownerID, target: "cancelled", wantStatus: http.StatusOK},
		{name: "customer cancels own booking", caller: customerID, target: "cancelled", wantStatus: http.StatusOK},
		{name: "customer may not confirm", caller: customerID, target: "confirmed", wantStatus: http.StatusForbidden},
		{name: "third party may not touch it", caller: strangerID, target: "cancelled", wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeAppointments{
				getByIDFn: func(_ context.Context, id string) (appointment.Appointment, error) {
					return pendingAppt(), nil
				},
				updateStatusFn: func(_ context.Context, id string, to appointment.Status) (appointment.Appointment, error) {
					appt := pendingAppt()
					appt.Status = to
					return appt, nil
				},
			}

			h := handlers.NewAppointmentsHandler(store, ownerReader())
			r, cookie := authedRouter(t, http.MethodPatch, "/appointments/:id/status", h.UpdateStatus, tc.caller, "customer")

			w := doJSON(r, http.MethodPatch, "/appointments/"+apptID+"/status", `{"status":"`+tc.target+`"}`, cookie)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestUpdateStatusBadTransitionConflicts(t *testing.T) {
	store := &fakeAppointments{
		getByIDFn: func(_ context.Context, id string) (appointment.Appointment, error) {
			appt := pendingAppt()
			appt.Status = appointment.StatusCancelled
			return appt, nil
		},
		updateStatusFn: func(_ context.Context, id string, to appointment.Status) (appointment.Appointment, error) {
			return appointment.Appointment{}, appointment.ErrBadTransition
		},
	}

	h := handlers.NewAppointmentsHandler(store, ownerReader())
	r, cookie := authedRouter(t, http.MethodPatch, "/appointments/:id/status", h.UpdateStatus, ownerID, "business-owner")

	w := doJSON(r, http.MethodPatch, "/appointments/"+apptID+"/status", `{"status":"confirmed"}`, cookie)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	h := handlers.NewAppointmentsHandler(&fakeAppointments{}, ownerReader())
	r, cookie := authedRouter(t, http.MethodPatch, "/appointments/:id/status", h.UpdateStatus, ownerID, "business-owner")

	w := doJSON(r, http.MethodPatch, "/appointments/"+apptID+"/status", `{"status":"archived"}`, cookie)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", w.Code, w.Body.String())
	}
}

func TestMineListsCallerBookings(t *testing.T) {
	store := &fakeAppointments{
		listForUserFn: func(_ context.Context, userID string) ([]appointment.Appointment, error) {
			if userID != customerID {
				t.Errorf("listed for %q, want caller identity", userID)
			}
			return []appointment.Appointment{pendingAppt()}, nil
		},
	}

	h := handlers.NewAppointmentsHandler(store, ownerReader())
	r, cookie := authedRouter(t, http.MethodGet, "/appointments/mine", h.Mine, customerID, "customer")

	w := doJSON(r, http.MethodGet, "/appointments/mine", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
}

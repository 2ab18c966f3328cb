package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/slotly/bookhub/internal/booking"
	"github.com/slotly/bookhub/internal/config"
	"github.com/slotly/bookhub/internal/domain/appointment"
	"github.com/slotly/bookhub/internal/domain/business"
	"github.com/slotly/bookhub/internal/http/middlewares"
)

type AppointmentStore interface {
	Create(ctx context.Context, userID, businessID string, date time.Time, clock string) (appointment.Appointment, error)
	ListForUser(ctx context.Context, userID string) ([]appointment.Appointment, error)
	GetByID(ctx context.Context, id string) (appointment.Appointment, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, to appointment.Status) (appointment.Appointment, error)
}

type BusinessReader interface {
	GetByID(ctx context.Context, id string) (business.Business, error)
}

type AppointmentsHandler struct {
	store      AppointmentStore
	businesses BusinessReader
}

func NewAppointmentsHandler(store AppointmentStore, businesses BusinessReader) *AppointmentsHandler {
	return &AppointmentsHandler{store: store, businesses: businesses}
}

// Create books a pending appointment. The ledger validates the time
// against the business's declared hours inside the write, so the check
// cannot be bypassed by a client that skips the UX-side validation.
func (h *AppointmentsHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	var req appointment.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !booking.IsClock(req.Time) {
		RespondValidation(ctx, []FieldError{{Field: "time", Message: "must be a clock time in HH:MM form"}})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)

	if err != nil {
		RespondValidation(ctx, []FieldError{{Field: "date", Message: "must be a date in YYYY-MM-DD form"}})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	appt, err := h.store.Create(cctx, userID, req.BusinessID, date, req.Time)

	if err != nil {
		switch {
		case errors.Is(err, appointment.ErrOutsideHours):
			RespondValidation(ctx, []FieldError{{Field: "time", Message: "is outside business operating hours"}})
		case errors.Is(err, business.ErrNotFound):
			RespondNotFound(ctx, "Business not found")
		default:
			slog.Default().ErrorContext(ctx.Request.Context(), "create appointment failed", "err", err)
			RespondInternal(ctx, "Error booking appointment")
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Appointment booked successfully",
		"appointment": appt,
	})
}

// Mine lists the caller's bookings, newest first.
func (h *AppointmentsHandler) Mine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	appointments, err := h.store.ListForUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Error fetching appointments")
		return
	}

	if appointments == nil {
		appointments = []appointment.Appointment{}
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

// Delete removes a booking. Only the booking customer or the booked
// business's owner may do it: a capability check against the loaded
// resource, not a role check.
func (h *AppointmentsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondValidation(ctx, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	appt, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			RespondNotFound(ctx, "Appointment not found")
			return
		}

		RespondInternal(ctx, "Error deleting appointment")
		return
	}

	if !h.isStakeholder(cctx, appt, userID) {
		RespondForbidden(ctx, "You may not modify this appointment")
		return
	}

	err = h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			RespondNotFound(ctx, "Appointment not found")
			return
		}

		RespondInternal(ctx, "Error deleting appointment")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment deleted"})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed cancelled"`
}

// UpdateStatus moves a booking through its lifecycle. The business
// owner may confirm or cancel queue items; the customer may only cancel
// their own booking.
func (h *AppointmentsHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	if uuid.Validate(id) != nil {
		RespondValidation(ctx, []FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	var req updateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	target, err := appointment.ParseStatus(req.Status)

	if err != nil {
		RespondValidation(ctx, []FieldError{{Field: "status", Message: "must be one of pending, confirmed, cancelled"}})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	appt, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			RespondNotFound(ctx, "Appointment not found")
			return
		}

		RespondInternal(ctx, "Error updating appointment")
		return
	}

	isCustomer := appt.UserID == userID
	isOwner := h.ownsBookedBusiness(cctx, appt, userID)

	switch {
	case isOwner:
		// owner may confirm or cancel
	case isCustomer && target == appointment.StatusCancelled:
		// customer may cancel their own booking
	default:
		RespondForbidden(ctx, "You may not modify this appointment")
		return
	}

	updated, err := h.store.UpdateStatus(cctx, id, target)

	if err != nil {
		switch {
		case errors.Is(err, appointment.ErrBadTransition):
			RespondConflict(ctx, "Status transition not allowed")
		case errors.Is(err, appointment.ErrNotFound):
			RespondNotFound(ctx, "Appointment not found")
		default:
			RespondInternal(ctx, "Error updating appointment")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "appointment": updated})
}

func (h *AppointmentsHandler) isStakeholder(ctx context.Context, appt appointment.Appointment, userID string) bool {
	if appt.UserID == userID {
		return true
	}
	return h.ownsBookedBusiness(ctx, appt, userID)
}

func (h *AppointmentsHandler) ownsBookedBusiness(ctx context.Context, appt appointment.Appointment, userID string) bool {
	if appt.BusinessID == nil {
		return false
	}

	b, err := h.businesses.GetByID(ctx, *appt.BusinessID)

	if err != nil {
		return false
	}

	return b.OwnerID == userID
}

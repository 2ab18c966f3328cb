package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrOutsideHours  = errors.New("time is outside business operating hours")
	ErrBadTransition = errors.New("status transition not allowed")
	ErrUnknownStatus = errors.New("unknown appointment status")
)

type Appointment struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	// BusinessID is required for new bookings; it stays a pointer so
	// legacy rows created before the link existed still scan.
	BusinessID *string   `json:"businessId,omitempty"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"` // normalized HH:MM, lexically comparable
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Joined-in display fields: the business name for the customer
	// view, customer contact details for the business queue view.
	BusinessName  string `json:"businessName,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
}

type CreateRequest struct {
	BusinessID string `json:"businessId" binding:"required,uuid"`
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string `json:"time" binding:"required"`
}

// New builds a pending appointment; date must already be parsed and
// time normalized by the caller.
func New(userID, businessID string, date time.Time, clock string) Appointment {
	now := time.Now().UTC()

	return Appointment{
		ID:         uuid.NewString(),
		UserID:     userID,
		BusinessID: &businessID,
		Date:       date,
		Time:       clock,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

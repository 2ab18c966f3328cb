package business

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	CategoryBarber     = "barber"
	CategoryRestaurant = "restaurant"
	CategoryShows      = "shows"
	CategoryOther      = "other"
)

const DefaultOperatingHours = "9:00 AM - 5:00 PM"

var (
	ErrNotFound     = errors.New("business not found")
	ErrAlreadyOwned = errors.New("user already owns a business")
)

type Business struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	OperatingHours string    `json:"operatingHours"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=120"`
	Description    string `json:"description" binding:"omitempty,max=1000"`
	OperatingHours string `json:"operatingHours" binding:"omitempty,max=120"`
	Category       string `json:"category" binding:"omitempty,oneof=barber restaurant shows other"`
}

// NewFromCreateRequest applies the registry defaults: category falls
// back to "other" and operating hours to the conventional day window.
func NewFromCreateRequest(ownerID string, req CreateRequest) Business {
	now := time.Now().UTC()

	category := req.Category
	if category == "" {
		category = CategoryOther
	}

	hours := req.OperatingHours
	if hours == "" {
		hours = DefaultOperatingHours
	}

	return Business{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Name:           req.Name,
		Description:    req.Description,
		OperatingHours: hours,
		Category:       category,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

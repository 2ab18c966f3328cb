package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotly/bookhub/internal/cache"
	"github.com/slotly/bookhub/internal/config"
	"github.com/slotly/bookhub/internal/domain/appointment"
	"github.com/slotly/bookhub/internal/domain/business"
	"github.com/slotly/bookhub/internal/http/middlewares"
)

type BusinessStore interface {
	Create(ctx context.Context, b business.Business) (business.Business, error)
	GetByOwner(ctx context.Context, ownerID string) (business.Business, error)
	List(ctx context.Context) ([]business.Business, error)
}

type BusinessQueue interface {
	ListForBusiness(ctx context.Context, businessID string) ([]appointment.Appointment, error)
}

type BusinessHandler struct {
	store   BusinessStore
	queue   BusinessQueue
	listing *cache.Cache
}

const businessListKey = "businesses:all"

func NewBusinessHandler(store BusinessStore, queue BusinessQueue, listing *cache.Cache) *BusinessHandler {
	return &BusinessHandler{store: store, queue: queue, listing: listing}
}

// Create enforces one business per caller. The store's unique
// constraint is authoritative; there is no read-check here that a
// concurrent request could slip past.
func (h *BusinessHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	var req business.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	b, err := h.store.Create(cctx, business.NewFromCreateRequest(userID, req))

	if err != nil {
		if errors.Is(err, business.ErrAlreadyOwned) {
			RespondConflict(ctx, "User already owns a business")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "create business failed", "err", err)
		RespondInternal(ctx, "Error creating business")
		return
	}

	if h.listing != nil {
		h.listing.Delete(businessListKey)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Business created successfully",
		"business": b,
	})
}

// Mine returns the caller's business, or a successful null when they
// don't own one yet.
func (h *BusinessHandler) Mine(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	b, err := h.store.GetByOwner(cctx, userID)

	if err != nil {
		if errors.Is(err, business.ErrNotFound) {
			ctx.JSON(http.StatusOK, gin.H{"success": true, "business": nil})
			return
		}

		RespondInternal(ctx, "Error fetching business")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "business": b})
}

// List is the discovery endpoint customers browse; served through the
// TTL cache.
func (h *BusinessHandler) List(ctx *gin.Context) {
	if h.listing != nil {
		if cached, ok := h.listing.Get(businessListKey); ok {
			if businesses, ok := cached.([]business.Business); ok {
				ctx.JSON(http.StatusOK, gin.H{"success": true, "businesses": businesses})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	businesses, err := h.store.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Error fetching businesses")
		return
	}

	if businesses == nil {
		businesses = []business.Business{}
	}

	if h.listing != nil {
		h.listing.Set(businessListKey, businesses)
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "businesses": businesses})
}

// Appointments is the owner's queue view, earliest first.
func (h *BusinessHandler) Appointments(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	b, err := h.store.GetByOwner(cctx, userID)

	if err != nil {
		if errors.Is(err, business.ErrNotFound) {
			RespondNotFound(ctx, "Business not found")
			return
		}

		RespondInternal(ctx, "Error fetching appointments")
		return
	}

	appointments, err := h.queue.ListForBusiness(cctx, b.ID)

	if err != nil {
		RespondInternal(ctx, "Error fetching appointments")
		return
	}

	if appointments == nil {
		appointments = []appointment.Appointment{}
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

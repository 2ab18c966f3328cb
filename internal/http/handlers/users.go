package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotly/bookhub/internal/config"
	"github.com/slotly/bookhub/internal/domain/user"
)

type UsersLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type UsersHandler struct {
	users UsersLister
}

func NewUsersHandler(users UsersLister) *UsersHandler {
	return &UsersHandler{users: users}
}

// List is admin-only (enforced by RequireRole on the route). Password
// hashes never serialize, so the full entity is safe to return.
func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Error fetching users")
		return
	}

	if users == nil {
		users = []user.User{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"count":   len(users),
	})
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotly/bookhub/internal/auth"
	"github.com/slotly/bookhub/internal/config"
	"github.com/slotly/bookhub/internal/domain/user"
	"github.com/slotly/bookhub/internal/http/middlewares"
	"github.com/slotly/bookhub/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
}

// SessionGenerations is the revocation side of logout; satisfied by
// revocation.Store.
type SessionGenerations interface {
	Generation(ctx context.Context, userID string) (int64, error)
	Bump(ctx context.Context, userID string) (int64, error)
}

// SessionMetrics decouples the handler from the prometheus registry so
// tests can pass nil.
type SessionMetrics interface {
	SessionIssued()
	SessionRevoked()
}

type AuthHandler struct {
	users   UserReader
	writer  UserWriter
	gens    SessionGenerations
	jwt     *auth.Manager
	cfg     config.Config
	metrics SessionMetrics
}

func NewAuthHandler(users UserReader, writer UserWriter, gens SessionGenerations, jwtManager *auth.Manager, cfg config.Config, metrics SessionMetrics) *AuthHandler {
	return &AuthHandler{
		users:   users,
		writer:  writer,
		gens:    gens,
		jwt:     jwtManager,
		cfg:     cfg,
		metrics: metrics,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the complexity rules don't fit binding tags
	if problems := security.ValidatePassword(req.Password); len(problems) > 0 {
		fields := make([]FieldError, 0, len(problems))
		for _, p := range problems {
			fields = append(fields, FieldError{Field: "password", Message: p})
		}
		RespondValidation(ctx, fields)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	role := req.Role
	if role == "" {
		role = user.RoleCustomer
	}

	u, err := h.writer.Create(cctx, req.Name, req.Email, hash, role)

	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyUsed) {
			RespondConflict(ctx, "Email already in use")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "register failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	if !h.issueSession(ctx, u) {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    u,
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// same outcome as a wrong password: no account enumeration
		RespondUnauthorized(ctx, "Invalid email or password")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid email or password")
		return
	}

	if !h.issueSession(ctx, foundUser) {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    foundUser,
		"message": "Login successful.",
	})
}

// Logout clears the cookie and bumps the user's session generation so
// every outstanding token dies now, not at its natural expiry.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.cfg.SessionCookieName)

	if err == nil && raw != "" {
		claims, verr := h.jwt.Verify(raw)

		if verr == nil {
			cctx, cancel := config.WithTimeout(3 * time.Second)
			defer cancel()

			if _, berr := h.gens.Bump(cctx, claims.UserID); berr == nil {
				if h.metrics != nil {
					h.metrics.SessionRevoked()
				}
			} else {
				slog.Default().ErrorContext(ctx.Request.Context(), "logout revocation failed", "err", berr)
			}
		}
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logout successful.",
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Error fetching user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

// helpers

// issueSession signs a token at the user's current generation and sets
// the cookie. Responds itself on failure and returns false.
func (h *AuthHandler) issueSession(ctx *gin.Context, u user.User) bool {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	gen, err := h.gens.Generation(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return false
	}

	token, err := h.jwt.Issue(u.ID, u.Role, gen)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return false
	}

	h.setSessionCookie(ctx, token)

	if h.metrics != nil {
		h.metrics.SessionIssued()
	}

	return true
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		h.cfg.SessionCookieName,
		token,
		int(h.jwt.TTL().Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		h.cfg.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}

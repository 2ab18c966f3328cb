package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotly/bookhub/internal/auth"
	"github.com/slotly/bookhub/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticGens struct {
	gen int64
	err error
}

func (s *staticGens) Generation(_ context.Context, _ string) (int64, error) {
	return s.gen, s.err
}

func protectedRouter(mw *middlewares.AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	chain := append([]gin.HandlerFunc{mw.RequireSession()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		userID, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
	})

	r.GET("/protected", chain...)

	return r
}

func get(r http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	jwt := auth.NewManager("mw-test-secret", time.Hour)

	freshToken := func(t *testing.T, gen int64) string {
		t.Helper()
		token, err := jwt.Issue("u1", "customer", gen)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		return token
	}

	t.Run("no cookie is unauthorized", func(t *testing.T) {
		r := protectedRouter(middlewares.NewAuthMiddleware(jwt, &staticGens{}, "session"))

		w := get(r, nil)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("garbage token is forbidden", func(t *testing.T) {
		r := protectedRouter(middlewares.NewAuthMiddleware(jwt, &staticGens{}, "session"))

		w := get(r, &http.Cookie{Name: "session", Value: "not.a.jwt"})

		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("expired token is forbidden", func(t *testing.T) {
		expired := auth.NewManager("mw-test-secret", -time.Minute)
		token, err := expired.Issue("u1", "customer", 0)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		r := protectedRouter(middlewares.NewAuthMiddleware(jwt, &staticGens{}, "session"))

		w := get(r, &http.Cookie{Name: "session", Value: token})

		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("stale generation is forbidden", func(t *testing.T) {
		// token minted at generation 0, user has since logged out
		r := protectedRouter(middlewares.NewAuthMiddleware(jwt, &staticGens{gen: 1}, "session"))

		w := get(r, &http.Cookie{Name: "session", Value: freshToken(t, 0)})

		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("generation lookup failure fails closed", func(t *testing.T) {
		r := protectedRouter(middlewares.NewAuthMiddleware(jwt, &staticGens{err: errors.New("store down")}, "session"))

		w := get(r, &http.Cookie{Name: "session", Value: freshToken(t, 0)})

		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("valid token passes identity through", func(t *testing.T) {
		r := protectedRouter(middlewares.NewAuthMiddleware(jwt, &staticGens{}, "session"))

		w := get(r, &http.Cookie{Name: "session", Value: freshToken(t, 0)})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}
		if body := w.Body.String(); body != `{"role":"customer","userId":"u1"}` {
			t.Fatalf("identity payload = %s", body)
		}
	})
}

func TestRequireRole(t *testing.T) {
	jwt := auth.NewManager("mw-test-secret", time.Hour)
	mw := middlewares.NewAuthMiddleware(jwt, &staticGens{}, "session")

	tokenFor := func(t *testing.T, role string) *http.Cookie {
		t.Helper()
		token, err := jwt.Issue("u1", role, 0)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		return &http.Cookie{Name: "session", Value: token}
	}

	r := protectedRouter(mw, mw.RequireRole("admin"))

	if w := get(r, tokenFor(t, "customer")); w.Code != http.StatusForbidden {
		t.Fatalf("customer status = %d, want 403", w.Code)
	}

	if w := get(r, tokenFor(t, "admin")); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", w.Code)
	}
}

package courierapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

func userFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, errors.Wrap(models.ErrUnauthorized, "authorization header missing"))
			return
		}
		u, err := h.users.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, u)))
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return h.requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := userFrom(r.Context()); u == nil || u.Role != models.RoleAdmin {
			writeError(w, errors.Wrap(models.ErrUnauthorized, "admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
	"github.com/ZubairAhmed90/multipos-sub002/internal/users"
)

// Identity resolves the session into a session snapshot for the route
// guard. The mapping is deliberate: a clean "no user" reads as anonymous, a
// backend failure reads as unknown so the guard refuses to render rather
// than redirect a user who may in fact be logged in.
func Identity(logger *slog.Logger, userService *users.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			snap := authz.SessionSnapshot{State: authz.AuthUnknown}

			sess := shared.SessionFromContext(ctx)
			if sess != nil {
				raw := sess.User()
				if raw == "" {
					snap.State = authz.AuthAnonymous
				} else if id, err := strconv.ParseInt(raw, 10, 64); err != nil {
					snap.State = authz.AuthAnonymous
				} else {
					principal, err := userService.PrincipalByID(ctx, id)
					switch {
					case err == nil:
						snap = authz.SessionSnapshot{State: authz.AuthAuthenticated, Principal: principal}
					case errors.Is(err, shared.ErrNotFound):
						snap.State = authz.AuthAnonymous
					default:
						if logger != nil {
							logger.Error("resolve principal", slog.Any("error", err))
						}
						// Leave the state unknown.
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(authz.ContextWithSnapshot(ctx, snap)))
		})
	}
}

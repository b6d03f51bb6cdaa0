package middleware

import (
	"context"
	"errors"
	"net/http"

	"taskdiary/internal/app/service"
	"taskdiary/internal/common"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/platform/session"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	identityCtxKey contextKey = "identity"
	roleCtxKey     contextKey = "role"
)

// Auth holds the middleware dependencies: the session service resolves
// tokens to identities, the flash store carries the notices that accompany
// every redirect.
type Auth struct {
	sessions *service.SessionService
	flashes  session.FlashStore
}

func NewAuth(sessions *service.SessionService, flashes session.FlashStore) *Auth {
	return &Auth{sessions: sessions, flashes: flashes}
}

// RequireSession resolves the request's session token to an Identity and
// stores it in the context. Absent or invalid sessions never reach the
// handler; they are redirected to the login page with a notice.
func (m *Auth) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			m.loginRedirect(w, r)
			return
		}

		identity, err := m.sessions.Resolve(r.Context(), claims)
		if err != nil {
			m.loginRedirect(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityCtxKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates on role membership. The role comes from a live fetch of
// the user record, not from token claims, and is stored in the context for
// handlers that branch on it. Role mismatch redirects to the dashboard;
// an unknown role or vanished user falls back to login.
func (m *Auth) RequireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentityFromContext(r.Context())
			if !ok {
				m.loginRedirect(w, r)
				return
			}

			user, err := m.sessions.RequireRole(r.Context(), identity, allowed...)
			if err != nil {
				if errors.Is(err, common.ErrForbidden) {
					m.pushFlash(w, r, session.Flash{Message: "You do not have permission to access this page.", Severity: "error"})
					http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
					return
				}
				m.loginRedirect(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), roleCtxKey, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Auth) loginRedirect(w http.ResponseWriter, r *http.Request) {
	m.pushFlash(w, r, session.Flash{Message: "Please log in to access this page.", Severity: "error"})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (m *Auth) pushFlash(w http.ResponseWriter, r *http.Request, flash session.Flash) {
	// Flash failures never block the redirect; the notice is best effort.
	_ = m.flashes.Push(r.Context(), FlashKey(w, r), flash)
}

func GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(model.Identity)
	return identity, ok
}

func GetRoleFromContext(ctx context.Context) (model.Role, bool) {
	role, ok := ctx.Value(roleCtxKey).(model.Role)
	return role, ok
}

package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// FlashCookieName identifies pre-login visitors so that signup and login
// notices survive the redirect before any session exists.
const FlashCookieName = "flash_id"

// FlashKey returns the key flashes are queued under for this request: the
// session id when authenticated, otherwise a flash cookie minted on demand.
func FlashKey(w http.ResponseWriter, r *http.Request) string {
	if identity, ok := GetIdentityFromContext(r.Context()); ok {
		return identity.SessionID
	}

	if c, err := r.Cookie(FlashCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
	})
	return key
}

// FlashKeys returns every key the visitor may have notices queued under:
// the pre-login cookie key, then the session id once authenticated. A notice
// pushed during login lands under the cookie key but must still reach the
// first page rendered with the new session, so draining has to cover both.
// Once authenticated the cookie has served its purpose and is retired.
func FlashKeys(w http.ResponseWriter, r *http.Request) []string {
	var keys []string
	cookie, err := r.Cookie(FlashCookieName)
	if err == nil && cookie.Value != "" {
		keys = append(keys, cookie.Value)
	}

	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		return keys
	}
	if len(keys) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return append(keys, identity.SessionID)
}

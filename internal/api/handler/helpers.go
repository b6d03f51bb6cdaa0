package handler

import (
	"net/http"

	"taskdiary/internal/api/middleware"
	"taskdiary/internal/domain/model"
	"taskdiary/internal/platform/session"
	"taskdiary/internal/view"
)

// SessionCookieName carries the signed session token. jwtauth's default
// find functions read it by this exact name.
const SessionCookieName = "jwt"

// pages bundles the collaborators every page handler needs: the view
// renderer and the flash channel. Flashes queued for the current visitor
// are drained into each rendered data bag.
type pages struct {
	renderer view.Renderer
	flashes  session.FlashStore
}

func (p pages) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	// Drain every key the visitor may have notices under. A login pushes
	// its notice under the pre-session cookie key; the first render after
	// it carries the session id, so both keys have to be checked.
	var flashes []session.Flash
	for _, key := range middleware.FlashKeys(w, r) {
		if batch, err := p.flashes.Drain(r.Context(), key); err == nil {
			flashes = append(flashes, batch...)
		}
	}
	if len(flashes) > 0 {
		data["flashes"] = flashes
	}
	p.renderer.Render(w, name, data)
}

func (p pages) flash(w http.ResponseWriter, r *http.Request, message, severity string) {
	// Best effort: a lost notice must not abort the request.
	_ = p.flashes.Push(r.Context(), middleware.FlashKey(w, r), session.Flash{Message: message, Severity: severity})
}

func (p pages) flashRedirect(w http.ResponseWriter, r *http.Request, target, message, severity string) {
	p.flash(w, r, message, severity)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// identity pulls the resolved Identity out of the request context. Routes
// registered behind RequireSession always have one; the redirect is the
// fallback for a misregistered route.
func (p pages) identity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
	return identity, ok
}

package handler

import (
	"errors"
	"net/http"

	"taskdiary/internal/app/service"
	"taskdiary/internal/common"
	"taskdiary/internal/common/security"
	"taskdiary/internal/platform/session"
	"taskdiary/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type AuthHandler struct {
	pages
	authService *service.AuthService
	sessions    *service.SessionService
}

func NewAuthHandler(authService *service.AuthService, sessions *service.SessionService, renderer view.Renderer, flashes session.FlashStore) *AuthHandler {
	return &AuthHandler{
		pages:       pages{renderer: renderer, flashes: flashes},
		authService: authService,
		sessions:    sessions,
	}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/signup", h.signupForm)
	r.Post("/signup", h.signup)
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)
}

func (h *AuthHandler) signupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup", nil)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/signup", "Invalid form submission.", "error")
		return
	}

	_, err := h.authService.Signup(r.Context(), service.SignupRequest{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     r.FormValue("role"),
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			h.flashRedirect(w, r, "/signup", "Email already registered.", "error")
		case errors.Is(err, common.ErrValidation):
			h.flashRedirect(w, r, "/signup", "Email and password are required.", "error")
		default:
			h.flashRedirect(w, r, "/signup", "An error occurred during registration.", "error")
		}
		return
	}

	h.flashRedirect(w, r, "/login", "Registration successful! Please log in.", "success")
}

func (h *AuthHandler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", nil)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/login", "Invalid form submission.", "error")
		return
	}

	user, err := h.authService.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			h.flashRedirect(w, r, "/login", "Invalid email or password.", "error")
		} else {
			h.flashRedirect(w, r, "/login", "An error occurred during login.", "error")
		}
		return
	}

	token, err := h.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		h.flashRedirect(w, r, "/login", "An error occurred during login.", "error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.flashRedirect(w, r, "/dashboard", "Login successful!", "success")
}

// logout destroys the server-side session if the request still carries a
// decodable token, then clears the cookie. It works for any visitor, even
// one whose session already lapsed.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		if sid, err := security.GetSessionIDFromClaims(claims); err == nil {
			_ = h.sessions.Destroy(r.Context(), sid)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	h.flashRedirect(w, r, "/login", "You have been logged out successfully.", "success")
}

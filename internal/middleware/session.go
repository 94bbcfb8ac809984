package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claimdesk/internal/upload"
)

const SessionCookieName = "claimdesk_session"

type contextKey string

const contextKeyForm contextKey = "form"

// FormSessions looks up and creates per-browser upload forms.
type FormSessions interface {
	Get(id string) (*upload.Form, bool)
	Create() (string, *upload.Form, error)
}

// Session attaches the caller's upload form to the request context, starting
// a new session (and setting its cookie) when the cookie is missing or stale.
// It answers 503 when no session slot can be freed.
func Session(sessions FormSessions, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var form *upload.Form
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				form, _ = sessions.Get(cookie.Value)
			}

			if form == nil {
				var (
					id  string
					err error
				)
				id, form, err = sessions.Create()
				if err != nil {
					slog.Warn("form session refused", "error", err)
					w.Header().Set("Retry-After", "60")
					http.Error(w, "Too many active sessions, please try again later", http.StatusServiceUnavailable)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), contextKeyForm, form)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FormFromContext returns the upload form attached by Session, or nil.
func FormFromContext(ctx context.Context) *upload.Form {
	v, _ := ctx.Value(contextKeyForm).(*upload.Form)
	return v
}

// WithForm returns a copy of ctx carrying form.
func WithForm(ctx context.Context, form *upload.Form) context.Context {
	return context.WithValue(ctx, contextKeyForm, form)
}

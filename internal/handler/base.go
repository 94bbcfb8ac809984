package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/claimdesk/internal/middleware"
	"github.com/claimdesk/internal/upload"
)

var errNoSession = errors.New("handler: no form session on request")

type envelope map[string]any

type BaseHandler struct {
	Logger *slog.Logger
}

func (h *BaseHandler) logError(r *http.Request, err error) {
	h.Logger.Error(err.Error(),
		"method", r.Method,
		"uri", r.URL.RequestURI(),
		"request_id", chimw.GetReqID(r.Context()),
	)
}

// formFor returns the caller's upload form. It answers 500 itself when the
// session middleware did not run.
func (h *BaseHandler) formFor(w http.ResponseWriter, r *http.Request) (*upload.Form, bool) {
	form := middleware.FormFromContext(r.Context())
	if form == nil {
		h.serverErrorResponse(w, r, errNoSession)
		return nil, false
	}
	return form, true
}

func (h *BaseHandler) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := h.writeJSON(w, status, envelope{"error": message}); err != nil {
		h.logError(r, err)
	}
}

func (h *BaseHandler) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError,
		"the server encountered a problem and could not process your request")
}

// writeJSON encodes data before touching w, so an encoding failure leaves
// the response unwritten.
func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

// backToForm sends the browser back to the page after a form post.
func backToForm(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

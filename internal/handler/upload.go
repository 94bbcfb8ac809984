package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/claimdesk/internal/model"
	"github.com/claimdesk/internal/processor"
	"github.com/claimdesk/internal/upload"
)

type submissionRecorder interface {
	RecordSubmission(outcome string)
	RecordUpload(size int)
}

type pageData struct {
	Header upload.Header
	Form   upload.View
}

// UploadHandler serves the upload page and the select/submit operations of
// the caller's form.
type UploadHandler struct {
	BaseHandler
	templates      *template.Template
	header         upload.Header
	maxUploadBytes int64
	metrics        submissionRecorder
}

func NewUploadHandler(logger *slog.Logger, tmpl *template.Template, maxUploadBytes int64, metrics submissionRecorder) *UploadHandler {
	return &UploadHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		templates:      tmpl,
		header:         upload.DefaultHeader,
		maxUploadBytes: maxUploadBytes,
		metrics:        metrics,
	}
}

// Page renders the header and the caller's upload form.
func (h *UploadHandler) Page(w http.ResponseWriter, r *http.Request) {
	form, ok := h.formFor(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{Header: h.header, Form: form.View()}
	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		h.logError(r, fmt.Errorf("upload: template error: %w", err))
	}
}

// State returns the caller's form as JSON.
func (h *UploadHandler) State(w http.ResponseWriter, r *http.Request) {
	form, ok := h.formFor(w, r)
	if !ok {
		return
	}
	if err := h.writeJSON(w, http.StatusOK, form.View()); err != nil {
		h.logError(r, err)
	}
}

// Select replaces the selected document with the uploaded "file" part.
func (h *UploadHandler) Select(w http.ResponseWriter, r *http.Request) {
	form, doc, ok := h.documentFromRequest(w, r)
	if !ok {
		return
	}
	form.Select(doc)
	h.Logger.Info("document selected", "file", form.Selected())
	backToForm(w, r)
}

// Submit sends the current selection to the processing service.
func (h *UploadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form, ok := h.formFor(w, r)
	if !ok {
		return
	}
	h.submit(w, r, form)
}

// Upload selects the uploaded "file" part and submits it in one step. While
// an earlier submission is in flight the upload is dropped and the form
// keeps its selection.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	form, doc, ok := h.documentFromRequest(w, r)
	if !ok {
		return
	}
	if err := form.TrySelect(doc); err != nil {
		h.metrics.RecordSubmission(submissionOutcome(err))
		h.Logger.Info("upload skipped", "reason", "in_flight", "file", documentName(doc), "pending", form.Selected())
		backToForm(w, r)
		return
	}
	h.submit(w, r, form)
}

func (h *UploadHandler) documentFromRequest(w http.ResponseWriter, r *http.Request) (*upload.Form, *model.Document, bool) {
	form, ok := h.formFor(w, r)
	if !ok {
		return nil, nil, false
	}

	doc, err := h.readDocument(w, r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.Logger.Warn("upload rejected: too large", "limit", maxBytesErr.Limit)
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		h.Logger.Warn("form parse failed", "error", err)
		http.Error(w, "Form too large or invalid", http.StatusBadRequest)
		return nil, nil, false
	}

	if doc != nil {
		h.metrics.RecordUpload(len(doc.Data))
	}
	return form, doc, true
}

func documentName(doc *model.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Name
}

// readDocument returns the "file" part of a multipart request, or nil when
// the request carries no file.
func (h *UploadHandler) readDocument(w http.ResponseWriter, r *http.Request) (*model.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(processor.FileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &model.Document{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *UploadHandler) submit(w http.ResponseWriter, r *http.Request, form *upload.Form) {
	err := form.Submit(r.Context())
	outcome := submissionOutcome(err)
	h.metrics.RecordSubmission(outcome)

	switch outcome {
	case "ok":
		h.Logger.Info("submission processed", "file", form.Selected())
	case "no_file", "in_flight":
		h.Logger.Info("submission skipped", "reason", outcome)
	default:
		h.Logger.Warn("submission failed", "file", form.Selected(), "outcome", outcome, "error", err)
	}

	backToForm(w, r)
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, upload.ErrNoFile):
		return "no_file"
	case errors.Is(err, upload.ErrInFlight):
		return "in_flight"
	default:
		return processor.Outcome(err)
	}
}

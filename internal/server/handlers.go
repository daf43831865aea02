package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
	"github.com/alnah/go-tmpl2pdf/internal/logging"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "template")

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Payload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	pdf, err := s.gen.Generate(r.Context(), name, raw)
	if err != nil {
		s.fail(w, r, name, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "template")

	src, err := s.gen.TemplateSource(name)
	if err != nil {
		s.fail(w, r, name, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, src)
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"templates": s.gen.Templates()})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "template")

	schema, err := s.gen.Schema(name)
	if err != nil {
		s.fail(w, r, name, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := s.gen.EngineState()
	status := http.StatusOK
	if state == tmpl2pdf.StateClosing || state == tmpl2pdf.StateClosed {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": http.StatusText(status), "engine": state.String()})
}

// errorBody is the JSON error envelope.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

// fail maps a generator error to a response. Client errors carry their
// message; server errors are logged and answered generically.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	var verr *tmpl2pdf.ValidationError
	switch {
	case errors.Is(err, tmpl2pdf.ErrEmptyTemplateName):
		writeError(w, http.StatusBadRequest, "Template name is required")
	case errors.Is(err, tmpl2pdf.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown template '%s'", name))
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			StatusCode: http.StatusBadRequest,
			Message:    verr.Issues,
			Error:      http.StatusText(http.StatusBadRequest),
		})
	default:
		logging.FromContext(r.Context(), s.log).Error("generation failed",
			"template", name, "outcome", tmpl2pdf.Outcome(err), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{
		StatusCode: status,
		Message:    msg,
		Error:      http.StatusText(status),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

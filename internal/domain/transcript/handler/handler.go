// Package handler exposes the analysis pipeline over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript/pdf"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript/service"
)

// TranscriptHandler handles transcript upload, analysis and report routes.
type TranscriptHandler struct {
	svc            *service.AnalysisService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewTranscriptHandler creates the handler.
func NewTranscriptHandler(svc *service.AnalysisService, maxUploadBytes int64, logger *slog.Logger) *TranscriptHandler {
	return &TranscriptHandler{svc: svc, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Register mounts the transcript routes on a router.
func (h *TranscriptHandler) Register(r chi.Router) {
	r.Route("/v1/transcripts", func(r chi.Router) {
		r.Post("/", h.Upload)
		r.Get("/{id}", h.GetAnalysis)
		r.Delete("/{id}", h.Invalidate)
		r.Get("/{id}/report", h.DownloadReport)
	})
}

// uploadResponse is the summary returned right after processing.
type uploadResponse struct {
	ID             uuid.UUID               `json:"id"`
	StudentID      string                  `json:"student_id"`
	StudentName    string                  `json:"student_name"`
	Curriculum     string                  `json:"curriculum"`
	Semesters      int                     `json:"semesters"`
	Courses        int                     `json:"courses"`
	Invalid        int                     `json:"invalid_registrations"`
	Unidentified   int                     `json:"unidentified_courses"`
	Stats          service.ExtractionStats `json:"extraction_stats"`
}

// Upload accepts a multipart PDF upload, runs the pipeline and returns the
// analysis summary.
func (h *TranscriptHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	analysis, err := h.svc.Process(r.Context(), header.Filename, fileData)
	if err != nil {
		if errors.Is(err, pdf.ErrNoText) {
			h.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		h.logger.Error("failed to process transcript", slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, uploadResponse{
		ID:           analysis.ID,
		StudentID:    analysis.StudentInfo.ID,
		StudentName:  analysis.StudentInfo.Name,
		Curriculum:   analysis.CurriculumName,
		Semesters:    len(analysis.Semesters),
		Courses:      analysis.Completion.TotalCourses,
		Invalid:      analysis.InvalidCount(),
		Unidentified: len(analysis.Unidentified),
		Stats:        analysis.Stats,
	})
}

// GetAnalysis returns the full cached analysis document.
func (h *TranscriptHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	analysis, err := h.svc.Get(id)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

// Invalidate drops a cached analysis.
func (h *TranscriptHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	h.svc.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

// DownloadReport renders one report format and serves it as an attachment.
func (h *TranscriptHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	format, err := service.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	out, filename, contentType, err := h.svc.Report(r.Context(), id, format)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to render report", slog.String("format", string(format)), slog.Any("error", err))
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (h *TranscriptHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid transcript id: %w", err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *TranscriptHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *TranscriptHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

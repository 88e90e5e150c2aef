package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	jobapp "streamsplit/internal/application/job"
	jobdomain "streamsplit/internal/domain/job"
)

const uploadChunkSize = 1 << 20

type jobUseCases interface {
	StartSplit(ctx context.Context, req jobapp.SplitRequest) (string, error)
	Get(ctx context.Context, id string) (jobdomain.Job, error)
	List(ctx context.Context) ([]jobdomain.Job, error)
	OutputFile(ctx context.Context, jobID, filename string) (string, error)
}

type uploadStore interface {
	ResolveUpload(raw string) (string, string, error)
}

type Handler struct {
	jobs  jobUseCases
	store uploadStore
}

// NewHandler wires HTTP handlers with application use cases.
func NewHandler(jobService jobUseCases, store uploadStore) *Handler {
	return &Handler{jobs: jobService, store: store}
}

// Upload handles POST /api/upload: the file is streamed to disk in
// chunks, and unsupported extensions are rejected before anything else
// happens.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Skip plain form fields until the file part shows up.
	var part *multipart.Part
	for {
		p, err := reader.NextPart()
		if err != nil {
			http.Error(w, "missing file part", http.StatusBadRequest)
			return
		}
		if p.FileName() != "" {
			part = p
			break
		}
		p.Close()
	}
	defer part.Close()

	_, fullPath, err := h.store.ResolveUpload(part.FileName())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	buf := make([]byte, uploadChunkSize)
	size, err := io.CopyBuffer(dst, part, buf)
	if err != nil {
		_ = os.Remove(fullPath)
		http.Error(w, "failed to save file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": part.FileName(),
		"path":     fullPath,
		"size":     size,
	})
}

type splitRequestBody struct {
	MaxLength     int    `json:"max_length"`
	Quality       string `json:"quality"`
	Format        string `json:"format"`
	NamingPattern string `json:"naming_pattern"`
}

// StartSplit handles POST /api/split?filename=...: records a job and
// starts the pipeline in the background.
func (h *Handler) StartSplit(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "filename is required", http.StatusBadRequest)
		return
	}

	var body splitRequestBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	id, err := h.jobs.StartSplit(r.Context(), jobapp.SplitRequest{
		Filename:      filename,
		MaxLength:     body.MaxLength,
		Quality:       body.Quality,
		Format:        body.Format,
		NamingPattern: body.NamingPattern,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"job_id": id,
		"status": "started",
	})
}

// GetJob handles GET /api/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	record, err := h.jobs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, jobdomain.ErrNotFound) {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobDTO(record))
}

// ListJobs handles GET /api/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	records, err := h.jobs.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out = append(out, jobDTO(record))
	}
	writeJSON(w, http.StatusOK, out)
}

// Download handles GET /api/download/{id}/{filename}: serves one
// produced file, 404ing when the job or file is unknown.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path, err := h.jobs.OutputFile(r.Context(), vars["id"], vars["filename"])
	if err != nil {
		if errors.Is(err, jobdomain.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+vars["filename"]+"\"")
	http.ServeFile(w, r, path)
}

func jobDTO(record jobdomain.Job) map[string]any {
	out := map[string]any{
		"id":           record.ID,
		"status":       string(record.Status),
		"progress":     record.Progress,
		"message":      record.Message,
		"output_files": record.OutputFiles,
		"created_at":   record.CreatedAt.Format(time.RFC3339),
	}
	if record.OutputFiles == nil {
		out["output_files"] = []string{}
	}
	if record.Error != "" {
		out["error"] = record.Error
	}
	if record.CompletedAt != nil {
		out["completed_at"] = record.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/vidtoot/internal/domain"
)

// jobService is the part of the job manager the HTTP layer uses.
type jobService interface {
	Submit(url string, enhance, dryRun bool) domain.JobID
	Get(id domain.JobID) (*domain.Job, error)
	List() []*domain.Job
}

// JobHandler handles job submission and status requests.
type JobHandler struct {
	jobs   jobService
	logger *slog.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs jobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// ProcessRequest is the JSON request body for video submission.
type ProcessRequest struct {
	URL     string `json:"url"`
	Enhance bool   `json:"enhance"`
	DryRun  bool   `json:"dry_run"`
}

// ProcessResponse is the JSON response after submission.
type ProcessResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobResponse represents a job in list/get responses. Result and Error stay
// null until the pipeline sets them.
type JobResponse struct {
	ID        string         `json:"id"`
	URL       string         `json:"url"`
	Enhance   bool           `json:"enhance"`
	DryRun    bool           `json:"dry_run"`
	Status    string         `json:"status"`
	Progress  string         `json:"progress"`
	CreatedAt string         `json:"created_at"`
	Result    *domain.Result `json:"result"`
	Error     *string        `json:"error"`
}

// toJobResponse converts a domain job to its API shape.
func toJobResponse(j *domain.Job) JobResponse {
	resp := JobResponse{
		ID:        j.ID.String(),
		URL:       j.URL,
		Enhance:   j.Enhance,
		DryRun:    j.DryRun,
		Status:    string(j.Status),
		Progress:  j.Progress,
		CreatedAt: j.CreatedAt.UTC().Format(time.RFC3339),
		Result:    j.Result,
	}
	if j.Error != "" {
		msg := j.Error
		resp.Error = &msg
	}
	return resp
}

// Process handles POST /api/process
func (h *JobHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	jobID := h.jobs.Submit(req.URL, req.Enhance, req.DryRun)

	h.writeJSON(w, http.StatusAccepted, ProcessResponse{
		JobID:  jobID.String(),
		Status: "created",
	})
}

// List handles GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.List()

	response := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		response = append(response, toJobResponse(j))
	}

	h.writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/jobs/{jobID}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobs.Get(domain.JobID(jobID))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			h.writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("get job failed", "job_id", jobID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.writeJSON(w, http.StatusOK, toJobResponse(job))
}

func (h *JobHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *JobHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ggmarts04/LTX-Video/internal/httpapi/util"
	"github.com/ggmarts04/LTX-Video/internal/httpkit"
)

// CreateJobRequest wraps the raw generation payload. Full validation happens
// in the worker's handler; the API only rejects obviously empty submissions.
type CreateJobRequest struct {
	Input map[string]any `json:"input"`
}

func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateJobRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}
	if len(req.Input) == 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "input is required", map[string]any{"field": "input"})
		return
	}
	if prompt, _ := req.Input["prompt"].(string); strings.TrimSpace(prompt) == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "input.prompt is required", map[string]any{"field": "input.prompt"})
		return
	}

	jobID := util.NewID("job")
	inputBytes, _ := json.Marshal(req.Input)

	createdAt := time.Now().UTC()
	_, err := h.pool.Exec(ctx,
		`INSERT INTO jobs (id, status, input_json, created_at)
		 VALUES ($1,'QUEUED',$2,$3)`,
		jobID, string(inputBytes), createdAt,
	)
	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			httpkit.WriteErr(w, 409, "CONFLICT", "job id collision, retry", nil)
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db insert failed", nil)
		return
	}

	if err := h.rdb.LPush(ctx, h.queueName, jobID).Err(); err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "queue push failed", nil)
		return
	}

	httpkit.WriteJSON(w, 201, map[string]any{
		"job": map[string]any{
			"id":         jobID,
			"status":     "QUEUED",
			"input":      req.Input,
			"created_at": createdAt,
		},
	})
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobId")

	var (
		status     string
		outputPath *string
		archiveKey *string
		errorText  *string
		createdAt  time.Time
		finishedAt *time.Time
	)
	err := h.pool.QueryRow(ctx,
		`SELECT status, output_path, archive_key, error_text, created_at, finished_at
		 FROM jobs WHERE id=$1`,
		jobID,
	).Scan(&status, &outputPath, &archiveKey, &errorText, &createdAt, &finishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		httpkit.WriteErr(w, 404, "NOT_FOUND", "job not found", map[string]any{"id": jobID})
		return
	}
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}

	job := map[string]any{
		"id":         jobID,
		"status":     status,
		"created_at": createdAt,
	}
	if finishedAt != nil {
		job["finished_at"] = *finishedAt
	}
	if archiveKey != nil {
		job["archive_key"] = *archiveKey
	}

	// Mismo contrato que el handler: output_video o error, nunca ambos
	switch {
	case errorText != nil && *errorText != "":
		job["result"] = map[string]any{"error": *errorText}
	case outputPath != nil && *outputPath != "":
		job["result"] = map[string]any{"output_video": *outputPath}
	}

	httpkit.WriteJSON(w, 200, map[string]any{"job": job})
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	limitStr := strings.TrimSpace(r.URL.Query().Get("limit"))
	limit := 50
	if limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	var (
		rows pgx.Rows
		err  error
	)

	if status != "" {
		rows, err = h.pool.Query(ctx,
			`SELECT id, status, created_at
			 FROM jobs WHERE status=$1
			 ORDER BY created_at DESC
			 LIMIT $2`,
			status, limit,
		)
	} else {
		rows, err = h.pool.Query(ctx,
			`SELECT id, status, created_at
			 FROM jobs
			 ORDER BY created_at DESC
			 LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		if httpkit.IsUndefinedTable(err) {
			httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "jobs table missing, run migrations", nil)
			return
		}
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}
	defer rows.Close()

	type item struct {
		ID        string    `json:"id"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	}

	out := make([]item, 0, limit)
	for rows.Next() {
		var it item
		if err := rows.Scan(&it.ID, &it.Status, &it.CreatedAt); err != nil {
			httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db scan failed", nil)
			return
		}
		out = append(out, it)
	}

	httpkit.WriteJSON(w, 200, map[string]any{"jobs": out})
}

// GetJobArtifact streams the archived artifact of a finished job.
func (h *Handler) GetJobArtifact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobId")

	var archiveKey *string
	err := h.pool.QueryRow(ctx,
		`SELECT archive_key FROM jobs WHERE id=$1`,
		jobID,
	).Scan(&archiveKey)
	if errors.Is(err, pgx.ErrNoRows) {
		httpkit.WriteErr(w, 404, "NOT_FOUND", "job not found", map[string]any{"id": jobID})
		return
	}
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "db query failed", nil)
		return
	}
	if archiveKey == nil || *archiveKey == "" {
		httpkit.WriteErr(w, 404, "NOT_FOUND", "job has no archived artifact", map[string]any{"id": jobID})
		return
	}

	rc, contentType, size, err := h.sp.GetObject(ctx, *archiveKey)
	if err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "artifact read failed", nil)
		return
	}
	defer rc.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(200)
	_, _ = io.Copy(w, rc)
}

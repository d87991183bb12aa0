package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ggmarts04/LTX-Video/internal/handler"
	apperrors "github.com/ggmarts04/LTX-Video/internal/pkg/errors"
	"github.com/ggmarts04/LTX-Video/internal/pkg/logger"
	"github.com/ggmarts04/LTX-Video/internal/ports"
)

type Deps struct {
	Pool           *pgxpool.Pool
	Handler        *handler.Handler
	SP             ports.StorageProvider
	ArchiveOutputs bool
	CleanupLocal   bool
	Log            *logger.Logger
}

type Processor struct {
	pool    *pgxpool.Pool
	handler *handler.Handler
	log     *logger.Logger

	archiver *Archiver
	cleanup  *Cleanup
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("processor")

	p := &Processor{
		pool:    d.Pool,
		handler: d.Handler,
		log:     log,
	}

	if d.ArchiveOutputs && d.SP != nil {
		p.archiver = NewArchiver(d.SP)
	}
	p.cleanup = NewCleanup(d.CleanupLocal)

	return p
}

// ProcessJob orquesta el flujo completo del job
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	// 1. Obtener el payload del job
	log.Debug("fetching job input")
	inputJSON, err := p.fetchJobInput(ctx, jobID)
	if err != nil {
		return p.failJob(ctx, jobID, apperrors.Wrap(err, "processor.fetch", "failed to fetch job input"))
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
		return p.failJob(ctx, jobID, apperrors.WrapWithCode(err, apperrors.CodeValidation, "processor.parse", "invalid job input"))
	}

	// 2. Marcar como running
	log.Debug("marking job as running")
	if err := p.markJobRunning(ctx, jobID); err != nil {
		return p.failJob(ctx, jobID, apperrors.Wrap(err, "processor.status", "failed to mark job as running"))
	}

	// 3. Ejecutar la generación. El handler nunca lanza: siempre un Result.
	res := p.handler.Handle(ctx, handler.Job{ID: jobID, Input: input})
	if res.Failed() {
		return p.failJob(ctx, jobID, fmt.Errorf("%s", res.Error))
	}
	log.Debug("generation completed", "output_file", res.OutputVideo)

	// 4. Archivar el artefacto si está habilitado. Un fallo de archivado no
	// cambia el resultado del job: el Result ya está fijado por el handler.
	archiveKey := ""
	if p.archiver != nil {
		key, err := p.archiver.Archive(ctx, jobID, res.OutputVideo)
		if err != nil {
			log.Warn("artifact archive failed",
				"output_file", res.OutputVideo,
				"error", err.Error(),
			)
		} else {
			archiveKey = key
			log.Debug("artifact archived", "archive_key", archiveKey)
			p.cleanup.CleanupJob(res.OutputVideo)
		}
	}

	// 5. Guardar resultado en DB
	log.Debug("saving job output")
	if err := p.saveJobOutput(ctx, jobID, res.OutputVideo, archiveKey); err != nil {
		return p.failJob(ctx, jobID, apperrors.Wrap(err, "processor.save", "failed to save job output"))
	}

	// 6. Marcar como completado
	return p.markJobDone(ctx, jobID)
}

func (p *Processor) fetchJobInput(ctx context.Context, jobID string) (string, error) {
	var inputJSON string
	err := p.pool.QueryRow(ctx,
		`SELECT input_json FROM jobs WHERE id=$1`,
		jobID,
	).Scan(&inputJSON)
	if err != nil {
		return "", fmt.Errorf("job not found: %w", err)
	}
	return inputJSON, nil
}

func (p *Processor) markJobRunning(ctx context.Context, jobID string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE jobs SET status='RUNNING', started_at=NOW(), finished_at=NULL, error_text=NULL WHERE id=$1`,
		jobID,
	)
	return err
}

func (p *Processor) markJobDone(ctx context.Context, jobID string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE jobs SET status='DONE', finished_at=NOW() WHERE id=$1`,
		jobID,
	)
	return err
}

func (p *Processor) saveJobOutput(ctx context.Context, jobID, outputPath, archiveKey string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE jobs SET output_path=$2, archive_key=$3 WHERE id=$1`,
		jobID, outputPath, NullIfEmpty(archiveKey),
	)
	return err
}

func (p *Processor) failJob(ctx context.Context, jobID string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	msg := ""
	if cause != nil {
		msg = cause.Error()
		if len(msg) > 2000 {
			msg = msg[:2000]
		}

		var appErr *apperrors.Error
		if apperrors.As(cause, &appErr) {
			log.Error("job failed",
				"code", string(appErr.Code),
				"op", appErr.Op,
				"message", appErr.Message,
			)
		} else {
			log.Error("job failed", "error", msg)
		}
	}

	_, _ = p.pool.Exec(ctx,
		`UPDATE jobs SET status='FAILED', finished_at=NOW(), error_text=$2 WHERE id=$1`,
		jobID, msg,
	)

	return cause
}

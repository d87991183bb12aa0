package worker

import (
	"context"
	"time"

	"github.com/ggmarts04/LTX-Video/internal/handler"
	"github.com/ggmarts04/LTX-Video/internal/inference"
	"github.com/ggmarts04/LTX-Video/internal/pkg/logger"
	"github.com/ggmarts04/LTX-Video/internal/worker/processor"
	"github.com/ggmarts04/LTX-Video/internal/worker/queue"
)

func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	q := queue.NewRedisQueue(d.RDB, d.QueueName)
	engine := inference.NewHTTPClient(d.EngineBaseURL)

	h := handler.New(handler.Deps{
		Engine:         engine,
		Devices:        engine,
		TmpRoot:        d.TmpRoot,
		PipelineConfig: d.PipelineConfig,
		Log:            log,
	})

	p := processor.New(processor.Deps{
		Pool:           d.Pool,
		Handler:        h,
		SP:             d.SP,
		ArchiveOutputs: d.ArchiveOutputs,
		CleanupLocal:   d.CleanupLocal,
		Log:            log,
	})

	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		// Use a separate context with timeout for queue operations
		popCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		jobID, err := q.Pop(popCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}

			log.Warn("queue pop error, retrying",
				"error", err.Error(),
			)
			time.Sleep(1 * time.Second)
			continue
		}

		if jobID == "" {
			continue
		}

		jobCtx := logger.ContextWithJobID(ctx, jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := p.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed",
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		}
	}
}

package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ggmarts04/LTX-Video/internal/pkg/logger"
	"github.com/ggmarts04/LTX-Video/internal/pkg/shutdown"
	"github.com/ggmarts04/LTX-Video/internal/storage"
	"github.com/ggmarts04/LTX-Video/internal/worker"
	"github.com/ggmarts04/LTX-Video/internal/worker/util"
)

func main() {
	log := logger.New(logger.Config{
		Level:       util.Env("LOG_LEVEL", "info"),
		Format:      util.Env("LOG_FORMAT", "json"),
		ServiceName: "ltxv-worker",
		AddSource:   util.BoolEnv("LOG_SOURCE", false),
	})

	dbURL := util.MustEnv("DATABASE_URL")
	redisAddr := util.MustEnv("REDIS_ADDR")
	engineBaseURL := util.MustEnv("ENGINE_HTTP_BASEURL")
	queueName := util.Env("JOB_QUEUE_NAME", "ltxv:jobs")
	tmpRoot := util.Env("JOB_TMP_ROOT", "")
	pipelineConfig := util.Env("PIPELINE_CONFIG", "")
	archiveOutputs := util.BoolEnv("ARCHIVE_OUTPUTS", false)
	cleanupLocal := util.BoolEnv("CLEANUP_LOCAL", false)

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)
	ctx := shutdownMgr.Context()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	var sp storage.Provider
	if archiveOutputs {
		sp, err = storage.NewProvider()
		if err != nil {
			log.LogFatal("failed to initialize storage provider", err)
		}
		log.Info("artifact archival enabled", "provider", sp.Provider())
	}

	deps := worker.Deps{
		Pool:           pool,
		RDB:            rdb,
		EngineBaseURL:  engineBaseURL,
		QueueName:      queueName,
		TmpRoot:        tmpRoot,
		PipelineConfig: pipelineConfig,
		ArchiveOutputs: archiveOutputs,
		CleanupLocal:   cleanupLocal,
		SP:             sp,
		Log:            log,
	}

	log.Info("LTX-Video worker started", "queue", queueName, "engine", engineBaseURL)
	if err := worker.Run(ctx, deps); err != nil && ctx.Err() == nil {
		log.LogFatal("worker stopped", err)
	}
	log.Info("LTX-Video worker stopped")
}

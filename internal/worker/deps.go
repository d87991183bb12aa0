package worker

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ggmarts04/LTX-Video/internal/pkg/logger"
	"github.com/ggmarts04/LTX-Video/internal/ports"
)

type Deps struct {
	Pool           *pgxpool.Pool
	RDB            *redis.Client
	EngineBaseURL  string
	QueueName      string
	TmpRoot        string
	PipelineConfig string
	ArchiveOutputs bool
	CleanupLocal   bool
	SP             ports.StorageProvider
	Log            *logger.Logger
}

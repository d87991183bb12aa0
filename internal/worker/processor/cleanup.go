package processor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ggmarts04/LTX-Video/internal/handler"
)

type Cleanup struct {
	enabled bool
}

func NewCleanup(enabled bool) *Cleanup {
	return &Cleanup{enabled: enabled}
}

// CleanupJob elimina el directorio temporal del job una vez archivado el
// artefacto. Solo toca directorios con el prefijo del handler.
func (c *Cleanup) CleanupJob(outputFile string) {
	if !c.enabled || outputFile == "" {
		return
	}

	dir := filepath.Dir(outputFile)
	if !strings.HasPrefix(filepath.Base(dir), handler.OutputDirPrefix) {
		return
	}

	_ = os.RemoveAll(dir)
}

package util

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

func Env(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

// NewID returns a prefixed random identifier, e.g. "job_4f0c...".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

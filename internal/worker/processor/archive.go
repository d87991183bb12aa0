package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ggmarts04/LTX-Video/internal/ports"
)

// Archiver copia el artefacto generado del directorio temporal al storage
type Archiver struct {
	sp ports.StorageProvider
}

func NewArchiver(sp ports.StorageProvider) *Archiver {
	return &Archiver{sp: sp}
}

// Archive uploads the generated artifact and returns its object key. The
// local file stays in place; removal is the Cleanup component's call.
func (a *Archiver) Archive(ctx context.Context, jobID, localPath string) (string, error) {
	st, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("artifact not found: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	objectKey := fmt.Sprintf("outputs/%s/%s", jobID, filepath.Base(localPath))

	out, err := a.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   objectKey,
		ContentType: MimeFromExt(localPath),
		Reader:      f,
		Size:        st.Size(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	return out.ObjectKey, nil
}

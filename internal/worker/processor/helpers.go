package processor

import (
	"path/filepath"
	"strings"
)

// NullIfEmpty retorna nil si el string está vacío, útil para campos nullable en DB
func NullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// MimeFromExt retorna el MIME type para una extensión de artefacto conocida
func MimeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

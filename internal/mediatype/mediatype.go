// Package mediatype looks up the content type of a file on a best-effort basis.
package mediatype

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// extra covers extensions the platform table often lacks.
var extra = map[string]string{
	".3gp":  "video/3gpp",
	".avi":  "video/x-msvideo",
	".heic": "image/heic",
	".m4v":  "video/x-m4v",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// Detect sniffs the file contents and falls back to the file extension when
// the sniff is inconclusive. It returns "" when nothing is known.
func Detect(path string) string {
	if m, err := mimetype.DetectFile(path); err == nil {
		if t := essence(m.String()); t != "" && t != octetStream {
			return t
		}
	}
	return ByName(path)
}

// ByName returns the content type registered for the file extension.
func ByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t := essence(mime.TypeByExtension(ext)); t != "" {
		return t
	}
	return extra[ext]
}

// IsImage reports whether the content type is an image type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// IsVideo reports whether the content type is a video type.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}

// essence strips parameters such as "; charset=utf-8".
func essence(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

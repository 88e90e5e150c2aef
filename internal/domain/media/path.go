package media

import (
	"errors"
	"path"
	"strings"
)

var allowedVideoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".flv":  true,
	".webm": true,
	".ts":   true,
}

// IsSupportedVideoExt reports whether extension is supported by the media domain.
func IsSupportedVideoExt(ext string) bool {
	return allowedVideoExts[strings.ToLower(strings.TrimSpace(ext))]
}

// NormalizeUploadName validates an incoming upload file name and strips
// any directory components so uploads always land flat in the uploads root.
func NormalizeUploadName(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", errors.New("invalid file name")
	}

	value = strings.ReplaceAll(value, "\\", "/")
	cleaned := path.Clean("/" + value)
	cleaned = path.Base(cleaned)
	if cleaned == "" || cleaned == "." || cleaned == "/" {
		return "", errors.New("invalid file name")
	}

	if !IsSupportedVideoExt(path.Ext(cleaned)) {
		return "", errors.New("unsupported file type")
	}

	return cleaned, nil
}

package filesystem

import "fmt"

// EstimateFileSize predicts output bytes from duration and bitrate.
func EstimateFileSize(durationSeconds float64, bitrate int64) int64 {
	return int64(durationSeconds * float64(bitrate) / 8)
}

// HumanReadableSize renders a byte count for humans.
func HumanReadableSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f PB", value)
}

package config

import (
	"fmt"
	"os"
	"strings"
)

// Server holds runtime settings for the job-status HTTP service.
type Server struct {
	ServerAddr       string
	UploadsDir       string
	OutputsDir       string
	JobStoreDSN      string
	MaxSegmentLength int
}

// LoadServer reads environment variables and returns normalized runtime config.
func LoadServer() Server {
	return Server{
		ServerAddr:       getEnv("SERVER_ADDR", ":8000"),
		UploadsDir:       getEnv("UPLOADS_DIR", "./uploads"),
		OutputsDir:       getEnv("OUTPUTS_DIR", "./outputs"),
		JobStoreDSN:      strings.TrimSpace(os.Getenv("JOB_STORE_DSN")),
		MaxSegmentLength: getEnvInt("MAX_SEGMENT_LENGTH", 1200),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	var out int
	_, err := fmt.Sscanf(value, "%d", &out)
	if err != nil || out <= 0 {
		return fallback
	}
	return out
}

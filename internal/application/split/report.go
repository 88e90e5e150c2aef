package split

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeReport produces the human-readable manifest of the run.
func (s *Service) writeReport(outputFiles []string) (string, error) {
	reportPath := filepath.Join(s.cfg.Output.Directory, "processing_report.txt")

	var b strings.Builder
	b.WriteString("Livestream Splitter - Processing Report\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&b, "Input file: %s\n", s.cfg.InputPath)
	fmt.Fprintf(&b, "Processing date: %s\n", s.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Number of segments: %d\n", len(outputFiles))
	fmt.Fprintf(&b, "Max segment length: %ds\n\n", s.cfg.Output.MaxSegmentLength)

	if s.cfg.IntroOutro.IntroPath != "" {
		fmt.Fprintf(&b, "Intro: %s\n", s.cfg.IntroOutro.IntroPath)
	}
	if s.cfg.IntroOutro.OutroPath != "" {
		fmt.Fprintf(&b, "Outro: %s\n", s.cfg.IntroOutro.OutroPath)
	}

	b.WriteString("\nGenerated files:\n")
	for i, file := range outputFiles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, filepath.Base(file))
	}

	if err := os.WriteFile(reportPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	s.logger.Info("report generated", "path", reportPath)
	return reportPath, nil
}

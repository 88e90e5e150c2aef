package split

import (
	"context"
	"os"
	"path/filepath"

	"streamsplit/internal/domain/split"
)

// stitchSegments prepends/appends the configured intro/outro to every
// produced segment. Unlike the executor, this stage degrades per unit:
// a failed stitch keeps the original segment in the output list and the
// run continues.
func (s *Service) stitchSegments(ctx context.Context, segments []string) []string {
	processed := make([]string, 0, len(segments))

	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("stitching canceled, keeping remaining segments as-is", "from_index", i+1)
			return append(processed, segments[i:]...)
		}

		output := filepath.Join(filepath.Dir(segment), "final_"+filepath.Base(segment))
		manifest := split.NewConcatManifest(s.cfg.IntroOutro.IntroPath, segment, s.cfg.IntroOutro.OutroPath, output)

		if err := s.transcoder.ConcatCopy(ctx, manifest.Paths, manifest.Output); err != nil {
			s.logger.Error("stitching segment failed, keeping original", "index", i+1, "error", err)
			processed = append(processed, segment)
			continue
		}

		if _, err := os.Stat(output); err != nil {
			s.logger.Error("stitched file missing, keeping original", "index", i+1, "output", output)
			processed = append(processed, segment)
			continue
		}

		// Drop the unstitched segment only once the stitched file is
		// confirmed on disk, so disk usage never doubles for long.
		if err := os.Remove(segment); err != nil {
			s.logger.Warn("could not remove original segment", "path", segment, "error", err)
		}

		s.logger.Info("created video with intro/outro", "output", output)
		processed = append(processed, output)

		if s.OnProgress != nil {
			s.OnProgress(i+1, len(segments))
		}
	}

	return processed
}

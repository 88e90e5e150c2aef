package split

import (
	"context"
	"os"

	"streamsplit/internal/domain/media"
)

// CheckCompatibility reports whether the given files can be losslessly
// concatenated: every probed file must share one resolution and one
// codec. Zero or one path is trivially compatible. Any probe failure
// makes the whole check fail closed: uncertain compatibility is treated
// as incompatible, and the reason is logged rather than returned.
func (s *Service) CheckCompatibility(ctx context.Context, paths ...string) bool {
	if len(paths) < 2 {
		return true
	}

	infos := make([]media.Info, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		info, err := s.prober.Probe(ctx, path)
		if err != nil {
			s.logger.Error("compatibility probe failed", "path", path, "error", err)
			return false
		}
		infos = append(infos, info)
	}

	resolutions := make(map[[2]int]struct{}, len(infos))
	codecs := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		resolutions[info.Resolution()] = struct{}{}
		codecs[info.Codec] = struct{}{}
	}

	if len(resolutions) > 1 {
		s.logger.Warn("videos have different resolutions", "count", len(resolutions))
		return false
	}
	if len(codecs) > 1 {
		s.logger.Warn("videos have different codecs", "count", len(codecs))
		return false
	}
	return true
}

package split

import (
	"context"

	"streamsplit/internal/domain/media"
	"streamsplit/internal/domain/split"
)

// Prober is an application port for media metadata extraction.
type Prober interface {
	Probe(ctx context.Context, path string) (media.Info, error)
}

// Transcoder is an application port for the external processing engine.
type Transcoder interface {
	Transcode(ctx context.Context, spec split.TranscodeSpec) error
	ConcatCopy(ctx context.Context, paths []string, output string) error
}

package job

import (
	"context"
	"log/slog"

	splitapp "streamsplit/internal/application/split"
	"streamsplit/internal/config"
)

// SplitPipeline is the default Pipeline: it builds a fresh split service
// per job so nothing is shared between runs.
type SplitPipeline struct {
	prober     splitapp.Prober
	transcoder splitapp.Transcoder
	logger     *slog.Logger
}

// NewSplitPipeline creates the production pipeline adapter.
func NewSplitPipeline(prober splitapp.Prober, transcoder splitapp.Transcoder, logger *slog.Logger) *SplitPipeline {
	return &SplitPipeline{prober: prober, transcoder: transcoder, logger: logger}
}

// Run executes one configured split.
func (p *SplitPipeline) Run(ctx context.Context, cfg config.Config, onProgress func(completed, total int)) (splitapp.Result, error) {
	svc := splitapp.NewService(cfg, p.prober, p.transcoder, p.logger)
	svc.OnProgress = onProgress
	return svc.Run(ctx)
}

package split

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"streamsplit/internal/config"
	"streamsplit/internal/domain/split"
	"streamsplit/internal/timeutil"
)

// Service drives one split run: compatibility gate, segmentation plan,
// segment execution, intro/outro stitching and the final report.
type Service struct {
	cfg        config.Config
	prober     Prober
	transcoder Transcoder
	logger     *slog.Logger

	// OnProgress, when set, is called after each finished unit of work
	// with the number of completed units and the total for the stage.
	OnProgress func(completed, total int)

	now func() time.Time
}

// Result is what one completed run produced.
type Result struct {
	Plan        split.Plan
	OutputFiles []string
	ReportPath  string
}

// NewService creates the pipeline service with injected ports.
func NewService(cfg config.Config, prober Prober, transcoder Transcoder, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		prober:     prober,
		transcoder: transcoder,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes the whole pipeline. Cancellation is honored between
// segments, not mid-transcode.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return Result{}, err
	}

	s.logger.Info("starting to process", "input", s.cfg.InputPath)

	if s.cfg.IntroOutro.IntroPath != "" || s.cfg.IntroOutro.OutroPath != "" {
		clips := []string{s.cfg.InputPath}
		if s.cfg.IntroOutro.IntroPath != "" {
			clips = append(clips, s.cfg.IntroOutro.IntroPath)
		}
		if s.cfg.IntroOutro.OutroPath != "" {
			clips = append(clips, s.cfg.IntroOutro.OutroPath)
		}
		if !s.CheckCompatibility(ctx, clips...) {
			return Result{}, split.Errorf(split.KindIncompatibleMedia, "video files are not compatible for concatenation")
		}
	}

	info, err := s.prober.Probe(ctx, s.cfg.InputPath)
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("video duration", "duration", timeutil.FormatDuration(info.Duration))

	plan, err := split.BuildPlan(info.Duration, float64(s.cfg.Output.MaxSegmentLength))
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("creating segments", "count", plan.SegmentCount(), "max_length", s.cfg.Output.MaxSegmentLength)

	outputs := s.segmentPaths(plan)

	files, err := s.executeSegments(ctx, plan, outputs)
	if err != nil {
		return Result{}, err
	}

	if s.cfg.IntroOutro.IntroPath != "" || s.cfg.IntroOutro.OutroPath != "" {
		files = s.stitchSegments(ctx, files)
	}

	reportPath, err := s.writeReport(files)
	if err != nil {
		s.logger.Error("report generation failed", "error", err)
	}

	s.logger.Info("processing complete", "segments", len(files))
	return Result{Plan: plan, OutputFiles: files, ReportPath: reportPath}, nil
}

// segmentPaths renders the deterministic output path for every window.
// Title and date tokens resolve once here; only the index varies.
func (s *Service) segmentPaths(plan split.Plan) []string {
	stem := strings.TrimSuffix(filepath.Base(s.cfg.InputPath), filepath.Ext(s.cfg.InputPath))
	title := timeutil.SanitizeFilename(stem, 0)
	template := split.NewTemplate(s.cfg.Output.NamingPattern, title, s.now())

	outputs := make([]string, 0, plan.SegmentCount())
	for _, w := range plan.Windows {
		name := template.Render(w.Index) + "." + s.cfg.Output.Format
		outputs = append(outputs, filepath.Join(s.cfg.Output.Directory, name))
	}
	return outputs
}

package split

import (
	"context"
	"os"
	"sync"

	"streamsplit/internal/domain/split"
)

// executeSegments materializes every planned window. The first failure
// aborts the whole batch and propagates; what happens to already-written
// files is governed by the keep_partial_output policy.
func (s *Service) executeSegments(ctx context.Context, plan split.Plan, outputs []string) ([]string, error) {
	workers := s.cfg.Processing.Parallel
	if workers <= 1 {
		return s.executeSequential(ctx, plan, outputs)
	}
	if workers > plan.SegmentCount() {
		workers = plan.SegmentCount()
	}
	return s.executeParallel(ctx, plan, outputs, workers)
}

func (s *Service) executeSequential(ctx context.Context, plan split.Plan, outputs []string) ([]string, error) {
	files := make([]string, 0, plan.SegmentCount())
	done := 0
	for i, w := range plan.Windows {
		if err := ctx.Err(); err != nil {
			s.cleanupPartial(files)
			return nil, split.Wrap(split.KindProcess, err, "run canceled before segment %d", w.Index)
		}

		if err := s.transcoder.Transcode(ctx, s.transcodeSpec(w, outputs[i])); err != nil {
			s.logger.Error("segment failed", "index", w.Index, "error", err)
			s.cleanupPartial(files)
			return nil, err
		}

		s.logger.Info("created segment", "index", w.Index, "output", outputs[i])
		files = append(files, outputs[i])
		done++
		if s.OnProgress != nil {
			s.OnProgress(done, plan.SegmentCount())
		}
	}
	return files, nil
}

// executeParallel fans windows out to a bounded pool. Windows are
// independent, so only the result ordering matters: the returned list is
// always ordered by segment index.
func (s *Service) executeParallel(ctx context.Context, plan split.Plan, outputs []string, workers int) ([]string, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)
	produced := make([]bool, plan.SegmentCount())
	jobs := make(chan int)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if runCtx.Err() != nil {
					return
				}
				w := plan.Windows[idx]
				err := s.transcoder.Transcode(runCtx, s.transcodeSpec(w, outputs[idx]))

				mu.Lock()
				if err != nil {
					s.logger.Error("segment failed", "index", w.Index, "error", err)
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				produced[idx] = true
				done++
				completed := done
				mu.Unlock()

				s.logger.Info("created segment", "index", w.Index, "output", outputs[idx])
				if s.OnProgress != nil {
					s.OnProgress(completed, plan.SegmentCount())
				}
			}
		}()
	}

	for idx := range plan.Windows {
		select {
		case jobs <- idx:
		case <-runCtx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr == nil {
		if err := ctx.Err(); err != nil {
			firstErr = split.Wrap(split.KindProcess, err, "run canceled")
		}
	}
	if firstErr != nil {
		var kept []string
		for idx, ok := range produced {
			if ok {
				kept = append(kept, outputs[idx])
			}
		}
		s.cleanupPartial(kept)
		return nil, firstErr
	}

	return append([]string(nil), outputs...), nil
}

func (s *Service) transcodeSpec(w split.SegmentWindow, output string) split.TranscodeSpec {
	return split.TranscodeSpec{
		InputPath:  s.cfg.InputPath,
		Start:      w.Start,
		Duration:   w.Duration,
		OutputPath: output,
		Codec:      s.cfg.Processing.Codec,
		Preset:     s.cfg.Processing.Preset,
		CRF:        s.cfg.Processing.CRF,
		Threads:    s.cfg.Processing.Threads,
	}
}

// cleanupPartial removes already-written segment files after an aborted
// batch when the config says not to keep them.
func (s *Service) cleanupPartial(files []string) {
	if s.cfg.Processing.KeepPartialOutput {
		return
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			s.logger.Warn("partial cleanup failed", "path", f, "error", err)
		}
	}
}

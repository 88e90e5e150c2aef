package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"streamsplit/internal/config"
	"streamsplit/internal/domain/media"
	"streamsplit/internal/domain/split"
)

type stubProber struct {
	info    media.Info
	perPath map[string]media.Info
	errs    map[string]error
}

func (p *stubProber) Probe(_ context.Context, path string) (media.Info, error) {
	if err, ok := p.errs[path]; ok {
		return media.Info{}, err
	}
	if info, ok := p.perPath[path]; ok {
		return info, nil
	}
	return p.info, nil
}

type stubTranscoder struct {
	mu sync.Mutex

	transcodeCalls []split.TranscodeSpec
	failAtCall     int // 1-based call number that fails, 0 for never
	transcodeErr   error

	concatCalls  [][]string
	failConcatOn string // substring of the output path that fails
}

func (t *stubTranscoder) Transcode(_ context.Context, spec split.TranscodeSpec) error {
	t.mu.Lock()
	t.transcodeCalls = append(t.transcodeCalls, spec)
	call := len(t.transcodeCalls)
	t.mu.Unlock()

	if t.failAtCall != 0 && call == t.failAtCall {
		if t.transcodeErr != nil {
			return t.transcodeErr
		}
		return split.Errorf(split.KindProcess, "ffmpeg exited with status 1")
	}
	return os.WriteFile(spec.OutputPath, []byte("segment"), 0o644)
}

func (t *stubTranscoder) ConcatCopy(_ context.Context, paths []string, output string) error {
	t.mu.Lock()
	t.concatCalls = append(t.concatCalls, append([]string(nil), paths...))
	t.mu.Unlock()

	if t.failConcatOn != "" && filepath.Base(output) == t.failConcatOn {
		return split.Errorf(split.KindProcess, "concat failed")
	}
	return os.WriteFile(output, []byte("stitched"), 0o644)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeClip(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("clip"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InputPath = writeClip(t, dir, "stream.mp4")
	cfg.Output.Directory = filepath.Join(dir, "segments")
	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return cfg
}

func TestRun_ProducesPlannedSegments(t *testing.T) {
	cfg := testConfig(t)
	prober := &stubProber{info: media.Info{Duration: 2500, Width: 1920, Height: 1080, Codec: "h264"}}
	transcoder := &stubTranscoder{}

	svc := NewService(cfg, prober, transcoder, testLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Plan.SegmentCount() != 3 {
		t.Fatalf("expected 3 segments for 2500s at 1200s max, got %d", result.Plan.SegmentCount())
	}
	if len(result.OutputFiles) != 3 {
		t.Fatalf("expected 3 output files, got %d", len(result.OutputFiles))
	}

	want := []string{
		"stream_part01_20240315.mp4",
		"stream_part02_20240315.mp4",
		"stream_part03_20240315.mp4",
	}
	for i, file := range result.OutputFiles {
		if filepath.Base(file) != want[i] {
			t.Errorf("output %d: got %s, want %s", i, filepath.Base(file), want[i])
		}
		if _, err := os.Stat(file); err != nil {
			t.Errorf("output %d not on disk: %v", i, err)
		}
	}

	if transcoder.transcodeCalls[2].Duration != 100 {
		t.Errorf("last segment duration: got %v, want 100", transcoder.transcodeCalls[2].Duration)
	}

	data, err := os.ReadFile(result.ReportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	report := string(data)
	for _, fragment := range []string{"Number of segments: 3", "stream_part02_20240315.mp4", "Max segment length: 1200s"} {
		if !strings.Contains(report, fragment) {
			t.Errorf("report missing %q", fragment)
		}
	}
}

func TestRun_AbortsOnFirstSegmentFailure(t *testing.T) {
	cfg := testConfig(t)
	prober := &stubProber{info: media.Info{Duration: 6000}}
	transcoder := &stubTranscoder{failAtCall: 2}

	svc := NewService(cfg, prober, transcoder, testLogger())
	_, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from failed segment")
	}
	if split.KindOf(err) != split.KindProcess {
		t.Fatalf("expected process error, got %v", err)
	}

	if got := len(transcoder.transcodeCalls); got != 2 {
		t.Errorf("expected run to stop after the failing call, got %d calls", got)
	}

	// keep_partial_output defaults to true: segment 1 stays on disk.
	entries, err := os.ReadDir(cfg.Output.Directory)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 surviving segment, got %d", len(entries))
	}
}

func TestRun_RemovesPartialsWhenConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Processing.KeepPartialOutput = false
	prober := &stubProber{info: media.Info{Duration: 6000}}
	transcoder := &stubTranscoder{failAtCall: 3}

	svc := NewService(cfg, prober, transcoder, testLogger())
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error from failed segment")
	}

	entries, err := os.ReadDir(cfg.Output.Directory)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected partial segments removed, found %d files", len(entries))
	}
}

func TestRun_ReportsProgress(t *testing.T) {
	cfg := testConfig(t)
	prober := &stubProber{info: media.Info{Duration: 4800}}
	transcoder := &stubTranscoder{}

	svc := NewService(cfg, prober, transcoder, testLogger())
	var calls [][2]int
	svc.OnProgress = func(completed, total int) {
		calls = append(calls, [2]int{completed, total})
	}

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calls) != 4 {
		t.Fatalf("expected 4 progress calls, got %d", len(calls))
	}
	for i, c := range calls {
		if c[0] != i+1 || c[1] != 4 {
			t.Errorf("call %d: got (%d, %d), want (%d, 4)", i, c[0], c[1], i+1)
		}
	}
}

func TestRun_ParallelProducesOrderedOutputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Processing.Parallel = 3
	prober := &stubProber{info: media.Info{Duration: 7200}}
	transcoder := &stubTranscoder{}

	svc := NewService(cfg, prober, transcoder, testLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.OutputFiles) != 6 {
		t.Fatalf("expected 6 outputs, got %d", len(result.OutputFiles))
	}
	for i, file := range result.OutputFiles {
		want := fmt.Sprintf("stream_part%02d_20240315.mp4", i+1)
		if filepath.Base(file) != want {
			t.Errorf("output %d: got %s, want %s", i, filepath.Base(file), want)
		}
	}
}

func TestRun_ParallelFailurePropagates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Processing.Parallel = 2
	cfg.Processing.KeepPartialOutput = false
	prober := &stubProber{info: media.Info{Duration: 7200}}
	transcoder := &stubTranscoder{failAtCall: 2}

	svc := NewService(cfg, prober, transcoder, testLogger())
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error from failed segment")
	}
}

func TestStitch_FailedUnitKeepsOriginal(t *testing.T) {
	cfg := testConfig(t)
	cfg.IntroOutro.IntroPath = writeClip(t, t.TempDir(), "intro.mp4")
	prober := &stubProber{info: media.Info{Duration: 3600, Width: 1920, Height: 1080, Codec: "h264"}}
	transcoder := &stubTranscoder{}

	svc := NewService(cfg, prober, transcoder, testLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	transcoder.failConcatOn = "final_stream_part02_20240315.mp4"

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.OutputFiles) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(result.OutputFiles))
	}

	want := []string{
		"final_stream_part01_20240315.mp4",
		"stream_part02_20240315.mp4",
		"final_stream_part03_20240315.mp4",
	}
	for i, file := range result.OutputFiles {
		if filepath.Base(file) != want[i] {
			t.Errorf("output %d: got %s, want %s", i, filepath.Base(file), want[i])
		}
		if _, err := os.Stat(file); err != nil {
			t.Errorf("output %d not on disk: %v", i, err)
		}
	}

	// Originals are removed only where the stitched file replaced them.
	for _, gone := range []string{"stream_part01_20240315.mp4", "stream_part03_20240315.mp4"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Directory, gone)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected %s removed after stitching", gone)
		}
	}

	if len(transcoder.concatCalls) != 3 {
		t.Fatalf("expected 3 concat calls, got %d", len(transcoder.concatCalls))
	}
	first := transcoder.concatCalls[0]
	if len(first) != 2 || first[0] != cfg.IntroOutro.IntroPath {
		t.Errorf("concat list should start with the intro, got %v", first)
	}
}

func TestRun_IncompatibleClipsAbortBeforeProcessing(t *testing.T) {
	cfg := testConfig(t)
	introDir := t.TempDir()
	cfg.IntroOutro.IntroPath = writeClip(t, introDir, "intro.mp4")

	prober := &stubProber{
		perPath: map[string]media.Info{
			cfg.InputPath:            {Duration: 3600, Width: 1920, Height: 1080, Codec: "h264"},
			cfg.IntroOutro.IntroPath: {Duration: 10, Width: 1280, Height: 720, Codec: "h264"},
		},
	}
	transcoder := &stubTranscoder{}

	svc := NewService(cfg, prober, transcoder, testLogger())
	_, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected incompatibility error")
	}
	if split.KindOf(err) != split.KindIncompatibleMedia {
		t.Fatalf("expected incompatible_media kind, got %v", err)
	}
	if len(transcoder.transcodeCalls) != 0 {
		t.Errorf("no segments should be transcoded, got %d calls", len(transcoder.transcodeCalls))
	}
}

func TestCheckCompatibility(t *testing.T) {
	dir := t.TempDir()
	a := writeClip(t, dir, "a.mp4")
	b := writeClip(t, dir, "b.mp4")

	newSvc := func(p *stubProber) *Service {
		return NewService(config.Default(), p, &stubTranscoder{}, testLogger())
	}

	t.Run("single path is trivially compatible", func(t *testing.T) {
		svc := newSvc(&stubProber{errs: map[string]error{a: errors.New("must not probe")}})
		if !svc.CheckCompatibility(context.Background(), a) {
			t.Fatal("expected true for a single path")
		}
	})

	t.Run("matching files are compatible", func(t *testing.T) {
		info := media.Info{Width: 1920, Height: 1080, Codec: "h264"}
		svc := newSvc(&stubProber{perPath: map[string]media.Info{a: info, b: info}})
		if !svc.CheckCompatibility(context.Background(), a, b) {
			t.Fatal("expected compatible")
		}
	})

	t.Run("resolution mismatch is incompatible", func(t *testing.T) {
		svc := newSvc(&stubProber{perPath: map[string]media.Info{
			a: {Width: 1920, Height: 1080, Codec: "h264"},
			b: {Width: 1280, Height: 720, Codec: "h264"},
		}})
		if svc.CheckCompatibility(context.Background(), a, b) {
			t.Fatal("expected incompatible")
		}
	})

	t.Run("codec mismatch is incompatible", func(t *testing.T) {
		svc := newSvc(&stubProber{perPath: map[string]media.Info{
			a: {Width: 1920, Height: 1080, Codec: "h264"},
			b: {Width: 1920, Height: 1080, Codec: "hevc"},
		}})
		if svc.CheckCompatibility(context.Background(), a, b) {
			t.Fatal("expected incompatible")
		}
	})

	t.Run("probe failure fails closed", func(t *testing.T) {
		svc := newSvc(&stubProber{errs: map[string]error{b: split.Errorf(split.KindProbe, "no streams")}})
		if svc.CheckCompatibility(context.Background(), a, b) {
			t.Fatal("expected incompatible on probe failure")
		}
	})

	t.Run("missing file is skipped", func(t *testing.T) {
		info := media.Info{Width: 1920, Height: 1080, Codec: "h264"}
		svc := newSvc(&stubProber{perPath: map[string]media.Info{a: info}})
		if !svc.CheckCompatibility(context.Background(), a, filepath.Join(dir, "missing.mp4")) {
			t.Fatal("expected missing path to be skipped")
		}
	})
}

func TestRun_CancellationStopsBetweenSegments(t *testing.T) {
	cfg := testConfig(t)
	prober := &stubProber{info: media.Info{Duration: 6000}}
	transcoder := &stubTranscoder{}

	ctx, cancel := context.WithCancel(context.Background())
	svc := NewService(cfg, prober, transcoder, testLogger())
	svc.OnProgress = func(completed, total int) {
		if completed == 2 {
			cancel()
		}
	}

	_, err := svc.Run(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if got := len(transcoder.transcodeCalls); got != 2 {
		t.Errorf("expected 2 transcode calls before cancellation, got %d", got)
	}
}

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"streamsplit/internal/domain/media"
	"streamsplit/internal/domain/split"
)

// Runner wraps ffmpeg/ffprobe calls. It is the only place in the
// repository that knows the external tool's argument syntax.
type Runner struct {
	FFmpegBin  string
	FFprobeBin string
}

// NewRunner creates the adapter, defaulting to the binaries on PATH.
func NewRunner() *Runner {
	return &Runner{FFmpegBin: "ffmpeg", FFprobeBin: "ffprobe"}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	BitRate    string `json:"bit_rate"`
	Duration   string `json:"duration"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

// Probe extracts duration, resolution and codec facts for one file.
func (r *Runner) Probe(ctx context.Context, path string) (media.Info, error) {
	cmd := exec.CommandContext(ctx, r.FFprobeBin,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return media.Info{}, split.Wrap(split.KindProbe, err, "ffprobe %s: %s", path, strings.TrimSpace(stderr.String()))
	}

	var ff ffprobeOutput
	if err := json.Unmarshal(output, &ff); err != nil {
		return media.Info{}, split.Wrap(split.KindProbe, err, "decode ffprobe output for %s", path)
	}

	info := media.Info{Format: ff.Format.FormatName}
	if dur, err := strconv.ParseFloat(ff.Format.Duration, 64); err == nil {
		info.Duration = dur
	}
	if rate, err := strconv.ParseInt(ff.Format.BitRate, 10, 64); err == nil {
		info.Bitrate = rate
	}

	for _, stream := range ff.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Codec = stream.CodecName
		info.Width = stream.Width
		info.Height = stream.Height
		info.FrameRate = parseFrameRate(stream.RFrameRate)
		if info.Duration == 0 {
			if dur, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
				info.Duration = dur
			}
		}
		break
	}

	if info.Duration <= 0 {
		return media.Info{}, split.Errorf(split.KindProbe, "no duration reported for %s", path)
	}
	return info, nil
}

// Transcode materializes one segment window onto disk.
func (r *Runner) Transcode(ctx context.Context, spec split.TranscodeSpec) error {
	if err := os.MkdirAll(filepath.Dir(spec.OutputPath), 0o755); err != nil {
		return split.Wrap(split.KindProcess, err, "create output dir for %s", spec.OutputPath)
	}
	return r.run(ctx, r.FFmpegBin, TranscodeArgs(spec)...)
}

// ConcatCopy joins the given files in order into output via the concat
// demuxer, stream-copying with no re-encode. The temporary playlist is
// removed before returning.
func (r *Runner) ConcatCopy(ctx context.Context, paths []string, output string) error {
	listPath := output + ".concat.txt"
	if err := writeConcatList(listPath, paths); err != nil {
		return split.Wrap(split.KindProcess, err, "write concat list for %s", output)
	}
	defer os.Remove(listPath)

	return r.run(ctx, r.FFmpegBin, ConcatArgs(listPath, output)...)
}

// Version returns the first line of `ffmpeg -version`.
func (r *Runner) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.FFmpegBin, "-version").Output()
	if err != nil {
		return "", split.Wrap(split.KindProcess, err, "%s not available", r.FFmpegBin)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// TranscodeArgs builds the ffmpeg argument list for one segment window.
func TranscodeArgs(spec split.TranscodeSpec) []string {
	return []string{
		"-y",
		"-ss", formatSeconds(spec.Start),
		"-t", formatSeconds(spec.Duration),
		"-i", spec.InputPath,
		"-c:v", spec.Codec,
		"-preset", spec.Preset,
		"-crf", strconv.Itoa(spec.CRF),
		"-threads", strconv.Itoa(spec.Threads),
		"-c:a", "aac",
		"-b:a", "192k",
		spec.OutputPath,
	}
}

// ConcatArgs builds the ffmpeg argument list for a stream-copy concat.
func ConcatArgs(listPath, output string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		output,
	}
}

func writeConcatList(listPath string, paths []string) error {
	var buf bytes.Buffer
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		fmt.Fprintf(&buf, "file '%s'\n", abs)
	}
	return os.WriteFile(listPath, buf.Bytes(), 0o644)
}

func parseFrameRate(raw string) float64 {
	num, den, found := strings.Cut(raw, "/")
	if !found {
		value, _ := strconv.ParseFloat(raw, 64)
		return value
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

func (r *Runner) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr
	if err := cmd.Run(); err != nil {
		return split.Wrap(split.KindProcess, err, "%s failed: %s", name, strings.TrimSpace(stderr.String()))
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/schollz/progressbar/v3"

	splitapp "streamsplit/internal/application/split"
	"streamsplit/internal/config"
	"streamsplit/internal/infrastructure/ffmpeg"
	"streamsplit/internal/infrastructure/filesystem"
	"streamsplit/internal/timeutil"
)

var Version = "dev"

type CLI struct {
	Split       SplitCmd       `cmd:"" default:"withargs" help:"Split a long recording into bounded-length segments"`
	Version     VersionCmd     `cmd:"" help:"Show version information"`
	CheckFfmpeg CheckFfmpegCmd `cmd:"" name:"check-ffmpeg" help:"Check that ffmpeg is installed and accessible"`
}

type SplitCmd struct {
	Input         string `arg:"" name:"input" help:"Recording to split" type:"existingfile"`
	OutputDir     string `short:"o" default:"./segments" help:"Output directory for segments"`
	MaxLength     string `short:"l" default:"20m" help:"Maximum segment length (e.g. 20m, 1200, 1h30m)"`
	Intro         string `type:"existingfile" optional:"" help:"Path to intro video file"`
	Outro         string `type:"existingfile" optional:"" help:"Path to outro video file"`
	Format        string `short:"f" enum:"mp4,mkv,avi,mov" default:"mp4" help:"Output format for segments"`
	NamingPattern string `default:"{title}_part{index}_{date}" help:"Naming pattern for output files"`
	Quality       string `enum:"high,medium,low" default:"high" help:"Output quality preset"`
	Threads       int    `default:"4" help:"Number of threads for processing"`
	Parallel      int    `default:"1" help:"Segments to transcode concurrently"`
	Config        string `short:"c" type:"existingfile" optional:"" help:"Configuration file (YAML or JSON)"`
	SaveConfig    string `optional:"" help:"Save current configuration to file"`
	Verbose       bool   `short:"v" help:"Enable verbose logging"`
}

func (cmd *SplitCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	if cmd.SaveConfig != "" {
		if err := cfg.Save(cmd.SaveConfig); err != nil {
			return err
		}
		fmt.Printf("Configuration saved to: %s\n", cmd.SaveConfig)
	}

	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger, closeLog, err := cmd.newLogger(cfg.Output.Directory)
	if err != nil {
		return err
	}
	defer closeLog()

	fmt.Printf("Input file: %s\n", cfg.InputPath)
	fmt.Printf("Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("Max segment length: %ds\n", cfg.Output.MaxSegmentLength)
	if cfg.IntroOutro.IntroPath != "" {
		fmt.Printf("Intro: %s\n", cfg.IntroOutro.IntroPath)
	}
	if cfg.IntroOutro.OutroPath != "" {
		fmt.Printf("Outro: %s\n", cfg.IntroOutro.OutroPath)
	}

	runner := ffmpeg.NewRunner()
	cmd.warnOnLowDiskSpace(runner, cfg)

	service := splitapp.NewService(cfg, runner, runner, logger)

	var bar *progressbar.ProgressBar
	last := 0
	service.OnProgress = func(completed, total int) {
		if bar == nil || completed < last {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Processing segments"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
		}
		last = completed
		_ = bar.Set(completed)
	}

	result, err := service.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("Processing complete!")
	fmt.Printf("Created %d segments\n", len(result.OutputFiles))
	fmt.Printf("Output directory: %s\n", cfg.Output.Directory)
	if result.ReportPath != "" {
		fmt.Printf("Report: %s\n", result.ReportPath)
	}
	return nil
}

func (cmd *SplitCmd) buildConfig() (config.Config, error) {
	if cmd.Config != "" {
		fmt.Printf("Loading configuration from: %s\n", cmd.Config)
		cfg, err := config.Load(cmd.Config)
		if err != nil {
			return config.Config{}, err
		}
		// The positional input always wins over the file's input_path.
		cfg.InputPath = cmd.Input
		return cfg, nil
	}

	maxLength, err := timeutil.ParseTimeExpression(cmd.MaxLength)
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	cfg.InputPath = cmd.Input
	cfg.Output.Directory = cmd.OutputDir
	cfg.Output.Format = cmd.Format
	cfg.Output.NamingPattern = cmd.NamingPattern
	cfg.Output.MaxSegmentLength = int(maxLength)
	cfg.IntroOutro.IntroPath = cmd.Intro
	cfg.IntroOutro.OutroPath = cmd.Outro
	cfg.Processing.Quality = cmd.Quality
	cfg.Processing.Threads = cmd.Threads
	cfg.Processing.Parallel = cmd.Parallel
	return cfg, nil
}

func (cmd *SplitCmd) newLogger(outputDir string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cmd.Verbose {
		level = slog.LevelDebug
	}

	logFile, err := os.OpenFile(filepath.Join(outputDir, "splitter.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	out := io.MultiWriter(os.Stderr, logFile)
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = logFile.Close() }, nil
}

// warnOnLowDiskSpace compares a rough output size estimate against the
// free space in the output directory. Advisory only.
func (cmd *SplitCmd) warnOnLowDiskSpace(runner *ffmpeg.Runner, cfg config.Config) {
	info, err := runner.Probe(context.Background(), cfg.InputPath)
	if err != nil || info.Bitrate <= 0 {
		return
	}
	free, err := filesystem.DiskFree(cfg.Output.Directory)
	if err != nil {
		return
	}
	estimate := filesystem.EstimateFileSize(info.Duration, info.Bitrate)
	if estimate > free {
		fmt.Fprintf(os.Stderr, "Warning: estimated output size %s exceeds free disk space %s\n",
			filesystem.HumanReadableSize(estimate), filesystem.HumanReadableSize(free))
	}
}

type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Printf("streamsplit v%s\n", Version)
	return nil
}

type CheckFfmpegCmd struct{}

func (cmd *CheckFfmpegCmd) Run() error {
	runner := ffmpeg.NewRunner()
	version, err := runner.Version(context.Background())
	if err != nil {
		fmt.Println("ffmpeg not found. Please install ffmpeg to use this tool.")
		fmt.Println("Visit https://ffmpeg.org/download.html for installation instructions.")
		return err
	}
	fmt.Println("ffmpeg is installed and accessible")
	fmt.Printf("Version: %s\n", version)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("streamsplit"),
		kong.Description("Split long livestream recordings into smaller segments."),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

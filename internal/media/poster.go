// Package media derives poster frames from exercise videos with the system
// ffmpeg and ffprobe binaries.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sageset/web/internal/config"
	"sageset/web/internal/logger"
)

// PosterContentType is the MIME type of every extracted poster.
const PosterContentType = "image/jpeg"

// ErrNoFrame is returned when ffmpeg ran but produced no image.
var ErrNoFrame = errors.New("no poster frame produced")

// PosterExtractor grabs a single representative frame from a video.
type PosterExtractor interface {
	ExtractPoster(ctx context.Context, video io.Reader, ext string) ([]byte, error)
}

// FFmpegExtractor shells out to ffprobe for the duration and ffmpeg for the frame.
type FFmpegExtractor struct {
	log         *logger.Logger
	ffmpegPath  string
	ffprobePath string
	workDir     string
	timeout     time.Duration
}

func NewFFmpegExtractor(cfg config.MediaConfig, log *logger.Logger) *FFmpegExtractor {
	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe := cfg.FFprobePath
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &FFmpegExtractor{
		log:         log.With("service", "PosterExtractor"),
		ffmpegPath:  ffmpeg,
		ffprobePath: ffprobe,
		workDir:     cfg.WorkDir,
		timeout:     2 * time.Minute,
	}
}

// AssertReady checks that both binaries are on PATH.
func (x *FFmpegExtractor) AssertReady() error {
	for _, bin := range []string{x.ffmpegPath, x.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	return nil
}

// ExtractPoster writes video to a scratch directory and seeks to PosterOffset
// before grabbing one JPEG frame.
func (x *FFmpegExtractor) ExtractPoster(ctx context.Context, video io.Reader, ext string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	dir, err := os.MkdirTemp(x.workDir, "poster-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if ext == "" {
		ext = ".mp4"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	inPath := filepath.Join(dir, "input"+ext)
	outPath := filepath.Join(dir, "poster.jpg")

	f, err := os.Create(inPath)
	if err != nil {
		return nil, fmt.Errorf("create input file: %w", err)
	}
	if _, err := io.Copy(f, video); err != nil {
		f.Close()
		return nil, fmt.Errorf("write input file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close input file: %w", err)
	}

	duration, err := x.probeDuration(ctx, inPath)
	if err != nil {
		// Unknown duration still yields a usable frame from the minimum offset.
		x.log.Warn("ffprobe failed, using minimum poster offset", "error", err)
	}
	offset := PosterOffset(duration)

	cmd := exec.CommandContext(ctx, x.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-ss", strconv.FormatFloat(offset, 'f', 3, 64),
		"-i", inPath,
		"-frames:v", "1",
		"-q:v", "3",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg poster extraction failed: %w; out=%s", err, string(out))
	}

	data, err := os.ReadFile(outPath)
	if err != nil || len(data) == 0 {
		return nil, ErrNoFrame
	}
	x.log.Debug("Extracted poster frame", "offset", offset, "duration", duration, "bytes", len(data))
	return data, nil
}

func (x *FFmpegExtractor) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, x.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w; out=%s", err, stderr.String())
	}
	return parseDuration(string(out))
}

// PosterOffset is the seek position in seconds: half the duration, clamped to
// [0.1, 1]. Unknown or zero duration seeks to 0.1.
func PosterOffset(duration float64) float64 {
	offset := duration / 2
	if offset < 0.1 {
		offset = 0.1
	}
	if offset > 1 {
		offset = 1
	}
	return offset
}

func parseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("duration unavailable")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("duration %q is not finite", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %v", d)
	}
	return d, nil
}

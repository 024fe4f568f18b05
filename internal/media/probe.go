package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prober reads container metadata with ffprobe.
type Prober struct {
	ffprobePath string
}

func NewProber(ffprobePath string) *Prober {
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// Duration returns the media length in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	return parseProbeDuration(stdout.Bytes())
}

// parseProbeDuration prefers the container duration and falls back to the
// first video stream.
func parseProbeDuration(raw []byte) (float64, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil && d >= 0 {
		return d, nil
	}

	for _, stream := range out.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil && d >= 0 {
			return d, nil
		}
	}

	return 0, fmt.Errorf("ffprobe output has no duration")
}

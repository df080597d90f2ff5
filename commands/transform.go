package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/touchrec/touchrec/playback"
	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/utils"
)

type TransformRequest struct {
	File   string `json:"file"`
	Speed  string `json:"speed"`
	Output string `json:"output,omitempty"`
}

type TransformResponse struct {
	Source  string         `json:"source"`
	Output  string         `json:"output"`
	Speed   float64        `json:"speed"`
	Summary script.Summary `json:"summary"`
}

// SpeedVariantPath names the speed-adjusted copy of source, e.g.
// "touch_20240101_120000_1.5x.sh".
func SpeedVariantPath(source string, speed float64) string {
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(source, ext)
	if ext == "" {
		ext = ".sh"
	}
	return fmt.Sprintf("%s_%sx%s", base, script.FormatSpeed(speed), ext)
}

// TransformCommand writes a speed-adjusted copy of a recording.
func TransformCommand(req TransformRequest) *CommandResponse {
	source, err := ResolveScript(req.File)
	if err != nil {
		return NewErrorResponse(err)
	}
	speed, err := playback.ParseSpeed(req.Speed)
	if err != nil {
		return NewErrorResponse(err)
	}

	src, err := os.ReadFile(source)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to read %s: %w", source, err))
	}
	out, err := script.Transform(src, speed)
	if err != nil {
		return NewErrorResponse(err)
	}

	output := req.Output
	if output == "" {
		output = SpeedVariantPath(source, speed)
	}
	if err := utils.WriteExecutable(output, out); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to write %s: %w", output, err))
	}
	utils.Verbose("wrote %sx copy of %s to %s", script.FormatSpeed(speed), source, output)

	return NewSuccessResponse(TransformResponse{
		Source:  source,
		Output:  output,
		Speed:   speed,
		Summary: script.Analyze(script.Parse(out)),
	})
}

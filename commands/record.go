package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/gesture"
	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/types"
	"github.com/touchrec/touchrec/utils"
)

type RecordRequest struct {
	Device    string        `json:"device"`
	Name      string        `json:"name,omitempty"`
	Monitor   string        `json:"monitor,omitempty"`
	OutputDir string        `json:"outputDir,omitempty"`
	Debug     bool          `json:"debug,omitempty"`
	Countdown time.Duration `json:"countdown,omitempty"`
	CaptureOptions
}

type RecordResponse struct {
	File              string        `json:"file"`
	DebugFile         string        `json:"debugFile,omitempty"`
	Session           string        `json:"session"`
	Monitor           types.Monitor `json:"monitor"`
	Touches           int           `json:"touches"`
	TotalPoints       int           `json:"totalPoints"`
	DurationSeconds   float64       `json:"durationSeconds"`
	AvgPointsPerTouch float64       `json:"avgPointsPerTouch,omitempty"`
	MinIntervalMs     *int          `json:"minIntervalMs,omitempty"`
	MaxIntervalMs     *int          `json:"maxIntervalMs,omitempty"`
}

// Recorder streams one capture source into a replay script.
type Recorder struct {
	Source      devices.EventSource
	Device      string
	Monitor     types.Monitor
	Calibration types.Calibration
	Options     gesture.Options
	FlushEvery  int
	Output      string
	DebugFile   string
	Session     string

	now func() time.Time
}

// Run records until the source ends or ctx is cancelled. Cancellation is the
// normal way to stop; the footer is still written.
func (r *Recorder) Run(ctx context.Context) (*RecordResponse, error) {
	if r.now == nil {
		r.now = time.Now
	}
	if r.Session == "" {
		r.Session = uuid.New().String()
	}

	f, err := os.OpenFile(r.Output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.Output, err)
	}
	defer f.Close()

	start := r.now()
	err = script.WritePreamble(f, script.Header{
		Device:      r.Device,
		RecordedAt:  start,
		Session:     r.Session,
		Monitor:     r.Monitor,
		Calibration: r.Calibration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write preamble: %w", err)
	}

	var gestures []gesture.Gesture
	opts := r.Options
	opts.Start = start
	opts.OnGesture = func(g gesture.Gesture) {
		logGesture(g)
		if r.DebugFile != "" {
			gestures = append(gestures, g)
		}
	}

	rec := gesture.NewReconstructor(r.Calibration, opts)
	w := script.NewWriter(f, r.FlushEvery)

	stop := devices.CloseOnDone(ctx, r.Source)
	defer stop()

	for {
		line, err := r.Source.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				utils.Warn("capture ended: %v", err)
			}
			break
		}

		if err := w.Write(rec.FeedLine(line)...); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", r.Output, err)
		}
	}

	if rec.State().Active {
		utils.Warn("touch in progress when recording stopped was discarded")
	}

	stats := rec.Stats()
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", r.Output, err)
	}
	err = script.WriteFooter(f, script.Footer{
		Touches:     stats.Touches,
		TotalPoints: stats.TotalPoints,
		File:        r.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write footer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", r.Output, err)
	}
	if err := os.Chmod(r.Output, 0755); err != nil {
		return nil, err
	}

	resp := &RecordResponse{
		File:            r.Output,
		Session:         r.Session,
		Monitor:         r.Monitor,
		Touches:         stats.Touches,
		TotalPoints:     stats.TotalPoints,
		DurationSeconds: r.now().Sub(start).Seconds(),
	}
	if stats.Touches > 0 {
		resp.AvgPointsPerTouch = float64(stats.TotalPoints) / float64(stats.Touches)
	}
	if stats.HasInterval() {
		resp.MinIntervalMs = &stats.MinIntervalMs
		resp.MaxIntervalMs = &stats.MaxIntervalMs
	}

	if r.DebugFile != "" {
		if err := writeDebugFile(r.DebugFile, gestures); err != nil {
			utils.Warn("failed to write debug file: %v", err)
		} else {
			resp.DebugFile = r.DebugFile
		}
	}

	return resp, nil
}

func logGesture(g gesture.Gesture) {
	p := g.Points[0]
	switch g.Kind {
	case gesture.KindTap:
		utils.Info("TAP (%d,%d) duration=%dms", p.X, p.Y, g.DurationMs)
	case gesture.KindSwipe:
		utils.Info("SWIPE %.0fpx in %dms", g.PathLength(), g.DurationMs)
	default:
		speed := 0.0
		if g.DurationMs > 0 {
			speed = g.PathLength() / (float64(g.DurationMs) / 1000)
		}
		utils.Info("DRAG %d points, %.0fpx, %dms, %.0fpx/s", len(g.Points), g.PathLength(), g.DurationMs, speed)
	}
}

func writeDebugFile(path string, gestures []gesture.Gesture) error {
	if gestures == nil {
		gestures = []gesture.Gesture{}
	}
	data, err := json.MarshalIndent(gestures, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RecordCommand selects the monitor, opens the capture source and records
// until ctx is cancelled.
func RecordCommand(ctx context.Context, req RecordRequest) *CommandResponse {
	cfg := GetConfig()

	monitor, err := resolveMonitor(ctx, req.Monitor)
	if err != nil {
		return NewErrorResponse(err)
	}

	dir := req.OutputDir
	if dir == "" {
		dir = cfg.Paths.Recordings
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to create recordings dir: %w", err))
	}

	name := req.Name
	if name == "" {
		name = "touch"
	}
	stamp := time.Now().Format("20060102_150405")
	output := filepath.Join(dir, fmt.Sprintf("%s_%s.sh", name, stamp))
	debugFile := ""
	if req.Debug {
		debugFile = filepath.Join(dir, fmt.Sprintf("%s_%s_debug.json", name, stamp))
	}

	device, err := prepareCapture(ctx, req.Device, req.CaptureOptions)
	if err != nil {
		return NewErrorResponse(err)
	}

	countdown := req.Countdown
	if countdown == 0 {
		countdown = cfg.Recorder.Countdown
	}
	utils.Info("recording on %s (%s) starts in %s", monitor.Name, monitor.Geometry(), countdown)
	if err := waitContext(ctx, countdown); err != nil {
		return NewErrorResponse(fmt.Errorf("recording cancelled before start"))
	}

	src, err := openCapture(device, req.CaptureOptions)
	if err != nil {
		return NewErrorResponse(err)
	}
	defer src.Close()

	utils.Info("recording, press Ctrl+C to stop")
	recorder := &Recorder{
		Source:      src,
		Device:      device,
		Monitor:     monitor,
		Calibration: cfg.TouchCalibration(monitor.Width, monitor.Height),
		Options:     cfg.GestureOptions(),
		FlushEvery:  cfg.Recorder.FlushEvery,
		Output:      output,
		DebugFile:   debugFile,
	}

	resp, err := recorder.Run(ctx)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(resp)
}

func waitContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

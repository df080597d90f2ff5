package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/playback"
	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/utils"
)

type PlayRequest struct {
	File            string  `json:"file"`
	Speed           string  `json:"speed,omitempty"`
	SpeedMode       string  `json:"speedMode,omitempty"`
	MinSpeed        float64 `json:"minSpeed,omitempty"`
	MaxSpeed        float64 `json:"maxSpeed,omitempty"`
	Loop            string  `json:"loop,omitempty"`
	Count           int     `json:"count,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	PauseSeconds    float64 `json:"pauseSeconds,omitempty"`
	Native          bool    `json:"native,omitempty"`
	Monitor         string  `json:"monitor,omitempty"`
}

// Playback is a prepared loop over one script. The CLI and the server both
// drive it; Controller can be polled while Run is in progress.
type Playback struct {
	File       string
	Controller *playback.Controller

	cache *playback.ScriptCache
}

// ResolveScript finds file as given or inside the recordings dir.
func ResolveScript(file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("no script given")
	}

	candidates := []string{utils.ExpandHome(file)}
	if !filepath.IsAbs(file) {
		candidates = append(candidates, filepath.Join(GetConfig().Paths.Recordings, file))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("script %s not found", file)
}

func loopConfig(req PlayRequest) (playback.LoopConfig, error) {
	mode, err := playback.ParseLoopMode(req.Loop)
	if err != nil {
		return playback.LoopConfig{}, err
	}
	cfg := playback.LoopConfig{
		Mode:     mode,
		Count:    req.Count,
		Duration: time.Duration(req.DurationSeconds * float64(time.Second)),
		Pause:    time.Duration(req.PauseSeconds * float64(time.Second)),
	}
	return cfg, cfg.Validate()
}

func sequencer(req PlayRequest) (*playback.Sequencer, error) {
	cfg := GetConfig()

	mode, err := playback.ParseSpeedMode(req.SpeedMode)
	if err != nil {
		return nil, err
	}

	speed := cfg.Player.Speed
	if req.Speed != "" {
		if speed, err = playback.ParseSpeed(req.Speed); err != nil {
			return nil, err
		}
	}

	lo, hi := cfg.Player.RandomMin, cfg.Player.RandomMax
	if req.MinSpeed > 0 {
		lo = req.MinSpeed
	}
	if req.MaxSpeed > 0 {
		hi = req.MaxSpeed
	}
	return playback.NewSequencer(mode, speed, lo, hi, nil)
}

// NewPlayback validates req and prepares the runner. Script output goes to
// out; nil discards it.
func NewPlayback(ctx context.Context, req PlayRequest, out io.Writer) (*Playback, error) {
	file, err := ResolveScript(req.File)
	if err != nil {
		return nil, err
	}
	loop, err := loopConfig(req)
	if err != nil {
		return nil, err
	}
	seq, err := sequencer(req)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}

	p := &Playback{File: file}
	var runner playback.Runner

	if req.Native {
		s, err := script.ParseFile(file)
		if err != nil {
			return nil, err
		}
		monitor, err := resolveMonitor(ctx, nativeMonitor(s, req.Monitor))
		if err != nil {
			return nil, err
		}
		runner = playback.NewNativePlayer(s, devices.NewXdotoolInjector(monitor))
	} else {
		cache, err := playback.NewScriptCache(file, GetConfig().Player.CacheSize)
		if err != nil {
			return nil, err
		}
		player := playback.NewPlayer(GetConfig().Player.Shell, cache)
		player.Stdout = out
		player.Stderr = out
		p.cache = cache
		runner = player
	}

	p.Controller = playback.NewController(loop, seq, runner)
	return p, nil
}

// nativeMonitor prefers an explicit name, then the monitor the script was
// recorded on.
func nativeMonitor(s *script.Script, name string) string {
	if name != "" {
		return name
	}
	recorded, _ := s.Variable("RECORDED_MONITOR")
	return recorded
}

// Run blocks until the loop ends and releases the speed-adjusted copies.
func (p *Playback) Run(ctx context.Context) (playback.Result, error) {
	if p.cache != nil {
		GetShutdownHook().Register("script cache", p.cache.Close)
		defer p.cache.Close()
	}
	return p.Controller.Run(ctx)
}

type PlayResponse struct {
	File   string          `json:"file"`
	Result playback.Result `json:"result"`
}

func PlayCommand(ctx context.Context, req PlayRequest, out io.Writer) *CommandResponse {
	p, err := NewPlayback(ctx, req, out)
	if err != nil {
		return NewErrorResponse(err)
	}

	res, err := p.Run(ctx)
	data := PlayResponse{File: p.File, Result: res}
	if err != nil {
		return NewErrorResponseWithData(err, data)
	}
	return NewSuccessResponse(data)
}

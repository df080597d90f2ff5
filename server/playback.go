package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/touchrec/touchrec/commands"
	"github.com/touchrec/touchrec/playback"
	"github.com/touchrec/touchrec/utils"
)

const stopTimeout = 10 * time.Second

type PlaybackStatus struct {
	File     string             `json:"file,omitempty"`
	State    playback.State     `json:"state"`
	Snapshot *playback.Snapshot `json:"snapshot,omitempty"`
	Result   *playback.Result   `json:"result,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// playbackManager owns the single playback the server may run at a time.
type playbackManager struct {
	mu     sync.Mutex
	active *commands.Playback
	cancel context.CancelFunc
	done   chan struct{}
	result *playback.Result
	err    error
}

var playbacks = &playbackManager{}

// scriptLog forwards replay output to the verbose log, one line per write.
type scriptLog struct{}

func (scriptLog) Write(p []byte) (int, error) {
	utils.Verbose("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (m *playbackManager) running() bool {
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

func (m *playbackManager) start(req commands.PlayRequest) (PlaybackStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running() {
		return PlaybackStatus{}, fmt.Errorf("playback of %s is already running, stop it first", m.active.File)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p, err := commands.NewPlayback(ctx, req, scriptLog{})
	if err != nil {
		cancel()
		return PlaybackStatus{}, err
	}

	done := make(chan struct{})
	m.active, m.cancel, m.done = p, cancel, done
	m.result, m.err = nil, nil

	go func() {
		defer close(done)
		defer cancel()

		res, err := p.Run(ctx)
		m.mu.Lock()
		m.result, m.err = &res, err
		m.mu.Unlock()
	}()

	return PlaybackStatus{File: p.File, State: playback.StateRunning}, nil
}

func (m *playbackManager) status() PlaybackStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return PlaybackStatus{State: playback.StateIdle}
	}

	snap := m.active.Controller.Snapshot()
	st := PlaybackStatus{
		File:     m.active.File,
		State:    snap.State,
		Snapshot: &snap,
		Result:   m.result,
	}
	if m.running() && st.State == playback.StateIdle {
		st.State = playback.StateRunning
	}
	if m.err != nil {
		st.Error = m.err.Error()
	}
	return st
}

// stop cancels the active playback and waits for it to wind down.
func (m *playbackManager) stop() PlaybackStatus {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-time.After(stopTimeout):
			utils.Warn("playback did not stop within %s", stopTimeout)
		}
	}
	return m.status()
}

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/utils"
)

const scriptHeadSize = 500

type RecordingsRequest struct {
	Dir string `json:"dir,omitempty"`
}

type RecordingInfo struct {
	Name             string    `json:"name"`
	Path             string    `json:"path"`
	Size             int64     `json:"size"`
	Modified         time.Time `json:"modified"`
	Events           int       `json:"events"`
	EstimatedSeconds float64   `json:"estimatedSeconds"`
	PlaybackSpeed    string    `json:"playbackSpeed,omitempty"`
}

type RecordingsResponse struct {
	Dir        string          `json:"dir"`
	Recordings []RecordingInfo `json:"recordings"`
}

// ListRecordings returns the replay scripts in dir, newest first.
func ListRecordings(dir string) ([]RecordingInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("recordings dir %s: %w", dir, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.sh"))
	if err != nil {
		return nil, err
	}

	recordings := []RecordingInfo{}
	for _, path := range matches {
		ok, err := looksLikeRecording(path)
		if err != nil {
			utils.Verbose("skipping %s: %v", path, err)
			continue
		}
		if !ok {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		s, err := script.ParseFile(path)
		if err != nil {
			continue
		}
		summary := script.Analyze(s)
		speed, _ := s.PlaybackSpeed()

		recordings = append(recordings, RecordingInfo{
			Name:             filepath.Base(path),
			Path:             path,
			Size:             info.Size(),
			Modified:         info.ModTime(),
			Events:           summary.Events(),
			EstimatedSeconds: float64(summary.EstimatedMs) / 1000,
			PlaybackSpeed:    speed,
		})
	}

	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].Modified.After(recordings[j].Modified)
	})
	return recordings, nil
}

func looksLikeRecording(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, scriptHeadSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return script.IsTouchScript(head[:n]), nil
}

func RecordingsCommand(req RecordingsRequest) *CommandResponse {
	dir := req.Dir
	if dir == "" {
		dir = GetConfig().Paths.Recordings
	}
	dir = utils.ExpandHome(dir)

	recordings, err := ListRecordings(dir)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(RecordingsResponse{Dir: dir, Recordings: recordings})
}
